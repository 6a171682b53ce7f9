package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"planforge/internal/app"
	"planforge/internal/config"
	"planforge/internal/logging"
	"planforge/internal/repo"
)

const long = `planforge keeps a hierarchical plan in a local workspace:
- Project: the top-level container; it owns at most one Plan.
- Plan: an ordered list of Phases.
- Phase: a stage of the plan with at most one Job, at most one Team and the Actions leading out of it.
- Job and Task: the work of a phase; tasks may be assigned to an Agent and checked by a Validator.
- Team, Agent and Role: who does the work; every agent belongs to one team and plays one role.
- Action: a move from one phase to another, guarded by a Validator.
- Event log: every write is recorded, view it with 'pf log tail'.`

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pf",
		Short:         "planforge CLI",
		Long:          long,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	root.PersistentFlags().Bool("json", false, "output JSON")
	root.PersistentFlags().String("log-level", "", "log level (overrides config)")
	_ = viper.BindPFlag("workspace", root.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", root.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(initCmd())
	root.AddCommand(configCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(logCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(serveCmd())
	for _, c := range entityCmds() {
		root.AddCommand(c)
	}
	return root
}

func main() {
	cobra.OnInitialize(initConfig)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(exitCode(err))
	}
}

func initConfig() {
	viper.SetEnvPrefix("PLANFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

// exitCode maps gateway failures onto distinct process exit codes.
func exitCode(err error) int {
	switch {
	case repo.IsValidation(err):
		return 2
	case repo.IsNotFound(err):
		return 3
	case repo.IsPersistence(err):
		return 4
	}
	return 1
}

// loadConfig reads the workspace config, falling back to defaults, and
// applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOptional(viper.GetString("workspace"))
	if err != nil {
		return nil, err
	}
	if viper.IsSet("log.level") && viper.GetString("log.level") != "" {
		cfg.Log.Level = viper.GetString("log.level")
	}
	if viper.IsSet("log.format") {
		cfg.Log.Format = viper.GetString("log.format")
	}
	if viper.IsSet("server.addr") {
		cfg.Server.Addr = viper.GetString("server.addr")
	}
	if viper.IsSet("server.base_path") {
		cfg.Server.BasePath = viper.GetString("server.base_path")
	}
	if viper.IsSet("server.jwt_secret") {
		cfg.Server.JWTSecret = viper.GetString("server.jwt_secret")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp opens the workspace for the duration of fn.
func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()
	a, err := app.Open(ctx, app.Options{
		Workspace: viper.GetString("workspace"),
		Config:    cfg,
		Logger:    log,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := fn(ctx, a); err != nil {
		log.Debug("command failed", zap.Error(err), zap.String("kind", string(repo.Classify(err))))
		return err
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTable renders rows, or v as JSON when --json is set.
func printTable(w io.Writer, v any, header table.Row, rows []table.Row) error {
	if viper.GetBool("json") {
		return printJSON(w, v)
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	tw.Render()
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
