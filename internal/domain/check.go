package domain

import (
	"regexp"
	"slices"
	"strings"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,127}$`)

// ValidID reports whether s is a well-formed opaque identifier.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}

// checker accumulates field failures for a single candidate.
type checker struct {
	kind   Kind
	fields []FieldError
}

func newChecker(kind Kind) *checker {
	return &checker{kind: kind}
}

func (c *checker) fail(field, reason string) {
	c.fields = append(c.fields, FieldError{Field: field, Reason: reason})
}

func (c *checker) id(field, v string) {
	switch {
	case v == "":
		c.fail(field, "is required")
	case !ValidID(v):
		c.fail(field, "is not a well-formed identifier")
	}
}

func (c *checker) optionalID(field string, v *string) {
	if v == nil {
		return
	}
	if !ValidID(*v) {
		c.fail(field, "is not a well-formed identifier")
	}
}

func (c *checker) ids(field string, vs []string) {
	for _, v := range vs {
		if !ValidID(v) {
			c.fail(field, "contains a malformed identifier")
			return
		}
	}
}

func (c *checker) text(field, v string) {
	switch {
	case v == "":
		c.fail(field, "is required")
	case strings.TrimSpace(v) == "":
		c.fail(field, "must not be blank")
	}
}

func (c *checker) optionalText(field string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		c.fail(field, "must not be empty when present")
	}
}

func (c *checker) enum(field, v string, allowed []string) {
	if !slices.Contains(allowed, v) {
		c.fail(field, "must be one of "+strings.Join(allowed, ", "))
	}
}

func (c *checker) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Kind: c.kind, Fields: c.fields}
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return slices.Clone(ids)
}
