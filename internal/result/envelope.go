package result

// Envelope is the shape every caller outside the core receives:
// {"success":true,"data":...} or {"success":false,"error":"..."}.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Wrap converts a (value, error) pair into an Envelope.
func Wrap(v any, err error) Envelope {
	if err != nil {
		return Failure(err.Error())
	}
	return Success(v)
}

// Success wraps v as a successful envelope.
func Success(v any) Envelope {
	return Envelope{Success: true, Data: v}
}

// Failure wraps msg as a failed envelope.
func Failure(msg string) Envelope {
	return Envelope{Success: false, Error: msg}
}
