package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-formsync/pkg/formstate"
)

// Severities the backend reports. Only DEBUG and INFORMATIONAL mean the
// operation succeeded.
const (
	SeverityDebug         = "DEBUG"
	SeverityInformational = "INFORMATIONAL"
	SeverityWarning       = "WARNING"
	SeverityError         = "ERROR"
)

// Result types.
const (
	TypeStatus = "STATUS"
	TypeResult = "RESULT"
)

// Text decodes JSON strings, numbers and null into a string.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*t = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("transport: expected string or number, got %s", trimmed)
	}
	*t = Text(n.String())
	return nil
}

// Result is the outcome block of an envelope.
type Result struct {
	FinalMessage  string   `json:"finalMessage"`
	FinalSeverity string   `json:"finalSeverity"`
	FinalType     string   `json:"finalType"`
	Messages      []string `json:"messages"`
}

// Envelope is the JSON response of every row operation.
type Envelope struct {
	Query      Text          `json:"rugaform_query"`
	Result     *Result       `json:"rugaform_result"`
	Error      Text          `json:"rugaform_error"`
	SuccessURI Text          `json:"rugaform_successuri"`
	UniqueID   Text          `json:"rugaform_uniqueid"`
	Data       formstate.Row `json:"rugaform_data"`

	// StatusCode is the HTTP status the envelope arrived with.
	StatusCode int `json:"-"`
}

// Succeeded reports whether the operation logically succeeded. Without a
// result block the envelope succeeds unless it carries an error.
func (e *Envelope) Succeeded() bool {
	if e == nil {
		return false
	}
	if e.Result == nil {
		return strings.TrimSpace(string(e.Error)) == ""
	}
	return IsSuccessSeverity(e.Result.FinalSeverity)
}

// Message returns the message to show the user.
func (e *Envelope) Message() string {
	if e == nil {
		return ""
	}
	if e.Result != nil && strings.TrimSpace(e.Result.FinalMessage) != "" {
		return e.Result.FinalMessage
	}
	return string(e.Error)
}

// Severity returns the final severity, "" when no result is present.
func (e *Envelope) Severity() string {
	if e == nil || e.Result == nil {
		return ""
	}
	return e.Result.FinalSeverity
}

// HasData reports whether the envelope carries a non-empty row payload. An
// empty object or array does not replace the current row.
func (e *Envelope) HasData() bool {
	return e != nil && len(e.Data) > 0
}

// Err returns a *BusinessError when the envelope reports a failure.
func (e *Envelope) Err(op Operation) error {
	if e.Succeeded() {
		return nil
	}
	return &BusinessError{Op: op, Envelope: e}
}

// IsSuccessSeverity reports whether severity means success.
func IsSuccessSeverity(severity string) bool {
	s := strings.TrimSpace(severity)
	return strings.EqualFold(s, SeverityDebug) || strings.EqualFold(s, SeverityInformational)
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
