package twilio

import "fmt"

type ErrorKind int

const (
	// ErrorRetryable covers timeouts, rate limits and provider-side outages.
	ErrorRetryable ErrorKind = iota
	// ErrorTerminal covers rejections that will not change on retry: invalid
	// destination, unapproved template, bad credentials.
	ErrorTerminal
)

// Error is a classified provider failure. Code carries the provider's own
// error code when one was returned.
type Error struct {
	Kind   ErrorKind
	Code   int
	Detail string
}

func (e *Error) Error() string {
	kind := "terminal"
	if e.Kind == ErrorRetryable {
		kind = "retryable"
	}
	if e.Code != 0 {
		return fmt.Sprintf("provider error (%s, code %d): %s", kind, e.Code, e.Detail)
	}
	return fmt.Sprintf("provider error (%s): %s", kind, e.Detail)
}

func (e *Error) Retryable() bool {
	return e.Kind == ErrorRetryable
}
