// Package completion talks to chat-completion endpoints and folds every
// result, good or bad, into an Outcome.
package completion

import "net/http"

// NoAnswer is the text recorded when no usable model answer was obtained.
const NoAnswer = "Null"

// Outcome is the result of a single completion attempt.
//
// Text is either the trimmed model answer or NoAnswer. Status is the HTTP
// status code, or 0 when no response was received at all. Err is set for
// transport failures, non-2xx responses and unreadable bodies.
type Outcome struct {
	Text   string
	Status int
	Err    error
}

// Answered reports whether the outcome carries a genuine answer.
func (o Outcome) Answered() bool {
	return o.Err == nil && o.Text != NoAnswer
}

// Denied reports whether the endpoint refused the request with 403.
func (o Outcome) Denied() bool {
	return o.Status == http.StatusForbidden
}

func failed(status int, err error) Outcome {
	return Outcome{Text: NoAnswer, Status: status, Err: err}
}
