package completion

import (
	"context"
	"net/http"
	"strings"
)

// EchoClient answers every question locally without any network access.
// It is used for dry runs of a questions file.
type EchoClient struct{}

// NewEchoClient creates an EchoClient.
func NewEchoClient() *EchoClient {
	return &EchoClient{}
}

// Complete returns a one-step answer quoting the question.
func (*EchoClient) Complete(_ context.Context, _, question string) Outcome {
	return Outcome{
		Text:   "1. Echo: " + strings.TrimSpace(question),
		Status: http.StatusOK,
	}
}
