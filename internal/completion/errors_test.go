package completion

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProviderError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
		wantType ErrorType
	}{
		{
			name:     "openai style body with string code",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"model not found","code":"model_not_found"}}`,
			wantMsg:  "model not found",
			wantCode: "model_not_found",
			wantType: ErrorTypeValidation,
		},
		{
			name:     "openai style body with numeric code",
			status:   http.StatusPaymentRequired,
			body:     `{"error":{"message":"insufficient credits","code":402}}`,
			wantMsg:  "insufficient credits",
			wantCode: "402",
			wantType: ErrorTypeQuota,
		},
		{
			name:     "raw body",
			status:   http.StatusGatewayTimeout,
			body:     "  upstream timed out \n",
			wantMsg:  "upstream timed out",
			wantType: ErrorTypeTimeout,
		},
		{
			name:     "empty body falls back to status text",
			status:   http.StatusForbidden,
			body:     "",
			wantMsg:  "Forbidden",
			wantType: ErrorTypePermission,
		},
		{
			name:     "unclassified status",
			status:   http.StatusTeapot,
			body:     "short and stout",
			wantMsg:  "short and stout",
			wantType: ErrorTypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perr := parseProviderError(tt.status, []byte(tt.body))
			assert.Equal(t, tt.status, perr.StatusCode)
			assert.Equal(t, tt.wantMsg, perr.Message)
			assert.Equal(t, tt.wantCode, perr.Code)
			assert.Equal(t, tt.wantType, perr.Type)
		})
	}
}

func TestParseProviderError_LongBodyIsCut(t *testing.T) {
	perr := parseProviderError(http.StatusInternalServerError, []byte(strings.Repeat("x", 2000)))
	assert.Len(t, perr.Message, maxErrorBody+3)
	assert.True(t, strings.HasSuffix(perr.Message, "..."))
}

func TestProviderError_Error(t *testing.T) {
	err := &ProviderError{StatusCode: 403, Message: "denied"}
	assert.Equal(t, "completion endpoint error (status 403): denied", err.Error())
}
