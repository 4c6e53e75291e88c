package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType categorizes endpoint failures.
type ErrorType string

const (
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypePermission ErrorType = "permission_denied"
	ErrorTypeRateLimit  ErrorType = "rate_limit"
	ErrorTypeValidation ErrorType = "validation_failed"
	ErrorTypeQuota      ErrorType = "quota_exceeded"
	ErrorTypeTimeout    ErrorType = "timeout"
	ErrorTypeProvider   ErrorType = "provider_unavailable"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// ErrMalformedResponse is returned when a 200 response body is not valid JSON.
var ErrMalformedResponse = errors.New("malformed completion response")

// maximum number of body bytes kept in ProviderError.Message
const maxErrorBody = 512

// ProviderError describes a non-2xx response from the completion endpoint.
type ProviderError struct {
	StatusCode int
	Message    string
	Code       string
	Type       ErrorType
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("completion endpoint error (status %d): %s", e.StatusCode, e.Message)
}

// parseProviderError builds a ProviderError from an OpenAI-style error body,
// falling back to the raw body when it does not parse.
func parseProviderError(statusCode int, body []byte) *ProviderError {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    any    `json:"code"`
		} `json:"error"`
	}

	perr := &ProviderError{
		StatusCode: statusCode,
		Type:       classifyStatus(statusCode),
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		perr.Message = errResp.Error.Message
		if errResp.Error.Code != nil {
			perr.Code = fmt.Sprint(errResp.Error.Code)
		}
		return perr
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	perr.Message = msg
	return perr
}

func classifyStatus(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrorTypeAuth
	case http.StatusForbidden:
		return ErrorTypePermission
	case http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case http.StatusPaymentRequired:
		return ErrorTypeQuota
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrorTypeTimeout
	}
	if statusCode >= 500 {
		return ErrorTypeProvider
	}
	return ErrorTypeUnknown
}
