package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// APIError is a non-2xx response from the forum API
type APIError struct {
	StatusCode int
	Detail     string
	// RetryAfter is the server's Retry-After in seconds, 0 when absent.
	RetryAfter int
}

func (e *APIError) Error() string {
	return e.Detail
}

// ValidationError is raised before a request is sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// errorEnvelope is the FastAPI error body. detail is either a string or a
// list of field errors.
type errorEnvelope struct {
	Detail interface{} `json:"detail"`
}

// ParseError turns an unsuccessful response into an *APIError
func ParseError(resp *resty.Response) error {
	return &APIError{
		StatusCode: resp.StatusCode(),
		Detail:     errorDetail(resp.StatusCode(), resp.Body()),
		RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After")),
	}
}

// errorDetail reads the server's detail. A body that is not JSON falls back
// to the status text; a JSON body without a detail says "Request failed".
func errorDetail(statusCode int, body []byte) string {
	detail, isJSON := detailFromBody(body)
	if detail == "" && !isJSON {
		detail = http.StatusText(statusCode)
	}
	if detail == "" {
		detail = "Request failed"
	}
	return detail
}

func detailFromBody(body []byte) (string, bool) {
	var env errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &env) != nil {
		return "", false
	}

	switch d := env.Detail.(type) {
	case string:
		return d, true
	case []interface{}:
		msgs := make([]string, 0, len(d))
		for _, item := range d {
			m, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			msg, _ := m["msg"].(string)
			if msg == "" {
				continue
			}
			if field := lastLoc(m["loc"]); field != "" {
				msg = field + ": " + msg
			}
			msgs = append(msgs, msg)
		}
		return strings.Join(msgs, "; "), true
	}
	return "", true
}

// lastLoc returns the innermost field name of a pydantic loc path
func lastLoc(loc interface{}) string {
	parts, ok := loc.([]interface{})
	if !ok || len(parts) == 0 {
		return ""
	}
	switch v := parts[len(parts)-1].(type) {
	case string:
		if v == "body" || v == "query" || v == "path" {
			return ""
		}
		return v
	case float64:
		return strconv.Itoa(int(v))
	}
	return ""
}

func parseRetryAfter(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// StatusCode returns the HTTP status behind err, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConflict checks for duplicates, e.g. flagging the same target twice
func IsConflict(err error) bool {
	return StatusCode(err) == http.StatusConflict
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

// CheckResponse checks if response is successful and returns error if not
func CheckResponse(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return ParseError(resp)
	}
	return nil
}
