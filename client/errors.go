package client

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// AuthError is a failed login or registration.
type AuthError struct {
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// FetchError is a failed read: a transport problem or a non-2xx answer while
// listing, loading or deleting surveys.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: server answered %d", e.Op, e.Status)
	}
	return e.Op + " failed"
}

func (e *FetchError) Unwrap() error { return e.Err }

// SubmissionError is a rejected create or update. Message is what the backend
// said, as far as it can be read from the response.
type SubmissionError struct {
	Status  int
	Message string
	Err     error
}

func (e *SubmissionError) Error() string { return e.Message }
func (e *SubmissionError) Unwrap() error { return e.Err }

// DeleteForbiddenError is returned when the backend refuses to delete a
// survey, which happens for published ones.
type DeleteForbiddenError struct {
	SurveyID int64
}

func (e *DeleteForbiddenError) Error() string { return "cannot delete a published survey" }

type DuplicateError struct {
	SurveyID int64
	Status   int
	Err      error
}

func (e *DuplicateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("duplicate survey %d: %s", e.SurveyID, e.Err)
	}
	return fmt.Sprintf("duplicate survey %d: server answered %d", e.SurveyID, e.Status)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

const (
	msgLoginFailed    = "login failed"
	msgRegisterFailed = "registration failed"
	msgSaveFailed     = "survey save failed"
)

// errorMessage reads a human message out of an error response body. A JSON
// string is the message itself; an object is searched for message, error and
// the first entry of errors, in this order. A body that is not JSON is taken
// as plain text.
func errorMessage(body []byte, fallback string) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return fallback
	}

	var data any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return text
	}

	switch v := data.(type) {
	case string:
		if v != "" {
			return v
		}
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := v["error"].(string); ok && msg != "" {
			return msg
		}
		if errs, ok := v["errors"].([]any); ok && len(errs) > 0 {
			return firstError(errs[0])
		}
	}
	return fallback
}

func firstError(e any) string {
	switch v := e.(type) {
	case string:
		return v
	case map[string]any:
		if msg, ok := v["defaultMessage"].(string); ok && msg != "" {
			return msg
		}
	}
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprint(e)
	}
	return string(b)
}
