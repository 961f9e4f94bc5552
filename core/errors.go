package core

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorBadInput             = "FUSIONAUTH_BAD_INPUT"
	ErrorUnauthorized         = "FUSIONAUTH_UNAUTHORIZED"
	ErrorForbidden            = "FUSIONAUTH_FORBIDDEN"
	ErrorNotFound             = "FUSIONAUTH_NOT_FOUND"
	ErrorConflict             = "FUSIONAUTH_CONFLICT"
	ErrorRateLimited          = "FUSIONAUTH_RATE_LIMITED"
	ErrorOperationFailed      = "FUSIONAUTH_OPERATION_FAILED"
	ErrorExternalFailure      = "FUSIONAUTH_EXTERNAL_FAILURE"
	ErrorUnsupportedOperation = "FUSIONAUTH_UNSUPPORTED_OPERATION"
	ErrorInternal             = "FUSIONAUTH_INTERNAL_ERROR"
)

const (
	unknownAPIErrorMessage      = "Unknown error occurred"
	unknownExtractErrorMessage  = "Unknown error"
	invalidJSONParameterMessage = "Invalid JSON format"
)

// MapError converts any error into a go-errors envelope with a stable text
// code and HTTP status.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "unsupported") && strings.Contains(msg, "operation"):
		return NewError(err.Error(), goerrors.CategoryOperation, ErrorUnsupportedOperation)
	case strings.Contains(msg, "throttl"), strings.Contains(msg, "rate limit"):
		return NewError(err.Error(), goerrors.CategoryRateLimit, ErrorRateLimited)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"), strings.Contains(msg, "must"):
		return NewError(err.Error(), goerrors.CategoryBadInput, ErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func NewError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func NewBadInputError(message string) *goerrors.Error {
	return NewError(message, goerrors.CategoryBadInput, ErrorBadInput)
}

func NewUnsupportedOperationError(resource, operation string) *goerrors.Error {
	err := NewError(
		fmt.Sprintf("The operation %q is not supported for resource %q", operation, resource),
		goerrors.CategoryOperation,
		ErrorUnsupportedOperation,
	)
	err.Code = http.StatusBadRequest
	return err.WithMetadata(map[string]any{
		"resource":  resource,
		"operation": operation,
	})
}

// ErrorMessage returns the user facing message of err without the category
// prefix go-errors adds to Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && strings.TrimSpace(richErr.Message) != "" {
		return richErr.Message
	}
	return err.Error()
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = HTTPStatusForCategory(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorBadInput
	case goerrors.CategoryNotFound:
		return ErrorNotFound
	case goerrors.CategoryAuth:
		return ErrorUnauthorized
	case goerrors.CategoryAuthz:
		return ErrorForbidden
	case goerrors.CategoryConflict:
		return ErrorConflict
	case goerrors.CategoryRateLimit:
		return ErrorRateLimited
	case goerrors.CategoryOperation:
		return ErrorOperationFailed
	case goerrors.CategoryExternal:
		return ErrorExternalFailure
	default:
		return ErrorInternal
	}
}

func HTTPStatusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CategoryForStatus maps a FusionAuth response status onto an error category.
func CategoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status == http.StatusBadRequest:
		return goerrors.CategoryBadInput
	default:
		return goerrors.CategoryExternal
	}
}

// ParseErrorMessage flattens a FusionAuth error body. General errors win over
// field errors, which win over a bare message.
func ParseErrorMessage(body map[string]any) string {
	if msg := generalErrorsMessage(body); msg != "" {
		return msg
	}
	if fields, ok := body["fieldErrors"].(map[string]any); ok && len(fields) > 0 {
		return fieldErrorsMessage(fields)
	}
	if msg, ok := body["message"].(string); ok && strings.TrimSpace(msg) != "" {
		return msg
	}
	return unknownAPIErrorMessage
}

// ExtractErrorMessage is the response-level variant used by callers that only
// care about validation payloads.
func ExtractErrorMessage(body map[string]any) string {
	if msg := generalErrorsMessage(body); msg != "" {
		return msg
	}
	if fields, ok := body["fieldErrors"].(map[string]any); ok && len(fields) > 0 {
		return fieldErrorsMessage(fields)
	}
	return unknownExtractErrorMessage
}

func generalErrorsMessage(body map[string]any) string {
	general, ok := body["generalErrors"].([]any)
	if !ok || len(general) == 0 {
		return ""
	}
	return strings.Join(errorEntryMessages(general), ", ")
}

// Field names are sorted so messages are stable across decodes.
func fieldErrorsMessage(fields map[string]any) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		entries, _ := fields[name].([]any)
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(errorEntryMessages(entries), ", ")))
	}
	return strings.Join(parts, "; ")
}

func errorEntryMessages(entries []any) []string {
	out := make([]string, 0, len(entries))
	for _, entry := range entries {
		switch typed := entry.(type) {
		case map[string]any:
			msg, _ := typed["message"].(string)
			out = append(out, msg)
		case string:
			out = append(out, typed)
		}
	}
	return out
}
