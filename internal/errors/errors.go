package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailInUse is returned when registering an email that already has an account.
	ErrEmailInUse = errors.New("email in use")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("email or password is wrong")
	// ErrNotVerified is returned when logging in before the email was verified.
	ErrNotVerified = errors.New("email is not verified")
	// ErrAlreadyVerified is returned when verifying or re-issuing for a verified account.
	ErrAlreadyVerified = errors.New("verification has already been passed")
	// ErrVerificationNotFound is returned when a verification token resolves to no account.
	ErrVerificationNotFound = errors.New("verification token not found")
	// ErrAccountNotFound is returned when an account lookup comes up empty.
	ErrAccountNotFound = errors.New("account not found")
	// ErrContactNotFound is returned when a contact lookup comes up empty.
	ErrContactNotFound = errors.New("contact not found")
	// ErrNotAuthorized is the single outcome for every auth gateway failure.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrNoFile is returned when an avatar upload carries no file part.
	ErrNoFile = errors.New("no file provided")
	// ErrFileTooLarge is returned when an avatar upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file too large (max 5MB)")
	// ErrDecode is returned when uploaded avatar bytes are not a decodable image.
	ErrDecode = errors.New("cannot decode uploaded image")
	// ErrStorage is returned when the avatar asset cannot be persisted.
	ErrStorage = errors.New("cannot store avatar")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Pipeline and
// persistence failures collapse to a generic 500; the cause stays in the
// server log, never in the response body.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrEmailInUse):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_IN_USE")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrNotVerified):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_NOT_VERIFIED")
	case errors.Is(err, ErrAlreadyVerified):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_VERIFIED")
	case errors.Is(err, ErrVerificationNotFound):
		return NewHTTPError(http.StatusNotFound, "not found", "VERIFICATION_NOT_FOUND")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrContactNotFound):
		return NewHTTPError(http.StatusNotFound, "not found", "CONTACT_NOT_FOUND")
	case errors.Is(err, ErrNotAuthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "NOT_AUTHORIZED")
	case errors.Is(err, ErrNoFile):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "NO_FILE")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrDecode):
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "DECODE_ERROR")
	case errors.Is(err, ErrStorage):
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "STORAGE_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
