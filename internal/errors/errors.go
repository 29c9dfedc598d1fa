package errors

import (
	"net/http"
)

// Error kinds surfaced to clients alongside the HTTP status. The UI keys
// off these, not off status codes.
const (
	KindValidation           = "validation_error"
	KindUnauthorized         = "unauthorized"
	KindPermissionDenied     = "permission_denied"
	KindNotFound             = "not_found"
	KindConflict             = "conflict"
	KindInvitationExpired    = "invitation_expired"
	KindInvitationNotPending = "invitation_not_pending"
	KindDuplicatePending     = "duplicate_pending_invite"
	KindBranchNameTaken      = "branch_name_taken"
	KindVersionNotFound      = "version_not_found"
	KindThreadTooDeep        = "thread_too_deep"
	KindThreadLocked         = "thread_locked"
	KindHasChildren          = "has_children"
	KindInternal             = "internal_error"
)

// APIError is the error type every service method returns on failure.
// Internal holds the underlying error for logging and is never serialized.
type APIError struct {
	Status   int    `json:"-"`
	Kind     string `json:"kind"`
	Message  string `json:"error"`
	Internal error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Internal
}

func newError(status int, kind, message string, err error) *APIError {
	return &APIError{Status: status, Kind: kind, Message: message, Internal: err}
}

func Validation(message string, err error) *APIError {
	return newError(http.StatusUnprocessableEntity, KindValidation, message, err)
}

// NewValidationError wraps gin binding failures
func NewValidationError(err error) *APIError {
	return Validation("Invalid input", err)
}

func Unauthorized(message string, err error) *APIError {
	return newError(http.StatusUnauthorized, KindUnauthorized, message, err)
}

func PermissionDenied(message string, err error) *APIError {
	return newError(http.StatusForbidden, KindPermissionDenied, message, err)
}

func NotFound(message string, err error) *APIError {
	return newError(http.StatusNotFound, KindNotFound, message, err)
}

func Conflict(message string, err error) *APIError {
	return newError(http.StatusConflict, KindConflict, message, err)
}

func InvitationExpired(message string) *APIError {
	return newError(http.StatusGone, KindInvitationExpired, message, nil)
}

func InvitationNotPending(message string) *APIError {
	return newError(http.StatusConflict, KindInvitationNotPending, message, nil)
}

func DuplicatePendingInvite(message string) *APIError {
	return newError(http.StatusConflict, KindDuplicatePending, message, nil)
}

func BranchNameTaken(message string) *APIError {
	return newError(http.StatusConflict, KindBranchNameTaken, message, nil)
}

func VersionNotFound(message string, err error) *APIError {
	return newError(http.StatusNotFound, KindVersionNotFound, message, err)
}

func ThreadTooDeep(message string) *APIError {
	return newError(http.StatusUnprocessableEntity, KindThreadTooDeep, message, nil)
}

func ThreadLocked(message string) *APIError {
	return newError(http.StatusUnprocessableEntity, KindThreadLocked, message, nil)
}

func HasChildren(message string) *APIError {
	return newError(http.StatusUnprocessableEntity, KindHasChildren, message, nil)
}

func Internal(err error) *APIError {
	return newError(http.StatusInternalServerError, KindInternal, "Internal server error", err)
}
