package domain

import (
	"fmt"
	"net/http"
)

// Error is the failure type returned by every auth operation. Two errors match
// under errors.Is when their codes are equal, so callers can compare against
// the sentinels below even after WithStatus or WithMessage.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithStatus(status int) *Error {
	c := *e
	c.Status = status
	return &c
}

func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

func newError(status int, code, msg string) *Error {
	return &Error{Code: code, Status: status, Message: msg}
}

var (
	ErrEmailExists              = newError(http.StatusBadRequest, "EMAIL_EXISTS", "Email already exists")
	ErrVerificationAlreadySent  = newError(http.StatusBadRequest, "VERIFICATION_EMAIL_ALREADY_SENT", "A verification email was already sent. Please check your inbox or try again after the token expires.")
	ErrInvalidVerificationToken = newError(http.StatusBadRequest, "INVALID_VERIFICATION_TOKEN", "Invalid or expired verification token")
	ErrInvalidResetToken        = newError(http.StatusBadRequest, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
	ErrUserNotFound             = newError(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrInvalidCredentials       = newError(http.StatusUnauthorized, "INVALID_EMAIL_PASSWORD", "Invalid email or password")
	ErrEmailNotVerified         = newError(http.StatusUnauthorized, "EMAIL_NOT_VERIFIED", "Please verify your email first")
	ErrAccountInactive          = newError(http.StatusUnauthorized, "ACCOUNT_INACTIVE", "Your account is inactive. Please contact support.")
	ErrTooManyAttempts          = newError(http.StatusTooManyRequests, "TOO_MANY_ATTEMPTS", "Too many login attempts. Please try again after 15 minutes.")
	ErrInvalidRefreshToken      = newError(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid or expired refresh token")
	ErrTokenExpired             = newError(http.StatusUnauthorized, "TOKEN_EXPIRED", "Access token expired")
	ErrTokenInvalid             = newError(http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
	ErrTokenRequired            = newError(http.StatusUnauthorized, "TOKEN_REQUIRED", "Token required")
	ErrRefreshTokenRequired     = newError(http.StatusUnauthorized, "REFRESH_TOKEN_REQUIRED", "Refresh token required")
	ErrSessionExpired           = newError(http.StatusUnauthorized, "SESSION_EXPIRED", "User session has expired. Please log in again")
	ErrEmailFailed              = newError(http.StatusInternalServerError, "EMAIL_FAILED", "Failed to send email")
	ErrUnauthorized             = newError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized access")
	ErrInsufficientPermissions  = newError(http.StatusForbidden, "INSUFFICIENT_PERMISSIONS", "Insufficient permissions")
	ErrActiveSubscriptionNeeded = newError(http.StatusForbidden, "ACTIVE_SUBSCRIPTION_REQUIRED", "Active subscription required")
	ErrInsufficientPlan         = newError(http.StatusForbidden, "INSUFFICIENT_SUBSCRIPTION_PLAN", "Insufficient subscription plan")
	ErrInvalidResourceType      = newError(http.StatusBadRequest, "INVALID_RESOURCE_TYPE", "Invalid resource type")
	ErrResourceLimitReached     = newError(http.StatusForbidden, "RESOURCE_LIMIT_REACHED", "Resource limit reached for your plan")
	ErrInvalidInput             = newError(http.StatusBadRequest, "INVALID_INPUT", "Invalid input provided")
	ErrNotFound                 = newError(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrInternal                 = newError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

func InvalidResourceType(resource string) *Error {
	return ErrInvalidResourceType.WithMessage(fmt.Sprintf("Invalid resource type: %s", resource))
}

func ResourceLimitReached(resource string) *Error {
	return ErrResourceLimitReached.WithMessage(fmt.Sprintf("%s limit reached for your plan", resource))
}
