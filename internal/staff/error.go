package staff

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrStaffNotFound      = errors.New("staff member not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidRole        = errors.New("invalid role")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrResetTokenInvalid  = errors.New("password reset token invalid or expired")

	// -- Constants (External Systems) --
	PgUniqueViolation = "23505"
)
