package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrCodeInvalid        = errors.New("verification code is invalid or expired")
	ErrRoleMismatch       = errors.New("account exists under a different role")
)

// Error is the failure type surfaced to login/signup callers. RequiresOTP
// marks accounts that must complete email verification instead of a
// password sign-in.
type Error struct {
	Message     string
	RequiresOTP bool
	Err         error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// RequiresOTP reports whether err carries the alternate-verification flag.
func RequiresOTP(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.RequiresOTP
}
