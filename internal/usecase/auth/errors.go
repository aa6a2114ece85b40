package auth

import (
	"fmt"

	apperrors "microblog-account-service/pkg/errors"
	"microblog-account-service/pkg/security"
)

var (
	ErrDuplicateUsername = apperrors.New(apperrors.KindInvalid, "duplicate_username", "Username already exists")
	ErrPasswordTooLong   = apperrors.New(apperrors.KindInvalid, "password_too_long",
		fmt.Sprintf("Password must be at most %d characters.", security.MaxPasswordLength))
	ErrInvalidCredentials = apperrors.New(apperrors.KindInvalid, "invalid_credentials", "Incorrect username or password")
	ErrForbidden          = apperrors.New(apperrors.KindForbidden, "forbidden", "Not authorized to view this profile.")
	ErrNotFound           = apperrors.New(apperrors.KindNotFound, "not_found", "User not found")
)
