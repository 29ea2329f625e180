package auth

import (
	"errors"

	"github.com/estatery/listings/internal/types"
	"github.com/gofiber/fiber/v2"
)

// Store-level sentinels.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// Caller-visible auth failures, each with a distinct stable code. The HTTP
// layer renders them verbatim; the client keys its refresh logic off
// TOKEN_EXPIRED.
func errNoToken() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Access denied. No token provided.", Code: "NO_TOKEN"}
}

func errInvalidToken() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Invalid token.", Code: "INVALID_TOKEN"}
}

func errInvalidTokenType() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Invalid token type. Access token required.", Code: "INVALID_TOKEN_TYPE"}
}

func errTokenExpired() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Token has expired.", Code: "TOKEN_EXPIRED"}
}

func errUserNotFound() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Token is not valid. User not found.", Code: "USER_NOT_FOUND"}
}

func errAccountDeactivated() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Account is deactivated.", Code: "ACCOUNT_DEACTIVATED"}
}

func errAccountLocked() *types.APIError {
	return &types.APIError{
		Status:  fiber.StatusLocked,
		Message: "Account is temporarily locked due to multiple failed login attempts.",
		Code:    "ACCOUNT_LOCKED",
	}
}

func errInvalidCredentials() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Invalid email or password.", Code: "INVALID_CREDENTIALS"}
}

func errInvalidRefreshToken() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Invalid refresh token.", Code: "INVALID_REFRESH_TOKEN"}
}

func errRefreshTokenExpired() *types.APIError {
	return &types.APIError{Status: fiber.StatusUnauthorized, Message: "Refresh token has expired.", Code: "REFRESH_TOKEN_EXPIRED"}
}

func errUserExists() *types.APIError {
	return &types.APIError{Status: fiber.StatusBadRequest, Message: "User already exists with this email.", Code: "USER_EXISTS"}
}

func errInsufficientPermissions(roles []string) *types.APIError {
	msg := "Access denied."
	if len(roles) > 0 {
		msg = "Access denied. Required roles: "
		for i, r := range roles {
			if i > 0 {
				msg += ", "
			}
			msg += r
		}
	}
	return &types.APIError{Status: fiber.StatusForbidden, Message: msg, Code: "INSUFFICIENT_PERMISSIONS"}
}
