package service

import (
	"net/http"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"invalid credentials",
	)

	ErrInvalidSession = commonerrors.NewDomainError(
		"INVALID_SESSION",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"session is missing, expired or revoked",
	)

	ErrSignInInProgress = commonerrors.NewDomainError(
		"SIGNIN_IN_PROGRESS",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"a sign-in request is already in progress",
	)
)

func internalError(code string, cause error) commonerrors.DomainError {
	return commonerrors.NewInternalError(code, "internal server error", cause)
}
