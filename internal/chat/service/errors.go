package service

import (
	"net/http"

	commonerrors "github.com/aiagents/collab-hub/internal/common/errors"
)

var (
	ErrEmptyMessage = commonerrors.NewDomainError(
		"EMPTY_MESSAGE",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"message must not be empty",
	)

	ErrMessageTooLong = commonerrors.NewDomainError(
		"MESSAGE_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"message is too long",
	)

	ErrResponsePending = commonerrors.NewDomainError(
		"RESPONSE_PENDING",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"wait for the current response before sending another message",
	)

	ErrResponseCancelled = commonerrors.NewDomainError(
		"RESPONSE_CANCELLED",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"the pending response was cancelled",
	)

	ErrNothingPending = commonerrors.NewDomainError(
		"NOTHING_PENDING",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"no response is pending",
	)
)
