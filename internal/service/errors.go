package service

import "github.com/and161185/helpdesk/internal/errs"

// User-facing errors returned by the workflows.
var (
	ErrCredentialsRequired = errs.New(errs.ErrValidation, "email and password are required")
	ErrPasswordTooShort    = errs.New(errs.ErrValidation, "password must be at least 6 characters")
	ErrEmailTaken          = errs.New(errs.ErrAlreadyExists, "a user with this email already exists")
	ErrBadCredentials      = errs.New(errs.ErrUnauthorized, "invalid email or password")
	ErrNotAuthenticated    = errs.New(errs.ErrUnauthorized, "not authenticated")
	ErrSessionExpired      = errs.New(errs.ErrUnauthorized, "session expired")
	ErrAccessDenied        = errs.New(errs.ErrForbidden, "access denied")
	ErrMessageRequired     = errs.New(errs.ErrValidation, "subject and body are required")
	ErrReplyRequired       = errs.New(errs.ErrValidation, "message id and reply text are required")
	ErrMessageNotFound     = errs.New(errs.ErrNotFound, "message not found")
)
