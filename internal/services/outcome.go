package services

import (
	"context"

	"taskdesk/internal/repositories"
)

// Reason classifies a refused operation. Refusals are values, not errors;
// a non-nil error from a service always wraps repositories.ErrStorage.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonNotFound       Reason = "not_found"
	ReasonNoPermission   Reason = "no_permission"
	ReasonProtectedAdmin Reason = "protected_admin"
	ReasonDuplicateEmail Reason = "duplicate_email"
	ReasonInvalidInput   Reason = "invalid_input"
	ReasonUnknownOwner   Reason = "unknown_owner"
)

// Outcome is the status/message pair handed back to the presentation layer.
type Outcome struct {
	OK      bool
	Reason  Reason
	Message string
}

func succeeded(msg string) Outcome {
	return Outcome{OK: true, Message: msg}
}

func refused(reason Reason, msg string) Outcome {
	return Outcome{Reason: reason, Message: msg}
}

var (
	outcomeNotFound     = refused(ReasonNotFound, "not found")
	outcomeNoPermission = refused(ReasonNoPermission, "no permission: only the owner or the administrator may change this task")
)

// Store is what the services need from the persistence layer.
type Store interface {
	Migrate(ctx context.Context) error
	Repos() repositories.Repos
	InTx(ctx context.Context, fn func(r repositories.Repos) error) error
}
