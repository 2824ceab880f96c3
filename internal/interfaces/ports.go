package interfaces

import (
	"context"

	"mindcare/internal/entities"
)

// CompletionVendor is a hosted LLM the completion chain can ask for a reply.
type CompletionVendor interface {
	Name() entities.Service
	// Configured reports whether a credential is present; unconfigured vendors are skipped.
	Configured() bool
	Complete(ctx context.Context, message string) entities.VendorResult
}

// UserStore persists accounts of the local identity provider.
type UserStore interface {
	Create(ctx context.Context, user *entities.User) error
	// GetByUsername returns nil, nil when the user does not exist.
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}
