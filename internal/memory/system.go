package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/pkg/pagination"
)

// System defines the public contract for classification memory operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Hit], error)

	// Lookup returns the hit for an exactly matching normalized description,
	// recording the use. Returns ErrNotFound when no match exists.
	Lookup(ctx context.Context, description string) (*Hit, error)

	// Learn records a verified description-to-code match, incrementing the
	// hit count when the description is already known.
	Learn(ctx context.Context, description, code, confidence string) (*Hit, error)

	Delete(ctx context.Context, id uuid.UUID) error
}
