package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/quaydesk/quay/pkg/pagination"
)

// System defines the public contract for classification domain operations.
// Classify runs the full decision flow: memory shortcuts, the engine
// loop, the gate pipeline, and persistence of the final payload.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	FindByThread(ctx context.Context, threadKey string) ([]Classification, error)
	Classify(ctx context.Context, cmd ClassifyCommand) (*Classification, error)
	Validate(ctx context.Context, id uuid.UUID, cmd ValidateCommand) (*Classification, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Classification, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
