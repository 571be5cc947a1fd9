package tariffs

import (
	"context"

	"github.com/quaydesk/quay/pkg/pagination"
)

// System defines the public contract for tariff reference dataset operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Code], error)

	Lookup(ctx context.Context, code string) (*Code, error)
	SearchPrefix(ctx context.Context, prefix string, limit int) ([]Code, error)
	Measures(ctx context.Context, code string) ([]Measure, error)
}
