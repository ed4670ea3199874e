package outcomes

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/vetter/pkg/pagination"
)

// System defines the public contract for the outcome store.
// Records are append-only.
type System interface {
	Handler() *Handler

	Record(ctx context.Context, cmd RecordCommand) (*Outcome, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Outcome], error)

	Find(ctx context.Context, id uuid.UUID) (*Outcome, error)
}
