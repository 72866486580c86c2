package serving

import (
	"context"

	"github.com/google/uuid"
)

// GroupRepo is the durable, last-write-wins store of serving group rows.
type GroupRepo interface {
	List(ctx context.Context) ([]*Group, error)
	Upsert(ctx context.Context, group *Group) error
	Delete(ctx context.Context, id uuid.UUID) error
}
