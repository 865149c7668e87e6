package contract

import (
	"context"

	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ClipboardRepository interface {
	Create(ctx context.Context, clipboard *entity.Clipboard) error
	Update(ctx context.Context, clipboard *entity.Clipboard) error
	Delete(ctx context.Context, id uuid.UUID) error
	// DeleteExpired hard-deletes every record matching the given
	// specifications and returns how many rows went away.
	DeleteExpired(ctx context.Context, specs ...specification.Specification) (int64, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Clipboard, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Clipboard, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
