package contract

import (
	"context"

	"clipboard-api-be/internal/model"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AuditLog) error
	Count(ctx context.Context) (int64, error)
}
