package unitofwork

import (
	"context"

	"clipboard-api-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ClipboardRepository() contract.ClipboardRepository
	UserRepository() contract.UserRepository
	AuditLogRepository() contract.AuditLogRepository
}
