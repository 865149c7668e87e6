package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLog struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType     string         `gorm:"type:varchar(50);not null;index"`
	Actor         *string        `gorm:"type:varchar(255)"`
	ClipboardCode *string        `gorm:"type:varchar(6);index"`
	Detail        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"default:now();not null;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
