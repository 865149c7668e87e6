package model

import (
	"time"

	"github.com/google/uuid"
)

type Clipboard struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code          string    `gorm:"type:varchar(6);uniqueIndex;not null"`
	Content       string    `gorm:"type:text;not null"`
	IsEncrypted   bool      `gorm:"default:false"`
	EncryptionKey *string   `gorm:"type:varchar(255)"`
	OwnerId       *string   `gorm:"type:varchar(255);index"`
	IsPublic      bool      `gorm:"default:false;index"`
	ExpiresAt     *time.Time `gorm:"index"`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime"`
}

func (Clipboard) TableName() string {
	return "clipboards"
}
