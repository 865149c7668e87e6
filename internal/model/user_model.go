package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Subject     string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	Email       string         `gorm:"type:varchar(255);index"`
	Username    string         `gorm:"type:varchar(255)"`
	Claims      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	LastLoginAt *time.Time
}

func (User) TableName() string {
	return "users"
}
