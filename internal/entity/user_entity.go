package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id          uuid.UUID
	Subject     string
	Email       string
	Username    string
	Claims      map[string]interface{}
	CreatedAt   time.Time
	LastLoginAt *time.Time
}
