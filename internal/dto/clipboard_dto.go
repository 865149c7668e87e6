package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateClipboardRequest struct {
	Content       string     `json:"content" validate:"required,min=1"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsEncrypted   bool       `json:"is_encrypted"`
	EncryptionKey *string    `json:"encryption_key"`
	// Requested owner. Must be the caller's subject or email; the stored
	// owner is always the subject.
	User     *string `json:"user"`
	IsPublic bool    `json:"is_public"`
}

type UpdateClipboardRequest struct {
	Code          string     `json:"-"`
	Content       *string    `json:"content" validate:"omitempty,min=1"`
	ExpiresAt     *time.Time `json:"expires_at"`
	IsEncrypted   *bool      `json:"is_encrypted"`
	EncryptionKey *string    `json:"encryption_key"`
	// Nil leaves the owner untouched; an empty string clears it; anything
	// else follows the create rules.
	User     *string `json:"user"`
	IsPublic *bool   `json:"is_public"`
}

type ClipboardResponse struct {
	Id            uuid.UUID  `json:"id"`
	Code          string     `json:"code"`
	Content       string     `json:"content"`
	IsEncrypted   bool       `json:"is_encrypted"`
	EncryptionKey *string    `json:"encryption_key,omitempty"`
	User          *string    `json:"user,omitempty"`
	IsPublic      bool       `json:"is_public"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

type ShareClipboardRequest struct {
	Code  string `json:"-"`
	Email string `json:"email" validate:"required,email"`
}
