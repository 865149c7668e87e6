package entity

import (
	"time"

	"github.com/google/uuid"
)

type Clipboard struct {
	Id            uuid.UUID
	Code          string
	Content       string
	IsEncrypted   bool
	EncryptionKey *string
	// Subject of the owning user at the identity provider. Nil means the
	// record is anonymous and anyone may mutate it.
	OwnerId   *string
	IsPublic  bool
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// Expired reports whether the record is past its expiry at the given instant.
func (c *Clipboard) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// OwnedBy reports whether subject owns the record. Anonymous records are
// owned by nobody.
func (c *Clipboard) OwnedBy(subject string) bool {
	return c.OwnerId != nil && *c.OwnerId == subject
}
