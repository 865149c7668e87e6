package specification

import (
	"time"

	"gorm.io/gorm"
)

type ByCode struct {
	Code string
}

func (s ByCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("code = ?", s.Code)
}

// VisibleTo keeps public records plus, when Subject is non-empty, records
// owned by that subject.
type VisibleTo struct {
	Subject string
}

func (s VisibleTo) Apply(db *gorm.DB) *gorm.DB {
	if s.Subject == "" {
		return db.Where("is_public = ?", true)
	}
	return db.Where("is_public = ? OR owner_id = ?", true, s.Subject)
}

// ExpiredBefore matches records whose expiry is set and already past.
type ExpiredBefore struct {
	Now time.Time
}

func (s ExpiredBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("expires_at IS NOT NULL AND expires_at < ?", s.Now)
}
