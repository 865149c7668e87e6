package mapper

import (
	"time"

	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/model"
)

type ClipboardMapper struct{}

func NewClipboardMapper() *ClipboardMapper {
	return &ClipboardMapper{}
}

func (m *ClipboardMapper) ToEntity(c *model.Clipboard) *entity.Clipboard {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() && !c.UpdatedAt.Equal(c.CreatedAt) {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Clipboard{
		Id:            c.Id,
		Code:          c.Code,
		Content:       c.Content,
		IsEncrypted:   c.IsEncrypted,
		EncryptionKey: c.EncryptionKey,
		OwnerId:       c.OwnerId,
		IsPublic:      c.IsPublic,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ClipboardMapper) ToModel(c *entity.Clipboard) *model.Clipboard {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Clipboard{
		Id:            c.Id,
		Code:          c.Code,
		Content:       c.Content,
		IsEncrypted:   c.IsEncrypted,
		EncryptionKey: c.EncryptionKey,
		OwnerId:       c.OwnerId,
		IsPublic:      c.IsPublic,
		ExpiresAt:     c.ExpiresAt,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *ClipboardMapper) ToEntities(clipboards []*model.Clipboard) []*entity.Clipboard {
	entities := make([]*entity.Clipboard, len(clipboards))
	for i, c := range clipboards {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
