package mapper

import (
	"encoding/json"

	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/model"

	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	var claims map[string]interface{}
	if len(u.Claims) > 0 {
		// Claims come straight from the provider; a malformed blob is not
		// worth failing a read over.
		_ = json.Unmarshal(u.Claims, &claims)
	}

	return &entity.User{
		Id:          u.Id,
		Subject:     u.Subject,
		Email:       u.Email,
		Username:    u.Username,
		Claims:      claims,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	var claims datatypes.JSON
	if u.Claims != nil {
		if raw, err := json.Marshal(u.Claims); err == nil {
			claims = raw
		}
	}

	return &model.User{
		Id:          u.Id,
		Subject:     u.Subject,
		Email:       u.Email,
		Username:    u.Username,
		Claims:      claims,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}
