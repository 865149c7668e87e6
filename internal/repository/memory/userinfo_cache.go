package memory

import (
	"time"

	"clipboard-api-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// UserInfoCache keeps verified userinfo responses keyed by bearer token so
// hot tokens do not hit the identity provider on every request.
type UserInfoCache struct {
	cache *cache.Cache
}

func NewUserInfoCache(ttl time.Duration) *UserInfoCache {
	return &UserInfoCache{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

func (c *UserInfoCache) Get(token string) (*entity.User, bool) {
	if x, found := c.cache.Get(token); found {
		return x.(*entity.User), true
	}
	return nil, false
}

func (c *UserInfoCache) Set(token string, user *entity.User) {
	c.cache.Set(token, user, cache.DefaultExpiration)
}

func (c *UserInfoCache) Delete(token string) {
	c.cache.Delete(token)
}
