package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// LoginState is a pending authorization-code flow started by /auth/login.
// The PKCE verifier never leaves the server in this mode.
type LoginState struct {
	State        string
	CodeVerifier string
	CreatedAt    time.Time
}

type LoginStateRepository struct {
	cache *cache.Cache
}

func NewLoginStateRepository(ttl time.Duration) *LoginStateRepository {
	c := cache.New(ttl, 10*time.Minute)
	return &LoginStateRepository{
		cache: c,
	}
}

func (r *LoginStateRepository) Save(state *LoginState) {
	r.cache.Set(state.State, state, cache.DefaultExpiration)
}

// Take returns the pending login for the given state and removes it, so a
// state can only be redeemed once.
func (r *LoginStateRepository) Take(state string) (*LoginState, bool) {
	x, found := r.cache.Get(state)
	if !found {
		return nil, false
	}
	r.cache.Delete(state)
	return x.(*LoginState), true
}

func (r *LoginStateRepository) Delete(state string) {
	r.cache.Delete(state)
}
