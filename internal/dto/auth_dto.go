package dto

import (
	"time"

	"clipboard-api-be/internal/entity"

	"github.com/google/uuid"
)

type LoginURLResponse struct {
	AuthorizeURL string `json:"authorize_url"`
	State        string `json:"state"`
}

type TokenExchangeRequest struct {
	Code        string `json:"code" validate:"required,min=1"`
	RedirectURI string `json:"redirect_uri"`
	// Either the SPA did PKCE itself and sends the verifier, or it sends
	// back the state from /login and we use the cached one.
	CodeVerifier string `json:"code_verifier"`
	State        string `json:"state"`
}

type UserResponse struct {
	Id          uuid.UUID  `json:"id"`
	Subject     string     `json:"subject"`
	Email       string     `json:"email,omitempty"`
	Username    string     `json:"username,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		Id:          u.Id,
		Subject:     u.Subject,
		Email:       u.Email,
		Username:    u.Username,
		LastLoginAt: u.LastLoginAt,
	}
}

type TokenExchangeResponse struct {
	AccessToken  string       `json:"access_token"`
	TokenType    string       `json:"token_type,omitempty"`
	ExpiresIn    int64        `json:"expires_in,omitempty"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	Scope        string       `json:"scope,omitempty"`
	User         UserResponse `json:"user"`
}

type LogoutResponse struct {
	LogoutURL string `json:"logout_url,omitempty"`
}
