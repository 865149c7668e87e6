package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clipboard-api-be/internal/config"
	"clipboard-api-be/internal/dto"
	"clipboard-api-be/internal/entity"
	"clipboard-api-be/internal/pkg/serverutils"
	"clipboard-api-be/internal/repository/memory"
	"clipboard-api-be/internal/repository/specification"
	"clipboard-api-be/internal/repository/unitofwork"
	"clipboard-api-be/pkg/events"
	"clipboard-api-be/pkg/pkce"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

type IAuthService interface {
	serverutils.TokenVerifier

	// BuildLoginURL starts a PKCE login: it generates state and verifier,
	// caches them, and returns the provider authorize URL for the SPA.
	BuildLoginURL(ctx context.Context) (*dto.LoginURLResponse, error)
	Exchange(ctx context.Context, req *dto.TokenExchangeRequest) (*dto.TokenExchangeResponse, error)
	Logout(ctx context.Context, token string) (*dto.LogoutResponse, error)
}

type authService struct {
	uowFactory       unitofwork.RepositoryFactory
	cfg              config.OAuthConfig
	loginStates      *memory.LoginStateRepository
	userInfoCache    *memory.UserInfoCache
	publisherService IPublisherService
	httpClient       *http.Client
}

func NewAuthService(
	uowFactory unitofwork.RepositoryFactory,
	cfg config.OAuthConfig,
	loginStates *memory.LoginStateRepository,
	userInfoCache *memory.UserInfoCache,
	publisherService IPublisherService,
) IAuthService {
	return &authService{
		uowFactory:       uowFactory,
		cfg:              cfg,
		loginStates:      loginStates,
		userInfoCache:    userInfoCache,
		publisherService: publisherService,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (s *authService) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.ClientID,
		ClientSecret: s.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       strings.Fields(s.cfg.Scope),
		Endpoint: oauth2.Endpoint{
			AuthURL:  s.cfg.AuthorizeURL,
			TokenURL: s.cfg.TokenURL,
		},
	}
}

func (s *authService) Enabled() bool {
	return s.cfg.Enabled
}

func (s *authService) requireEnabled() error {
	if !s.cfg.Enabled {
		return serverutils.NewHttpError(fiber.StatusServiceUnavailable, "OAuth2 authentication is not enabled on this server.")
	}
	return nil
}

func (s *authService) BuildLoginURL(ctx context.Context) (*dto.LoginURLResponse, error) {
	if err := s.requireEnabled(); err != nil {
		return nil, err
	}
	if s.cfg.AuthorizeURL == "" || s.cfg.ClientID == "" || s.cfg.RedirectURI == "" {
		return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "OAuth2 authorize endpoint is not configured.")
	}

	state, err := pkce.GenerateState()
	if err != nil {
		return nil, err
	}
	verifier, err := pkce.GenerateVerifier()
	if err != nil {
		return nil, err
	}

	s.loginStates.Save(&memory.LoginState{
		State:        state,
		CodeVerifier: verifier,
		CreatedAt:    time.Now(),
	})

	url := s.oauthConfig(s.cfg.RedirectURI).AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	return &dto.LoginURLResponse{
		AuthorizeURL: url,
		State:        state,
	}, nil
}

func (s *authService) Exchange(ctx context.Context, req *dto.TokenExchangeRequest) (*dto.TokenExchangeResponse, error) {
	if err := s.requireEnabled(); err != nil {
		return nil, err
	}
	if s.cfg.TokenURL == "" {
		return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "OAUTH2_TOKEN_URL is not configured.")
	}
	if s.cfg.ClientID == "" || s.cfg.ClientSecret == "" {
		return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "OAuth2 client credentials are not configured.")
	}

	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = s.cfg.RedirectURI
	}
	if redirectURI == "" {
		return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "OAuth2 redirect URI is not configured.")
	}

	// The SPA either did PKCE itself and sends the verifier, or it hands
	// back the state from /login. An unknown state means the login never
	// started here (or already expired): classic state mismatch.
	verifier := req.CodeVerifier
	if verifier == "" && req.State != "" {
		pending, found := s.loginStates.Take(req.State)
		if !found {
			return nil, serverutils.NewHttpError(fiber.StatusBadRequest, "State mismatch: unknown or expired login state.")
		}
		verifier = pending.CodeVerifier
	}
	if verifier != "" {
		if err := pkce.ValidateVerifier(verifier); err != nil {
			return nil, serverutils.NewHttpError(fiber.StatusBadRequest, err.Error())
		}
	}

	opts := []oauth2.AuthCodeOption{}
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.oauthConfig(redirectURI).Exchange(ctx, req.Code, opts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			if retrieveErr.Response != nil && retrieveErr.Response.StatusCode == http.StatusUnauthorized {
				return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Authorization code is invalid or expired.")
			}
			return nil, serverutils.NewHttpErrorf(fiber.StatusBadGateway, "Token endpoint rejected the exchange: %s", retrieveErr.ErrorCode)
		}
		log.Printf("[Auth] Code exchange failed: %v", err)
		return nil, serverutils.NewHttpError(fiber.StatusBadGateway, "Unable to reach OAuth2 service.")
	}

	user, err := s.verifyWithProvider(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	s.userInfoCache.Set(token.AccessToken, user)

	s.publisherService.PublishEvent(ctx, events.UserLogin, map[string]interface{}{
		"actor": user.Subject,
		"email": user.Email,
	})

	res := &dto.TokenExchangeResponse{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		User:         dto.NewUserResponse(user),
	}
	if !token.Expiry.IsZero() {
		if remaining := time.Until(token.Expiry); remaining > 0 {
			res.ExpiresIn = int64(remaining.Seconds())
		}
	}
	if scope, ok := token.Extra("scope").(string); ok {
		res.Scope = scope
	}
	return res, nil
}

// VerifyToken resolves a bearer token to a user, serving hot tokens from
// the cache and rejecting obviously expired JWTs without a provider call.
func (s *authService) VerifyToken(ctx context.Context, token string) (*entity.User, error) {
	if err := s.requireEnabled(); err != nil {
		return nil, err
	}

	if user, found := s.userInfoCache.Get(token); found {
		return user, nil
	}

	if expired, ok := jwtExpired(token, time.Now()); ok && expired {
		return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Token has expired.")
	}

	user, err := s.verifyWithProvider(ctx, token)
	if err != nil {
		return nil, err
	}

	s.userInfoCache.Set(token, user)
	return user, nil
}

func (s *authService) Logout(ctx context.Context, token string) (*dto.LogoutResponse, error) {
	if err := s.requireEnabled(); err != nil {
		return nil, err
	}

	if token != "" {
		s.userInfoCache.Delete(token)
	}

	return &dto.LogoutResponse{
		LogoutURL: s.cfg.LogoutURL,
	}, nil
}

// jwtExpired parses the token without signature verification, purely to
// skip a provider round-trip for tokens that are past their exp claim.
// Opaque (non-JWT) tokens report ok=false and go to the provider as usual.
func jwtExpired(token string, now time.Time) (expired, ok bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false, false
	}
	return exp.Before(now), true
}

func (s *authService) verifyWithProvider(ctx context.Context, token string) (*entity.User, error) {
	if s.cfg.UserInfoURL == "" {
		return nil, serverutils.NewHttpError(fiber.StatusInternalServerError, "OAUTH2_USERINFO_URL is not configured.")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[Auth] Userinfo request failed: %v", err)
		return nil, serverutils.NewHttpError(fiber.StatusBadGateway, "Unable to reach OAuth2 service.")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Invalid authentication credentials.")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serverutils.NewHttpErrorf(fiber.StatusBadGateway, "Unable to fetch OAuth2 user info: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, serverutils.NewHttpError(fiber.StatusBadGateway, "Unable to read OAuth2 user info response.")
	}

	var claims map[string]interface{}
	if err := json.Unmarshal(body, &claims); err != nil {
		return nil, serverutils.NewHttpError(fiber.StatusBadGateway, "OAuth2 user info response is not valid JSON.")
	}

	subject := firstStringClaim(claims, "sub", "id", "user_id")
	if subject == "" {
		return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "User info response missing identifier.")
	}

	if s.cfg.Audience != "" {
		if aud := firstStringClaim(claims, "aud"); aud != "" && aud != s.cfg.Audience {
			return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Token audience does not match the configured audience.")
		}
	}
	if s.cfg.Issuer != "" {
		if iss := firstStringClaim(claims, "iss"); iss != "" && iss != s.cfg.Issuer {
			return nil, serverutils.NewHttpError(fiber.StatusUnauthorized, "Token issuer does not match the configured issuer.")
		}
	}

	return s.upsertUser(ctx, subject, claims)
}

// upsertUser keeps a local row per provider subject so clipboard ownership
// survives provider-side profile changes.
func (s *authService) upsertUser(ctx context.Context, subject string, claims map[string]interface{}) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	email := firstStringClaim(claims, "email")
	username := firstStringClaim(claims, "username", "preferred_username", "name")
	now := time.Now()

	user, err := uow.UserRepository().FindOne(ctx, specification.BySubject{Subject: subject})
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &entity.User{
			Id:          uuid.New(),
			Subject:     subject,
			Email:       email,
			Username:    username,
			Claims:      claims,
			CreatedAt:   now,
			LastLoginAt: &now,
		}
		if err := uow.UserRepository().Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	user.Email = email
	user.Username = username
	user.Claims = claims
	user.LastLoginAt = &now
	if err := uow.UserRepository().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func firstStringClaim(claims map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		switch v := claims[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			// Providers that use numeric ids still get a stable subject.
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
