package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/habitsync/internal/models"
)

// AuthGateway maps login and signup onto the remote auth endpoints. Both
// calls are unauthenticated.
type AuthGateway struct {
	client *Client
}

// NewAuthGateway creates an AuthGateway.
func NewAuthGateway(client *Client) *AuthGateway {
	return &AuthGateway{client: client}
}

// Login exchanges credentials for a session token.
func (g *AuthGateway) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := g.client.do(ctx, request{
		op:     "login",
		method: http.MethodPost,
		path:   "/login",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new account and returns its session token.
func (g *AuthGateway) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := g.client.do(ctx, request{
		op:     "signup",
		method: http.MethodPost,
		path:   "/signup",
		body:   req,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
