package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Login exchanges a username and password for an access token. The endpoint
// speaks the form-encoded password grant, not JSON.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, err
	}
	var result LoginResult
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AcceptInvite finishes registration for an emailed invitation, setting the
// account's first password.
func (c *Client) AcceptInvite(ctx context.Context, email, token, password string) error {
	payload := map[string]string{
		"email":    email,
		"token":    token,
		"password": password,
	}
	return c.postJSON(ctx, "/auth/accept-invite", "", payload, nil)
}

// SendInvite asks the service to email one invitation.
func (c *Client) SendInvite(ctx context.Context, token string, inv InviteRequest) error {
	return c.postJSON(ctx, "/auth/invite", token, inv, nil)
}

// Me returns the identity behind a token. Guards use it to recover the role
// when the cached copy is missing.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/users/me", token, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MyTeam lists the direct reports of a manager.
func (c *Client) MyTeam(ctx context.Context, token string) ([]User, error) {
	var team []User
	if err := c.getJSON(ctx, "/users/my-team", token, &team); err != nil {
		return nil, err
	}
	return team, nil
}
