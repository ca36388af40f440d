package rest

import (
	"context"
	"net/http"
)

type AdminPayload struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{
		Username: username,
		Password: password,
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", body, &resp); err != nil {
		return "", err
	}

	return resp.Token, nil
}

func (c *Client) GetAdmin(ctx context.Context, token string) (AdminPayload, error) {
	var resp struct {
		User AdminPayload `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/", token, nil, &resp); err != nil {
		return AdminPayload{}, err
	}

	return resp.User, nil
}
