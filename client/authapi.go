package client

import "context"

// AuthLogin obtains a backend-issued token pair from username and password.
// This is the alternate auth mode for environments without the identity
// broker; install the result via SetAuthToken.
func (c *Client) AuthLogin(ctx context.Context, username, password string) (*TokenResponse, error) {
	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var tokens TokenResponse
	ok, err := c.post(ctx, "/auth/token", body, &tokens)
	if err != nil || !ok {
		return nil, err
	}
	return &tokens, nil
}

// AuthRefresh renews a backend-issued token pair.
func (c *Client) AuthRefresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var tokens TokenResponse
	ok, err := c.post(ctx, "/auth/refresh", body, &tokens)
	if err != nil || !ok {
		return nil, err
	}
	return &tokens, nil
}

// AuthProfile fetches the authenticated caller's identity.
func (c *Client) AuthProfile(ctx context.Context) (*Profile, error) {
	var profile Profile
	ok, err := c.get(ctx, "/auth/profile", nil, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	ok, err := c.get(ctx, "/health", nil, &status)
	if err != nil || !ok {
		return nil, err
	}
	return &status, nil
}

// Info fetches the backend's service description.
func (c *Client) Info(ctx context.Context) (*APIInfo, error) {
	var info APIInfo
	ok, err := c.get(ctx, "/", nil, &info)
	if err != nil || !ok {
		return nil, err
	}
	return &info, nil
}
