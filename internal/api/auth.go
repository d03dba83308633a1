package api

import (
	"context"

	"smsbridge/internal/model"
	"smsbridge/internal/session"
)

// AuthAPI is the only facade with a side channel: it writes and clears the
// session store as part of login, registration and logout.
type AuthAPI struct {
	client  *Client
	session *session.Store
}

func NewAuthAPI(client *Client, sess *session.Store) *AuthAPI {
	return &AuthAPI{client: client, session: sess}
}

type AuthResponse struct {
	User  model.User `json:"user"`
	Token string     `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthAPI) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.client.Post(ctx, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := a.session.Save(resp.User, resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := a.client.Post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	if err := a.session.Save(resp.User, resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) error {
	return a.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

func (a *AuthAPI) Profile(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := a.client.Get(ctx, "/user/profile", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type ProfileUpdate struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UpdateProfile replaces the stored user record with the server's view
// while keeping the current token.
func (a *AuthAPI) UpdateProfile(ctx context.Context, update ProfileUpdate) (*model.User, error) {
	var user model.User
	if err := a.client.Put(ctx, "/user/update-profile", update, &user); err != nil {
		return nil, err
	}
	if err := a.session.Save(user, a.session.Token()); err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *AuthAPI) DeleteAccount(ctx context.Context) error {
	if err := a.client.Delete(ctx, "/user/account"); err != nil {
		return err
	}
	return a.Logout()
}

func (a *AuthAPI) Logout() error {
	return a.session.Clear()
}

// ValidateKey checks an API key without mutating anything; a rejected or
// failed check reads as invalid.
func (a *AuthAPI) ValidateKey(ctx context.Context, apiKey string) bool {
	var resp struct {
		Valid bool `json:"valid"`
	}
	if err := a.client.Post(ctx, "/auth/validate-key", map[string]string{"apiKey": apiKey}, &resp); err != nil {
		return false
	}
	return resp.Valid
}

// DeviceAuth exchanges a device id and API key for a device-scoped token.
func (a *AuthAPI) DeviceAuth(ctx context.Context, deviceID, apiKey string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"deviceId": deviceID, "apiKey": apiKey}
	if err := a.client.Post(ctx, "/auth/device/auth", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
