package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Me returns the account of the signed-in user.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/me", nil, &out); err != nil {
		return nil, fmt.Errorf("loading current user: %w", err)
	}
	return &out, nil
}

// Profile returns the signed-in user's profile.
func (c *Client) Profile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/profile", nil, &out); err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	return &out, nil
}

// UpdateProfile saves p and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, p Profile) (*Profile, error) {
	var out Profile
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/profile", p, &out); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return &out, nil
}

// ChangePassword replaces the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, pc PasswordChange) error {
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/change-password", pc, nil); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}
	return nil
}

// UploadAvatar sends an image as the user's avatar and returns its URL.
func (c *Client) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	body, err := c.upload(ctx, "/api/user/upload-avatar", filename, r)
	if err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}
	var out struct {
		Avatar    string `json:"avatar"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding avatar response: %w", err)
	}
	if out.AvatarURL != "" {
		return out.AvatarURL, nil
	}
	return out.Avatar, nil
}

// upload posts r as the "file" field of a multipart form.
func (c *Client) upload(ctx context.Context, path, filename string, r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}
	return c.send(req)
}
