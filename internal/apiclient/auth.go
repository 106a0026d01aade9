package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"cookbook/internal/models"
)

// Login exchanges credentials for a token and the caller's identity.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := models.Credentials{Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "users/login", "", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers an account and signs it in.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	body := models.Registration{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "users/signup", "", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage sends one image as multipart field "image" and returns the
// URL the API stored it under. The token is attached when present.
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader, token string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	var out models.ImageUpload
	req := request{
		method:      http.MethodPost,
		path:        "image",
		token:       token,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}
	if err := c.do(ctx, req, &out); err != nil {
		return "", err
	}
	return out.ImageURL, nil
}
