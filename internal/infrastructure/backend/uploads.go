package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadImage sends a catalog image to /upload and returns its url
func (c *Client) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.upload(ctx, "upload", "/upload", filename, content, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// UploadFile sends an image to /files/image and returns its url
func (c *Client) UploadFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var out struct {
		FileURL string `json:"fileUrl"`
	}
	if err := c.upload(ctx, "files", "/files/image", filename, content, &out); err != nil {
		return "", err
	}
	return out.FileURL, nil
}

// upload buffers the multipart body so a retry can resend it
func (c *Client) upload(ctx context.Context, resource, path, filename string, content io.Reader, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("failed to create multipart field: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		resource:    resource,
		path:        path,
		body:        buf.Bytes(),
		contentType: w.FormDataContentType(),
	}, out)
}
