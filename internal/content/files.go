package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/leanttro/storefront/internal/domain"
)

// UploadFile streams a file to the content store and returns the assigned
// file ID. The filename is sanitized before it crosses the wire.
func (c *Client) UploadFile(ctx context.Context, filename, mimeType string, r io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="file"; filename="%s"`, SanitizeFilename(filename)))
		if mimeType != "" {
			header.Set("Content-Type", mimeType)
		}

		part, err := mw.CreatePart(header)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/files", pr)
	if err != nil {
		return "", fmt.Errorf("content.UploadFile: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("content.UploadFile: %w: %v", domain.ErrUpstream, err)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(http.MethodPost, "files", 0, err)
		return "", fmt.Errorf("content.UploadFile: %w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		c.observe(http.MethodPost, "files", resp.StatusCode, err)
		return "", fmt.Errorf("content.UploadFile: %w: read body: %v", domain.ErrUpstream, err)
	}

	c.observe(http.MethodPost, "files", resp.StatusCode, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("content.UploadFile: %w: status %d: %s",
			domain.ErrUpstream, resp.StatusCode, truncate(body, 200))
	}

	envelope := struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}{}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("content.UploadFile: decode: %w", err)
	}
	if envelope.Data.ID == "" {
		return "", fmt.Errorf("content.UploadFile: response missing file id")
	}

	return envelope.Data.ID, nil
}

// SanitizeFilename strips path components and characters that have no
// business in an uploaded filename.
func SanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "upload"
	}
	return out
}
