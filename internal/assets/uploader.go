package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"quickchat/internal/domain"
)

// Uploader stores an image payload (raw base64 or data URL) and returns a
// URL referencing the stored asset. Implementations must not persist anything
// on failure: no URL means no asset.
type Uploader interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// decodePayload strips an optional data-URL prefix and base64-decodes the
// rest, returning the bytes and the media extension.
func decodePayload(payload string) ([]byte, string, error) {
	ext := ".bin"
	data := payload
	if strings.HasPrefix(payload, "data:") {
		semi := strings.Index(payload, ";base64,")
		if semi < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URL", domain.ErrInvalidInput)
		}
		switch payload[len("data:"):semi] {
		case "image/png":
			ext = ".png"
		case "image/jpeg", "image/jpg":
			ext = ".jpg"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		}
		data = payload[semi+len(";base64,"):]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base64 image", domain.ErrInvalidInput)
	}
	if len(raw) == 0 {
		return nil, "", fmt.Errorf("%w: empty image", domain.ErrInvalidInput)
	}
	return raw, ext, nil
}

// HostUploader pushes assets to an external cloudinary-style upload endpoint
// and resolves the secure URL from the response.
type HostUploader struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewHostUploader(endpoint string, timeout time.Duration) *HostUploader {
	return &HostUploader{
		endpoint: endpoint,
		timeout:  timeout,
		client:   &http.Client{},
	}
}

var _ Uploader = (*HostUploader)(nil)

func (u *HostUploader) Upload(ctx context.Context, payload string) (string, error) {
	if _, _, err := decodePayload(payload); err != nil {
		return "", err
	}

	// Bounded timeout so a hung asset host cannot stall the request forever.
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"file": payload})
	if err != nil {
		return "", fmt.Errorf("marshal upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: asset upload: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: asset host returned %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out struct {
		SecureURL string `json:"secure_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode upload response: %v", domain.ErrUpstream, err)
	}
	if out.SecureURL == "" {
		return "", fmt.Errorf("%w: asset host returned no url", domain.ErrUpstream)
	}
	return out.SecureURL, nil
}

// DiskUploader stores assets under a local directory and returns a path
// served by the uploads route. Used in development deployments without an
// asset host.
type DiskUploader struct {
	dir string
}

func NewDiskUploader(dir string) *DiskUploader {
	return &DiskUploader{dir: dir}
}

var _ Uploader = (*DiskUploader)(nil)

func (u *DiskUploader) Upload(ctx context.Context, payload string) (string, error) {
	raw, ext, err := decodePayload(payload)
	if err != nil {
		return "", err
	}

	filename := uuid.NewString() + ext
	dest := filepath.Join(u.dir, filename)
	if err := os.WriteFile(dest, raw, 0o644); err != nil {
		return "", fmt.Errorf("%w: write asset: %v", domain.ErrUpstream, err)
	}
	return "/api/uploads/" + filename, nil
}
