package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// MaxScreenshotSize caps payment proof uploads at 5 MiB.
const MaxScreenshotSize = 5 << 20

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("file exceeds the 5 MiB limit")
)

// Uploader sends a payment screenshot to the external image host and returns
// its durable public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, file io.Reader) (string, error)
}

// ValidateScreenshot enforces the client-side proof contract: any image MIME
// type, at most 5 MiB.
func ValidateScreenshot(contentType string, size int64) error {
	if !strings.HasPrefix(contentType, "image/") {
		return ErrNotImage
	}
	if size > MaxScreenshotSize {
		return ErrTooLarge
	}
	return nil
}

// Client talks to a Cloudinary-style unsigned upload endpoint: a multipart
// POST of the file plus an upload preset, answered with a secure URL.
type Client struct {
	endpoint string
	preset   string
	client   *http.Client
	log      *zerolog.Logger
}

func NewClient(endpoint, preset string, log *zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		preset:   preset,
		client:   http.DefaultClient,
		log:      log,
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

func (c *Client) Upload(ctx context.Context, filename, contentType string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField("upload_preset", c.preset); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(mw.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, pr)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error().Int("status", resp.StatusCode).Str("body", string(body)).Msg("image host rejected upload")
		return "", fmt.Errorf("image host returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if parsed.SecureURL == "" {
		return "", fmt.Errorf("upload response missing secure URL")
	}

	c.log.Info().Str("file", filename).Msg("payment screenshot uploaded")
	return parsed.SecureURL, nil
}
