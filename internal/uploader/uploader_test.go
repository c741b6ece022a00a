package uploader

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateScreenshot(t *testing.T) {
	assert.NoError(t, ValidateScreenshot("image/png", 1024))
	assert.NoError(t, ValidateScreenshot("image/jpeg", MaxScreenshotSize))

	assert.ErrorIs(t, ValidateScreenshot("application/pdf", 1024), ErrNotImage)
	assert.ErrorIs(t, ValidateScreenshot("", 1024), ErrNotImage)
	assert.ErrorIs(t, ValidateScreenshot("image/png", MaxScreenshotSize+1), ErrTooLarge)
}

func TestClientUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		assert.Equal(t, "sparx_registrations", r.FormValue("upload_preset"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "proof.png", header.Filename)

		fmt.Fprint(w, `{"secure_url":"https://img.example/proof.png"}`)
	}))
	defer srv.Close()

	log := zerolog.Nop()
	client := NewClient(srv.URL, "sparx_registrations", &log)

	url, err := client.Upload(context.Background(), "proof.png", "image/png", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/proof.png", url)
}

func TestClientUploadRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Upload preset not found"}}`)
	}))
	defer srv.Close()

	log := zerolog.Nop()
	client := NewClient(srv.URL, "missing-preset", &log)

	_, err := client.Upload(context.Background(), "proof.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestClientUploadMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	log := zerolog.Nop()
	client := NewClient(srv.URL, "preset", &log)

	_, err := client.Upload(context.Background(), "proof.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)
}
