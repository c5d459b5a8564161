package httpfetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Open(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.UserAgent())
		w.Write([]byte("GIF89a payload"))
	}))
	defer srv.Close()

	body, err := New(Options{UserAgent: "test-agent"}).Open(context.Background(), srv.URL)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "GIF89a payload", string(data))
}

func TestFetcher_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := New(Options{}).Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetcher_MaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 16)))
	}))
	defer srv.Close()

	t.Run("over limit", func(t *testing.T) {
		body, err := New(Options{MaxBytes: 10}).Open(context.Background(), srv.URL)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		assert.ErrorIs(t, err, ErrBodyTooLarge)
		assert.Len(t, data, 10)
	})

	t.Run("exactly at limit", func(t *testing.T) {
		body, err := New(Options{MaxBytes: 16}).Open(context.Background(), srv.URL)
		require.NoError(t, err)
		defer body.Close()

		data, err := io.ReadAll(body)
		assert.NoError(t, err)
		assert.Len(t, data, 16)
	})
}
