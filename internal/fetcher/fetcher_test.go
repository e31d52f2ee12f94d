package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.com/board.csv"))
	assert.True(t, IsRemote("HTTP://example.com/board.csv"))
	assert.True(t, IsRemote("ftp://example.com/board.csv"))
	assert.False(t, IsRemote("data/board.csv"))
	assert.False(t, IsRemote("sqlite://data/survey.db"))
	assert.False(t, IsRemote("postgres://localhost/survey"))
}

func TestMuxFor(t *testing.T) {
	m := NewMux(Options{})

	f, err := m.For("https://example.com/x.csv")
	require.NoError(t, err)
	assert.Same(t, m.HTTP, f)

	f, err = m.For("ftp://example.com/x.csv")
	require.NoError(t, err)
	assert.Same(t, m.FTP, f)

	_, err = m.For("s3://bucket/x.csv")
	assert.Error(t, err)
}

func TestMuxDownloadToFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a,b\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "x.csv")
	n, err := NewMux(Options{}).DownloadToFile(context.Background(), srv.URL+"/x.csv", path)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(data))
}
