// Package fetcher downloads remote survey source files over HTTP and FTP.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Options configures both transports.
type Options struct {
	HTTP HTTPOptions
	FTP  FTPOptions
}

// Mux routes a URL to the fetcher for its scheme.
type Mux struct {
	HTTP *HTTPFetcher
	FTP  *FTPFetcher
}

// NewMux creates fetchers for every supported scheme.
func NewMux(opts Options) *Mux {
	return &Mux{
		HTTP: NewHTTPFetcher(opts.HTTP),
		FTP:  NewFTPFetcher(opts.FTP),
	}
}

// IsRemote reports whether rawURL names a scheme the Mux can download.
func IsRemote(rawURL string) bool {
	scheme, _, ok := strings.Cut(rawURL, "://")
	if !ok {
		return false
	}
	switch strings.ToLower(scheme) {
	case "http", "https", "ftp":
		return true
	}
	return false
}

// For returns the fetcher for rawURL's scheme.
func (m *Mux) For(rawURL string) (Fetcher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse url")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return m.HTTP, nil
	case "ftp":
		return m.FTP, nil
	}
	return nil, eris.Errorf("fetcher: unsupported scheme %q", u.Scheme)
}

// DownloadToFile fetches rawURL with the matching fetcher.
func (m *Mux) DownloadToFile(ctx context.Context, rawURL, path string) (int64, error) {
	f, err := m.For(rawURL)
	if err != nil {
		return 0, err
	}
	return f.DownloadToFile(ctx, rawURL, path)
}

func copyToFile(body io.Reader, path string) (int64, error) {
	file, err := createFile(path)
	if err != nil {
		return 0, err
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, body)
	if err != nil {
		return n, eris.Wrap(err, "write file")
	}
	return n, nil
}
