package source

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retail-presence/internal/fetcher"
	"github.com/sells-group/retail-presence/internal/table"
)

// RemoteSource downloads a CSV or XLSX file and parses it locally. Over
// HTTP the last ETag is remembered, and an unchanged file reuses the
// previously parsed table.
type RemoteSource struct {
	name    string
	url     string
	sheet   string
	format  Format
	fetcher *fetcher.Mux
	tempDir string

	mu   sync.Mutex
	etag string
	last *table.Table
}

// NewRemote creates a source for a remote file URL.
func NewRemote(name, rawURL, sheet string, opts Options) (*RemoteSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrap(err, "source: parse url")
	}
	f, err := FormatOf(u.Path)
	if err != nil {
		return nil, err
	}
	return &RemoteSource{
		name:    name,
		url:     rawURL,
		sheet:   sheet,
		format:  f,
		fetcher: opts.Fetcher,
		tempDir: opts.TempDir,
	}, nil
}

// Load implements Source.
func (s *RemoteSource) Load(ctx context.Context) (*table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir, err := os.MkdirTemp(s.tempDir, "retail-presence-*")
	if err != nil {
		return nil, eris.Wrap(err, "source: temp dir")
	}
	defer os.RemoveAll(dir) //nolint:errcheck
	local := filepath.Join(dir, s.name+s.format.ext())

	var etag string
	if isHTTP(s.url) {
		var changed bool
		etag, changed, err = s.downloadHTTP(ctx, local)
		if err != nil {
			return nil, err
		}
		if !changed && s.last != nil {
			zap.L().Info("source: remote unchanged, reusing table",
				zap.String("dataset", s.name),
				zap.String("etag", s.etag),
			)
			return s.last, nil
		}
	} else if _, err := s.fetcher.DownloadToFile(ctx, s.url, local); err != nil {
		return nil, eris.Wrapf(err, "source: download %s", s.url)
	}

	var t *table.Table
	if s.format == XLSX {
		t, err = ReadXLSX(ctx, s.name, local, s.sheet)
	} else {
		t, err = (&CSVSource{name: s.name, path: local}).Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	// The ETag only moves once its body parsed, so a bad download is
	// fetched again on the next load.
	s.etag = etag
	s.last = t
	return t, nil
}

// downloadHTTP writes the body to local unless the server reports the
// remembered ETag as current. It returns the ETag of the body written.
func (s *RemoteSource) downloadHTTP(ctx context.Context, local string) (string, bool, error) {
	etag := s.etag
	if s.last == nil {
		etag = ""
	}
	body, newETag, changed, err := s.fetcher.HTTP.DownloadIfChanged(ctx, s.url, etag)
	if err != nil {
		return "", false, eris.Wrapf(err, "source: download %s", s.url)
	}
	if !changed {
		return s.etag, false, nil
	}
	defer body.Close() //nolint:errcheck

	f, err := os.Create(local)
	if err != nil {
		return "", false, eris.Wrap(err, "source: create file")
	}
	defer f.Close() //nolint:errcheck
	if _, err := f.ReadFrom(body); err != nil {
		return "", false, eris.Wrap(err, "source: write file")
	}
	return newETag, true, nil
}

func (s *RemoteSource) String() string { return s.url }

func (f Format) ext() string { return "." + string(f) }

func isHTTP(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
