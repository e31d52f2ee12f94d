// Package imageref turns opaque image identifiers from the survey data into
// displayable URLs.
package imageref

import (
	"net/url"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

const arnPrefix = "arn:aws:s3:::"

// DefaultPlaceholder is the URL template used for identifiers that are not
// object storage references. %s is replaced with a seed derived from the
// identifier.
const DefaultPlaceholder = "https://picsum.photos/seed/%s/400/300"

// Image kinds.
const (
	KindS3          = "s3"
	KindPlaceholder = "placeholder"
)

// Resolution errors.
var (
	ErrEmptyIdentifier = eris.New("imageref: empty image identifier")
	ErrMalformedARN    = eris.New("imageref: malformed s3 arn")
)

// Info is a resolved image.
type Info struct {
	ID   string `json:"id"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Config configures a Resolver.
type Config struct {
	// Region is the bucket region used to build virtual-hosted URLs.
	Region string
	// PublicBaseURL, when set, replaces the bucket host (e.g. a CDN).
	PublicBaseURL string
	// Placeholder is a URL template with one %s verb.
	Placeholder string
}

// Resolver maps identifiers to URLs. It is safe for concurrent use.
type Resolver struct {
	cfg Config
}

// NewResolver creates a Resolver.
func NewResolver(cfg Config) *Resolver {
	if cfg.Placeholder == "" || !strings.Contains(cfg.Placeholder, "%s") {
		cfg.Placeholder = DefaultPlaceholder
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &Resolver{cfg: cfg}
}

// IsARN reports whether id is an S3 object ARN.
func IsARN(id string) bool {
	return strings.HasPrefix(strings.TrimSpace(id), arnPrefix)
}

// Resolve returns the URL for an identifier. S3 ARNs map to the object URL;
// anything else maps to a deterministic placeholder.
func (r *Resolver) Resolve(id string) (Info, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Info{}, ErrEmptyIdentifier
	}
	if IsARN(id) {
		u, err := r.objectURL(id)
		if err != nil {
			return Info{}, err
		}
		return Info{ID: id, URL: u, Type: KindS3}, nil
	}
	return Info{ID: id, URL: r.placeholder(id), Type: KindPlaceholder}, nil
}

func (r *Resolver) objectURL(arn string) (string, error) {
	bucket, key, ok := strings.Cut(strings.TrimPrefix(arn, arnPrefix), "/")
	if !ok || bucket == "" || key == "" {
		return "", eris.Wrapf(ErrMalformedARN, "arn %q", arn)
	}
	escaped := escapeKey(key)
	if r.cfg.PublicBaseURL != "" {
		return r.cfg.PublicBaseURL + "/" + escaped, nil
	}
	host := bucket + ".s3.amazonaws.com"
	if r.cfg.Region != "" {
		host = bucket + ".s3." + r.cfg.Region + ".amazonaws.com"
	}
	return "https://" + host + "/" + escaped, nil
}

func (r *Resolver) placeholder(id string) string {
	seed := strings.TrimSuffix(path.Base(id), path.Ext(id))
	if seed == "" || seed == "." || seed == "/" {
		seed = "image"
	}
	return strings.Replace(r.cfg.Placeholder, "%s", url.PathEscape(seed), 1)
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
