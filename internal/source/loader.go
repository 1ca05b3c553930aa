// Package source reads schema, job and values documents from files, stdin,
// an fs.FS or http(s) URLs.
package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

// Kind is how a location is read.
type Kind string

const (
	KindFile  Kind = "file"
	KindFS    Kind = "fs"
	KindURL   Kind = "url"
	KindStdin Kind = "stdin"
)

// FSPrefix marks a location inside the loader's fs.FS.
const FSPrefix = "fs:"

// DefaultTimeout bounds HTTP requests.
const DefaultTimeout = 30 * time.Second

var (
	// ErrHTTPDisabled is returned for URL locations when HTTP is turned off.
	ErrHTTPDisabled = errors.New("source: http support disabled")
	// ErrEmptyLocation is returned for a blank location.
	ErrEmptyLocation = errors.New("source: location is required")
)

// Loader reads documents by location.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	stdin     io.Reader
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS serves "fs:" locations from files.
func WithFS(files fs.FS) Option {
	return func(l *Loader) { l.fs = files }
}

// WithHTTPClient replaces the HTTP client. The client's own timeout wins when
// set.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Loader) {
		if client != nil {
			clone := *client
			l.http = &clone
		}
	}
}

// WithTimeout bounds each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// WithoutHTTP rejects URL locations.
func WithoutHTTP() Option {
	return func(l *Loader) { l.allowHTTP = false }
}

// WithStdin sets the reader used for "-".
func WithStdin(r io.Reader) Option {
	return func(l *Loader) {
		if r != nil {
			l.stdin = r
		}
	}
}

// New constructs a Loader reading files, stdin and URLs.
func New(opts ...Option) *Loader {
	l := &Loader{
		allowHTTP: true,
		timeout:   DefaultTimeout,
		stdin:     os.Stdin,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	if l.http == nil {
		l.http = &http.Client{}
	}
	return l
}

// KindOf classifies a location.
func KindOf(location string) Kind {
	switch {
	case location == "-":
		return KindStdin
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return KindURL
	case strings.HasPrefix(location, FSPrefix):
		return KindFS
	}
	return KindFile
}

// Load reads the document at location.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptyLocation
	}
	if ctx == nil {
		ctx = context.Background()
	}
	switch KindOf(location) {
	case KindStdin:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return io.ReadAll(l.stdin)
	case KindURL:
		if !l.allowHTTP {
			return nil, ErrHTTPDisabled
		}
		return loadHTTP(ctx, l.http, location, l.timeout)
	case KindFS:
		return loadFromFS(ctx, l.fs, strings.TrimPrefix(location, FSPrefix))
	default:
		return loadFile(ctx, location)
	}
}
