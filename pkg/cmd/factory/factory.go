// Package factory assembles the dependencies a command needs to run
package factory

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/afero"

	"github.com/snyk-labs/orgscale/internal/api"
	"github.com/snyk-labs/orgscale/internal/config"
)

// Factory carries per-run state shared by all commands
type Factory struct {
	Config  *config.Config
	FS      afero.Fs
	Version string

	debug bool
}

// Option modifies a Factory before it is returned
type Option func(*Factory)

// WithDebug turns on HTTP request/response dumping on clients built by this
// factory
func WithDebug(debug bool) Option {
	return func(f *Factory) {
		f.debug = debug
	}
}

// New builds a Factory for a command run
func New(version string, opts ...Option) *Factory {
	f := &Factory{
		Config:  config.Load(),
		FS:      afero.NewOsFs(),
		Version: version,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// RestAPIClient builds a Snyk API client for the resolved token. The base URL
// honors SNYK_API when set.
func (f *Factory) RestAPIClient(token string) *api.Client {
	opts := []api.ClientOption{
		api.WithUserAgent(fmt.Sprintf("orgscale/%s (%s/%s)", f.Version, runtime.GOOS, runtime.GOARCH)),
	}

	if u := f.Config.APIURL(); u != "" {
		opts = append(opts, api.WithBaseURL(u))
	}
	if f.debug {
		opts = append(opts, api.WithDebug(f.debugWriter()))
	}

	return api.NewClient(token, opts...)
}

func (f *Factory) debugWriter() io.Writer {
	return os.Stderr
}
