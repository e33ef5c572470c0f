package testutil

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/snyk-labs/orgscale/pkg/cmd/factory"
)

// CreateFactory creates a Factory with test credentials, an in-memory
// filesystem and the API pointed at serverURL. Because the credentials come
// from the environment, tests using it must not call t.Parallel.
func CreateFactory(t *testing.T, serverURL string) *factory.Factory {
	t.Helper()

	t.Setenv("SNYK_TOKEN", "test-token")
	t.Setenv("SNYK_TENANT_ID", "c41c33c0-0d2f-4a6c-9d0f-93106b56b2d4")
	t.Setenv("SNYK_API", serverURL)

	f := factory.New("testing")
	f.FS = afero.NewMemMapFs()

	return f
}
