package main

import (
	"os"

	"github.com/snyk-labs/orgscale/internal/errors"
	"github.com/snyk-labs/orgscale/pkg/cmd/root"
	"github.com/snyk-labs/orgscale/pkg/cmd/version"
)

func main() {
	cmd := root.NewCmdRoot(version.Version)
	os.Exit(errors.ExecuteWithErrorHandling(cmd))
}
