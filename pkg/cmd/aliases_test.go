package cmd

import (
	"bytes"
	"testing"

	"github.com/switchyard-dev/switchyard/pkg/config"
	"gotest.tools/v3/golden"
)

func TestWriteAliases(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.Repository{
			{Name: "billing-api", Alias: "api"},
			{Name: "billing-db", Alias: "db"},
			{Name: "no-alias"},
		},
	}

	var buf bytes.Buffer
	WriteAliases(&buf, cfg)

	golden.Assert(t, buf.String(), "aliases.txt")
}
