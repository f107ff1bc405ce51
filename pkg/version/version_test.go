package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/intervaltree/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	got := version.String("intervaltree")

	assert.Contains(t, got, "intervaltree "+version.Version)
	assert.Contains(t, got, "commit: "+version.Commit)
}

//nolint:paralleltest // writes the package variables.
func TestInitBinaryVersion_KeepsValues(t *testing.T) {
	version.InitBinaryVersion()

	assert.NotEmpty(t, version.Version)
	assert.NotEmpty(t, version.Commit)
}
