package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/intervaltree/pkg/interval"
	"github.com/Sumatoshi-tech/intervaltree/pkg/intervaltree"
)

const eventsYAML = `kind: long
intervals:
  - {start: 1, end: 5, label: a}
  - {start: 3, end: 8}
  - {start: 10, end: 12, openEnd: true}
  - {start: 20, end: null}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// buildEvents writes the sample dataset and builds it into a snapshot.
func buildEvents(t *testing.T, extra ...string) string {
	t.Helper()

	dir := t.TempDir()
	dataset := writeFile(t, dir, "events.yaml", eventsYAML)
	snapshot := filepath.Join(dir, "events.ivt")

	_, err := execute(t, append([]string{"build", dataset, "-o", snapshot}, extra...)...)
	require.NoError(t, err)

	return snapshot
}

func TestBuild_PrintsSummary(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataset := writeFile(t, dir, "events.yaml", eventsYAML)
	snapshot := filepath.Join(dir, "events.ivt")

	out, err := execute(t, "build", dataset, "-o", snapshot, "--compress")
	require.NoError(t, err)

	assert.Contains(t, out, "indexed 4 of 4 intervals into 4 nodes")
	assert.Contains(t, out, "wrote "+snapshot)
	assert.FileExists(t, snapshot)
}

func TestBuild_Quiet(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataset := writeFile(t, dir, "events.json",
		`{"kind":"double","intervals":[{"start":0.5,"end":2.5,"label":"x"}]}`)

	out, err := execute(t, "-q", "build", dataset, "-o", filepath.Join(dir, "x.ivt"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestBuild_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dataset := writeFile(t, dir, "events.yaml", eventsYAML)

	_, err := execute(t, "build", dataset)
	require.ErrorIs(t, err, ErrMissingOutput)

	_, err = execute(t, "build", writeFile(t, dir, "events.txt", eventsYAML), "-o", filepath.Join(dir, "a.ivt"))
	require.ErrorIs(t, err, ErrUnsupportedDataset)

	reversed := writeFile(t, dir, "reversed.yaml", "intervals:\n  - {start: 9, end: 1}\n")
	_, err = execute(t, "build", reversed, "-o", filepath.Join(dir, "b.ivt"))
	require.ErrorIs(t, err, interval.ErrIllegalTimeInterval)
}

func TestOverlap(t *testing.T) {
	t.Parallel()

	snapshot := buildEvents(t)

	out, err := execute(t, "overlap", snapshot, "[4,11]")
	require.NoError(t, err)

	assert.Contains(t, out, "[1,5]@a")
	assert.Contains(t, out, "[3,8]")
	assert.Contains(t, out, "[10,12)")
	assert.NotContains(t, out, "+inf")
}

func TestOverlap_BadQuery(t *testing.T) {
	t.Parallel()

	snapshot := buildEvents(t)

	_, err := execute(t, "overlap", snapshot, "1,5")
	require.ErrorIs(t, err, interval.ErrSyntax)
}

func TestFind_Filters(t *testing.T) {
	t.Parallel()

	snapshot := buildEvents(t)

	out, err := execute(t, "find", snapshot, "[1,5]")
	require.NoError(t, err)
	assert.NotContains(t, out, "[1,5]@a")

	out, err = execute(t, "find", snapshot, "[1,5]", "--filter", "interval")
	require.NoError(t, err)
	assert.Contains(t, out, "[1,5]@a")

	_, err = execute(t, "find", snapshot, "[1,5]", "--filter", "nearby")
	require.ErrorIs(t, err, interval.ErrUnknownFilter)
}

func TestRelation(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "relation", "[1,5]", "[3,8]")
	require.NoError(t, err)
	assert.Equal(t, "[1,5] overlaps [3,8]\n", out)

	out, err = execute(t, "relation", "[1,10]", "[3.5,5]", "--kind-b", "double")
	require.NoError(t, err)
	assert.Contains(t, out, "includes")

	_, err = execute(t, "relation", "[1,10]", "[3.5,5]", "--kind-b", "double", "--strict")
	require.Error(t, err)
}

func TestStats(t *testing.T) {
	t.Parallel()

	snapshot := buildEvents(t, "--no-balance")

	out, err := execute(t, "stats", snapshot, "--metrics")
	require.NoError(t, err)

	assert.Contains(t, out, "invariants hold")
	assert.Contains(t, out, "strict")
	assert.Contains(t, out, "intervaltree_tree_nodes")
	assert.Contains(t, out, "intervaltree_tree_height")
}

func TestDump(t *testing.T) {
	t.Parallel()

	snapshot := buildEvents(t)

	out, err := execute(t, "dump", snapshot)
	require.NoError(t, err)

	assert.Contains(t, out, "[1,5] max=")
	assert.Contains(t, out, "[10,11] max=")
	assert.Contains(t, out, "[10,12)")
	assert.Less(t, bytes.Index([]byte(out), []byte("[1,5]")), bytes.Index([]byte(out), []byte("[3,8]")))
}

func TestDiff(t *testing.T) {
	t.Parallel()

	a := buildEvents(t)
	b := buildEvents(t, "--compress")

	out, err := execute(t, "diff", a, b)
	require.NoError(t, err)
	assert.Contains(t, out, "snapshots are identical")

	dir := t.TempDir()
	dataset := writeFile(t, dir, "more.yaml", eventsYAML+"  - {start: 30, end: 31}\n")
	c := filepath.Join(dir, "more.ivt")

	_, err = execute(t, "build", dataset, "-o", c)
	require.NoError(t, err)

	out, err = execute(t, "diff", a, c)
	require.ErrorIs(t, err, ErrSnapshotsDiffer)
	assert.Contains(t, out, "+ [30,31]")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	out, err := execute(t, "validate", writeFile(t, dir, "events.yaml", eventsYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "valid, 4 intervals")

	out, err = execute(t, "validate", writeFile(t, dir, "missing.json", `{"intervals":[{"start":1}]}`))
	require.ErrorIs(t, err, ErrInvalidDataset)
	assert.Contains(t, out, "end is required")

	_, err = execute(t, "validate", writeFile(t, dir, "reversed.json", `{"kind":"long","intervals":[{"start":5,"end":1}]}`))
	require.ErrorIs(t, err, ErrInvalidDataset)
	require.ErrorIs(t, err, interval.ErrIllegalTimeInterval)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "intervaltree.yaml",
		"store:\n  backend: bolt\n  path: "+filepath.Join(dir, "collections.db")+"\n")
	dataset := writeFile(t, dir, "events.yaml", eventsYAML)
	snapshot := filepath.Join(dir, "events.ivt")

	_, err := execute(t, "--config", cfg, "build", dataset, "-o", snapshot)
	require.NoError(t, err)

	out, err := execute(t, "--config", cfg, "overlap", snapshot, "[4,4]")
	require.NoError(t, err)
	assert.Contains(t, out, "[1,5]@a")
	assert.Contains(t, out, "[3,8]")

	_, err = execute(t, "overlap", snapshot, "[4,4]")
	require.ErrorIs(t, err, intervaltree.ErrIllegalConfiguration)
}

func TestFileStoreWithConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := writeFile(t, dir, "intervaltree.yaml",
		"tree:\n  collection: list\nstore:\n  backend: file\n  codec: json\n  path: "+filepath.Join(dir, "store")+"\n")
	dataset := writeFile(t, dir, "events.yaml", eventsYAML)
	snapshot := filepath.Join(dir, "events.ivt")

	_, err := execute(t, "--config", cfg, "build", dataset, "-o", snapshot)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(dir, "store"))
	require.NoError(t, err)
	assert.Len(t, entries, 4)

	out, err := execute(t, "--config", cfg, "stats", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "persistent-list")
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "intervaltree ")
}
