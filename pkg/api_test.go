package pkg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const manifestYAML = `
editions:
  - name: Live
    locale: en
    generation: 2
    season: 5
  - name: Live again
    locale: en
    generation: 3
    season: 0
  - name: Odd
    locale: fr
    generation: 1
    season: 120
features:
  - name: Shop
    default: G2S0
  - name: Raid
    enable: G2S5@en
    disable: G3S0@en
  - name: Broken
    default: soon
    enable: G1S0
  - name: Wide
    disable: G1S150@fr
`

func writeManifest(t *testing.T) (manifestPath, dir string) {
	t.Helper()
	dir = t.TempDir()
	manifestPath = filepath.Join(dir, "features.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifestYAML), 0o600))
	return manifestPath, dir
}

func testLogger() hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Name: "pkg_test", Level: hclog.Trace})
}

func TestCompileAndOpenResolver(t *testing.T) {
	manifestPath, dir := writeManifest(t)
	out := filepath.Join(dir, "features.xml.compiled.gz")

	require.NoError(t, CompileManifest(manifestPath, out, testLogger()))

	res, loaded, err := OpenResolver(out, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "GZIP", loaded.Codec)

	require.NoError(t, res.SelectEdition("en", false, false))
	assert.True(t, res.IsEnabled("Shop"))
	assert.True(t, res.IsEnabled("Raid"))
	assert.False(t, res.IsEnabled("Broken"))
	assert.False(t, res.IsEnabled("Missing"))

	res.SelectEditionExplicit("en", 3, 0, 0)
	assert.False(t, res.IsEnabled("Raid"))
}

func TestOpenResolver_Preconditions(t *testing.T) {
	_, _, err := OpenResolver(filepath.Join(t.TempDir(), "none.compiled"), nil)
	assert.ErrorIs(t, err, ErrCatalogNotFound)

	_, _, err = OpenResolver("features.xml", nil)
	assert.ErrorIs(t, err, ErrInvalidFileName)
}

func TestVerifyCatalog(t *testing.T) {
	manifestPath, dir := writeManifest(t)
	out := filepath.Join(dir, "features.compiled")
	require.NoError(t, CompileManifest(manifestPath, out, nil))

	report := VerifyCatalogWithLogger(out, testLogger())
	require.True(t, report.OK(), report.Errors)
	require.NotNil(t, report.Loaded)

	joined := strings.Join(report.Warnings, "\n")
	assert.Contains(t, joined, "shadowed")
	assert.Contains(t, joined, "season 120 overlaps")
	assert.Contains(t, joined, `default "soon"`)
	assert.Contains(t, joined, `enable "G1S0"`)
	assert.Contains(t, joined, `disable "G1S150@fr" season overlaps`)
	assert.Len(t, report.Warnings, 5)
}

func TestVerifyCatalog_Failure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.compiled")
	require.NoError(t, os.WriteFile(path, []byte{2, 0, 1}, 0o600))

	report := VerifyCatalog(path)
	assert.False(t, report.OK())
	assert.Nil(t, report.Loaded)
}
