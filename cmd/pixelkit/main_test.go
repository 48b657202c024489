package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-pixelkit/codec"
	"github.com/nvr-ai/go-pixelkit/detector"
	"github.com/nvr-ai/go-pixelkit/images"
	"github.com/nvr-ai/go-pixelkit/test"
	"github.com/nvr-ai/go-pixelkit/warp"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	root := a.rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeImage(t *testing.T, b *images.Buffer) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.png")
	require.NoError(t, codec.Save(path, b, codec.Options{}))
	return path
}

func TestParseQuad(t *testing.T) {
	q, err := parseQuad("0,0, 10,0, 10,5, 0,5")
	require.NoError(t, err)
	assert.Equal(t, warp.Quad{{0, 0}, {10, 0}, {10, 5}, {0, 5}}, q)

	_, err = parseQuad("1,2,3")
	assert.Error(t, err)
	_, err = parseQuad("a,0,10,0,10,5,0,5")
	assert.Error(t, err)
}

func TestAdjustIdentity(t *testing.T) {
	src := test.Gradient(24, 16, 3)
	in := writeImage(t, src)
	out := filepath.Join(t.TempDir(), "out.png")

	_, err := run(t, "adjust", "--in", in, "--out", out)
	require.NoError(t, err)

	got, err := codec.Load(out)
	require.NoError(t, err)
	assert.Equal(t, images.ComputeChecksum(src), images.ComputeChecksum(got))
}

func TestRotateCommand(t *testing.T) {
	in := writeImage(t, test.Gradient(40, 20, 3))
	out := filepath.Join(t.TempDir(), "out.png")

	_, err := run(t, "rotate", "--in", in, "--out", out, "--angle", "90")
	require.NoError(t, err)

	got, err := codec.Load(out)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Width)
	assert.Equal(t, 40, got.Height)
}

func TestFilterUnknownMode(t *testing.T) {
	in := writeImage(t, test.Uniform(8, 8, 3, 50))
	_, err := run(t, "filter", "--in", in, "--out", filepath.Join(t.TempDir(), "o.png"), "--mode", "median")
	assert.Error(t, err)
}

func TestCompareWholeImages(t *testing.T) {
	in := writeImage(t, test.Gradient(32, 32, 3))

	out, err := run(t, "compare", "--a", in, "--b", in, "--cascade=")
	require.NoError(t, err)
	assert.Contains(t, out, "match=true")
	assert.Contains(t, out, "correlation=1.0000")
}

func TestMissingRequiredFlag(t *testing.T) {
	_, err := run(t, "dehaze", "--in", "x.png")
	assert.Error(t, err)
}

func TestCompareUsesConfiguredCascade(t *testing.T) {
	in := writeImage(t, test.Gradient(32, 32, 3))
	cfg := filepath.Join(t.TempDir(), "pixelkit.yaml")
	missing := filepath.Join(t.TempDir(), "missing.xml")
	require.NoError(t, os.WriteFile(cfg, []byte("detector:\n  cascade: "+missing+"\n"), 0o644))

	_, err := run(t, "--config", cfg, "compare", "--a", in, "--b", in)
	assert.ErrorIs(t, err, detector.ErrCascadeLoad)

	out, err := run(t, "--config", cfg, "compare", "--a", in, "--b", in, "--cascade=")
	require.NoError(t, err)
	assert.Contains(t, out, "match=true")
}

func TestErrorsAreNotPrintedByCobra(t *testing.T) {
	out, err := run(t, "dehaze", "--in", "x.png")
	require.Error(t, err)
	assert.NotContains(t, out, "Error:")
}
