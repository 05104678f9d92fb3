package main

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// run() routing
// -----------------------------------------------------------------------------

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		args     []string
		wantCode int
		wantSub  string
	}{
		{name: "unknown flag", args: []string{"--wat"}, wantCode: 2, wantSub: "lazygen: unknown flag: --wat"},
		{name: "extra args", args: []string{"a", "b"}, wantCode: 2, wantSub: "usage: lazygen"},
		{name: "help", args: []string{"--help"}, wantCode: 0, wantSub: "--spec"},
		{name: "missing spec", args: []string{"--spec", filepath.Join(t.TempDir(), "nope.yaml")}, wantCode: 1, wantSub: "lazygen: open"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var stderr bytes.Buffer
			assert.Equal(t, tc.wantCode, run(tc.args, &stderr))
			assert.Contains(t, stderr.String(), tc.wantSub)
		})
	}
}

func TestRun_InvalidSpec(t *testing.T) {
	t.Parallel()

	p := writeTempFile(t, t.TempDir(), "lazygen.yaml", "output: lazy_gen.go\n")

	var stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"--spec", p}, &stderr))
	assert.Contains(t, stderr.String(), "validate:")
}

func TestRun_OutputOutsidePackage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeTempFile(t, dir, "lazygen.yaml", "output: lazy_gen.go\ninterfaces: [{name: A}]\n")

	var stderr bytes.Buffer
	code := run([]string{"--spec", p, "--out", filepath.Join(dir, "sub", "lazy_gen.go")}, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "is not the package directory")
}

func TestSameDir(t *testing.T) {
	t.Parallel()

	require.NoError(t, sameDir("a/b", "a/./b"))
	require.NoError(t, sameDir(".", ""))
	require.Error(t, sameDir("a", "a/b"))
}

//
// -----------------------------------------------------------------------------
// End to end: go/packages loading
// -----------------------------------------------------------------------------

func requireGo(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go toolchain not on PATH")
	}
}

func TestRun_GeneratesIntoModule(t *testing.T) {
	t.Parallel()
	requireGo(t)

	dir := t.TempDir()
	writeTempFile(t, dir, "go.mod", "module example.com/e2e\n\ngo 1.23\n")
	writeTempFile(t, dir, "svc.go", `package e2e

import "context"

type Greeter interface {
	Greet(ctx context.Context, name string) (string, error)
}

type Pair[A, B any] interface {
	First() A
	Second() B
}
`)
	spec := writeTempFile(t, dir, "lazygen.yaml", `output: lazy_gen.go
interfaces:
  - name: Greeter
  - name: Pair
    instances: "int, string; string, context.Context"
`)
	out := filepath.Join(dir, "lazy_gen.go")

	var stderr bytes.Buffer
	require.Equal(t, 0, run([]string{"--spec", spec, "-v"}, &stderr), stderr.String())
	assert.Contains(t, stderr.String(), "generated")

	got := readFileString(t, out)
	assert.Contains(t, got, "// Spec-SHA256: "+sha256Hex([]byte(readFileString(t, spec))))
	assert.Contains(t, got, `"github.com/sghaida/lazyproxy/proxy"`)
	assert.Contains(t, got, "func (x *greeterLazy) Greet(ctx context.Context, name string) (string, error) {")
	assert.Contains(t, got, "proxy.Register(newPairLazy[int, string])")
	assert.Contains(t, got, "proxy.Register(newPairLazy[string, context.Context])")

	// a stale, unparsable output must not block regeneration
	writeTempFile(t, dir, "lazy_gen.go", "package e2e\n\nfunc broken( {\n")
	stderr.Reset()
	require.Equal(t, 0, run([]string{"--spec", spec}, &stderr), stderr.String())
	assert.Equal(t, got, readFileString(t, out))
}

func TestRun_PackageErrorsAreReported(t *testing.T) {
	t.Parallel()
	requireGo(t)

	dir := t.TempDir()
	writeTempFile(t, dir, "go.mod", "module example.com/e2e\n\ngo 1.23\n")
	writeTempFile(t, dir, "svc.go", "package e2e\n\ntype A interface{ Do() Missing }\n")
	spec := writeTempFile(t, dir, "lazygen.yaml", "output: lazy_gen.go\ninterfaces: [{name: A}]\n")

	var stderr bytes.Buffer
	assert.Equal(t, 1, run([]string{"--spec", spec}, &stderr))
	assert.Contains(t, stderr.String(), "Missing")
	_, err := os.Stat(filepath.Join(dir, "lazy_gen.go"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixturesAreUpToDate(t *testing.T) {
	t.Parallel()
	requireGo(t)

	dir := filepath.Join("..", "..", "internal", "fixtures")
	specPath := filepath.Join(dir, "lazygen.yaml")
	spec, raw, err := readSpec(specPath)
	require.NoError(t, err)

	outPath := filepath.Join(dir, spec.Output)
	tgt, err := loadPackage(dir, outPath)
	require.NoError(t, err)
	file, err := inspect(tgt, spec)
	require.NoError(t, err)
	src, err := render(file, header{SpecPath: "lazygen.yaml", SpecHash: sha256Hex(raw)})
	require.NoError(t, err)

	committed := readFileString(t, outPath)
	assert.Contains(t, committed, "// Spec-SHA256: "+sha256Hex(raw), "run go generate ./internal/fixtures")
	for _, want := range []string{
		"func (x *internalServiceLazy) reset() {",
		"proxy.Register(newGenericServiceLazy[*ParameterType1, ParameterType2, *ParameterType3])",
		"func (x *resourceLazy) Fetch(key string) (string, error) {",
	} {
		assert.Contains(t, string(src), want)
		assert.Contains(t, committed, want)
	}
}
