package main

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

const testRuntime = "example.com/rt"

// runtimeSource is a minimal stand-in for the proxy runtime, enough to
// type-check generated files without the real module.
const runtimeSource = `package rt

type Materializer interface{ Materialize() (any, error) }

type Instance interface{ LazyHolder() Materializer }

type Holder[T any] struct {
	t   T
	err error
}

func (h *Holder[T]) Get() (T, error)          { return h.t, h.err }
func (h *Holder[T]) Materialize() (any, error) { return h.t, h.err }

func MustTarget[T any](h *Holder[T]) T {
	t, err := h.Get()
	if err != nil {
		panic(err)
	}
	return t
}

func Register[T any](func(*Holder[T]) T) {}
`

// testSpec returns a valid spec for the given interfaces against testRuntime.
func testSpec(allowUnexported bool, interfaces ...InterfaceSpec) Spec {
	return Spec{
		Output:          "lazy_gen.go",
		Package:         ".",
		Runtime:         testRuntime,
		AllowUnexported: allowUnexported,
		Interfaces:      interfaces,
	}
}

//
// -----------------------------------------------------------------------------
// In-memory type checking
// -----------------------------------------------------------------------------

// mapImporter serves pre-checked packages and falls back to compiling the
// standard library from source.
type mapImporter struct {
	pkgs     map[string]*types.Package
	fallback types.Importer
}

func (m mapImporter) Import(path string) (*types.Package, error) {
	if p, ok := m.pkgs[path]; ok {
		return p, nil
	}
	return m.fallback.Import(path)
}

type checker struct {
	fset *token.FileSet
	imp  mapImporter
}

func newChecker(t *testing.T) *checker {
	t.Helper()
	fset := token.NewFileSet()
	c := &checker{
		fset: fset,
		imp:  mapImporter{pkgs: map[string]*types.Package{}, fallback: importer.ForCompiler(fset, "source", nil)},
	}
	c.check(t, testRuntime, map[string]string{"rt.go": runtimeSource})
	return c
}

// check parses and type-checks files as package path and makes it importable.
func (c *checker) check(t *testing.T, path string, files map[string]string) *target {
	t.Helper()
	tgt, err := c.tryCheck(path, files)
	require.NoError(t, err)
	return tgt
}

func (c *checker) tryCheck(path string, files map[string]string) (*target, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	syntax := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(c.fset, name, files[name], parser.ParseComments)
		if err != nil {
			return nil, err
		}
		syntax = append(syntax, f)
	}
	conf := types.Config{Importer: c.imp}
	pkg, err := conf.Check(path, c.fset, syntax, nil)
	if err != nil {
		return nil, err
	}
	c.imp.pkgs[path] = pkg
	return &target{fset: c.fset, pkg: pkg, files: syntax}, nil
}

// generateSource inspects src as package example.com/svc and renders the result.
func generateSource(t *testing.T, spec Spec, src string) (string, *checker) {
	t.Helper()
	c := newChecker(t)
	tgt := c.check(t, "example.com/svc", map[string]string{"svc.go": src})
	file, err := inspect(tgt, spec)
	require.NoError(t, err)
	out, err := render(file, header{SpecPath: "lazygen.yaml", SpecHash: "deadbeef"})
	require.NoError(t, err)
	return string(out), c
}

// requireCompiles type-checks the generated output together with its source.
func requireCompiles(t *testing.T, src, generated string) {
	t.Helper()
	c := newChecker(t)
	_, err := c.tryCheck("example.com/svc", map[string]string{"svc.go": src, "lazy_gen.go": generated})
	require.NoError(t, err, "generated:\n%s", generated)
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
// It lets tests force errors on Write and Close without touching real files.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// setWriteSeams overrides the global seams used by writeFileAtomic and restores
// them when the test ends. Pass nil for any seam you don't want to override.
// Tests using it must not run in parallel.
func setWriteSeams(
	t *testing.T,
	createFn func(string, string) (tempFile, error),
	removeFn func(path string) error,
	chmodFn func(path string, mode os.FileMode) error,
	renameFn func(oldpath, newpath string) error,
) {
	t.Helper()

	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile, removeFile, chmodFile, renameFile = origCreate, origRemove, origChmod, origRename
	})

	if createFn != nil {
		createTempFile = createFn
	}
	if removeFn != nil {
		removeFile = removeFn
	}
	if chmodFn != nil {
		chmodFile = chmodFn
	}
	if renameFn != nil {
		renameFile = renameFn
	}
}
