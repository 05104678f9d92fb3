package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// decodeSpec
// -----------------------------------------------------------------------------

func TestDecodeSpec_YAMLDefaults(t *testing.T) {
	t.Parallel()

	spec, err := decodeSpec([]byte(`
output: lazy_gen.go
interfaces:
  - name: Mailer
  - name: store
    proxy: storeProxy
`))
	require.NoError(t, err)

	assert.Equal(t, "lazy_gen.go", spec.Output)
	assert.Equal(t, ".", spec.Package)
	assert.Equal(t, defaultRuntime, spec.Runtime)
	assert.False(t, spec.AllowUnexported)
	require.Len(t, spec.Interfaces, 2)
	assert.Equal(t, "Mailer", spec.Interfaces[0].Name)
	assert.Empty(t, spec.Interfaces[0].Instances)
	assert.Equal(t, "storeProxy", spec.Interfaces[1].Proxy)
}

func TestDecodeSpec_JSON(t *testing.T) {
	t.Parallel()

	spec, err := decodeSpec([]byte(`{
  "output": "gen.go",
  "package": "./svc",
  "runtime": "example.com/rt",
  "allowUnexported": true,
  "interfaces": [{"name": "Repo", "instances": ["*User, int64"]}]
}`))
	require.NoError(t, err)

	assert.Equal(t, "./svc", spec.Package)
	assert.Equal(t, "example.com/rt", spec.Runtime)
	assert.True(t, spec.AllowUnexported)
	assert.Equal(t, []string{"*User, int64"}, spec.Interfaces[0].Instances)
}

func TestDecodeSpec_InstanceString(t *testing.T) {
	t.Parallel()

	spec, err := decodeSpec([]byte(`
output: lazy_gen.go
allowUnexported: "true"
interfaces:
  - name: Repo
    instances: " *User, int64 ; map[string]int, Order ;"
`))
	require.NoError(t, err)

	assert.True(t, spec.AllowUnexported, "weakly typed bool")
	assert.Equal(t, []string{"*User, int64", "map[string]int, Order"}, spec.Interfaces[0].Instances)
}

func TestDecodeSpec_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		src     string
		wantSub string
	}{
		{name: "not yaml", src: "output: [", wantSub: "parse"},
		{name: "empty", src: "", wantSub: "empty spec"},
		{name: "unknown key", src: "output: a.go\ninterfaces: [{name: A}]\nextra: 1\n", wantSub: "extra"},
		{name: "missing output", src: "interfaces: [{name: A}]\n", wantSub: "output"},
		{name: "output not go", src: "output: a.txt\ninterfaces: [{name: A}]\n", wantSub: "output"},
		{name: "no interfaces", src: "output: a.go\n", wantSub: "interfaces"},
		{name: "bad name", src: "output: a.go\ninterfaces: [{name: 'not ident'}]\n", wantSub: "goident"},
		{name: "bad proxy", src: "output: a.go\ninterfaces: [{name: A, proxy: 1x}]\n", wantSub: "goident"},
		{name: "bad runtime", src: "output: a.go\nruntime: 'a b'\ninterfaces: [{name: A}]\n", wantSub: "importpath"},
		{name: "duplicate interface", src: "output: a.go\ninterfaces: [{name: A}, {name: A}]\n", wantSub: "duplicate interface: A"},
		{
			name:    "proxy name clash",
			src:     "output: a.go\ninterfaces: [{name: A, proxy: bLazy}, {name: B}]\n",
			wantSub: "both generate bLazy",
		},
		{
			name:    "duplicate instance",
			src:     "output: a.go\ninterfaces: [{name: R, instances: ['int, string', 'int,string']}]\n",
			wantSub: "duplicate instance",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := decodeSpec([]byte(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantSub)
		})
	}
}

//
// -----------------------------------------------------------------------------
// readSpec
// -----------------------------------------------------------------------------

func TestReadSpec(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := writeTempFile(t, dir, "lazygen.yaml", "output: lazy_gen.go\ninterfaces: [{name: A}]\n")

	spec, raw, err := readSpec(p)
	require.NoError(t, err)
	assert.Equal(t, "A", spec.Interfaces[0].Name)
	assert.Equal(t, readFileString(t, p), string(raw))

	_, _, err = readSpec(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	bad := writeTempFile(t, dir, "bad.yaml", "interfaces: [{name: A}]\n")
	_, _, err = readSpec(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

//
// -----------------------------------------------------------------------------
// Naming helpers
// -----------------------------------------------------------------------------

func TestProxyAndCtorNames(t *testing.T) {
	t.Parallel()

	cases := []struct {
		spec      InterfaceSpec
		wantProxy string
		wantCtor  string
	}{
		{InterfaceSpec{Name: "Service1"}, "service1Lazy", "newService1Lazy"},
		{InterfaceSpec{Name: "internalService"}, "internalServiceLazy", "newInternalServiceLazy"},
		{InterfaceSpec{Name: "Store", Proxy: "storeProxy"}, "storeProxy", "newStoreProxy"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.wantProxy, proxyName(tc.spec))
		assert.Equal(t, tc.wantCtor, ctorName(tc.spec))
	}
	assert.Equal(t, "", lowerFirst(""))
	assert.Equal(t, "", upperFirst(""))
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sha256Hex(nil))
}

func TestMust_PanicsOnError(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { must(nil) })
	assert.PanicsWithError(t, "boom", func() { must(errorString("boom")) })
}

type errorString string

func (e errorString) Error() string { return string(e) }
