package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
)

// header carries the provenance lines of the generated file.
type header struct {
	SpecPath string
	SpecHash string
}

// render executes the template and gofmts the result.
func render(f *genFile, h header) ([]byte, error) {
	var buf bytes.Buffer
	if err := genTemplate.Execute(&buf, struct {
		*genFile
		Header header
	}{f, h}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source: %w", err)
	}
	return src, nil
}

var genTemplate = template.Must(
	template.New("lazygen").
		Funcs(template.FuncMap{
			"brackets": func(s string) string {
				if s == "" {
					return ""
				}
				return "[" + s + "]"
			},
			"isVoid":  func(s methodShape) bool { return s == shapeVoid },
			"isError": func(s methodShape) bool { return s == shapeError },
		}).
		Parse(`// Code generated by lazygen; DO NOT EDIT.
// Spec: {{.Header.SpecPath}}
// Spec-SHA256: {{.Header.SpecHash}}

package {{.Package}}

import (
{{- range .Imports}}
	{{if .Name}}{{.Name}} {{end}}"{{.Path}}"
{{- end}}
)
{{- $rt := .Runtime}}
{{range .Proxies}}
{{- $p := .}}
// {{.Struct}} is a lazy proxy for {{.Name}}.
type {{.Struct}}{{brackets .TypeParams}} struct {
	holder *{{$rt}}.Holder[{{.Interface}}]
}

func {{.Ctor}}{{brackets .TypeParams}}(h *{{$rt}}.Holder[{{.Interface}}]) {{.Interface}} {
	return &{{.Struct}}{{brackets .TypeArgs}}{holder: h}
}

// LazyHolder implements {{$rt}}.Instance.
func (x *{{.Struct}}{{brackets .TypeArgs}}) LazyHolder() {{$rt}}.Materializer { return x.holder }
{{range .Methods}}
func (x *{{$p.Struct}}{{brackets $p.TypeArgs}}) {{.Name}}({{.Params}}) {{.Results}} {
{{- if isError .Shape}}
	target, err := x.holder.Get()
	if err != nil {
		{{- range .Zeros}}
		var {{.Name}} {{.Type}}
		{{- end}}
		return {{range .Zeros}}{{.Name}}, {{end}}err
	}
	return target.{{.Name}}({{.Args}})
{{- else if isVoid .Shape}}
	{{$rt}}.MustTarget(x.holder).{{.Name}}({{.Args}})
{{- else}}
	return {{$rt}}.MustTarget(x.holder).{{.Name}}({{.Args}})
{{- end}}
}
{{end}}
{{- end}}
func init() {
{{- range .Proxies}}
{{- $p := .}}
{{- if .Instances}}
{{- range .Instances}}
	{{$rt}}.Register({{$p.Ctor}}[{{.}}])
{{- end}}
{{- else}}
	{{$rt}}.Register({{.Ctor}})
{{- end}}
{{- end}}
}
`),
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes to a temporary file in the target directory and
// renames it over targetPath, so readers never observe a partial file.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	tmp, err := createTempFile(filepath.Dir(targetPath), filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}
