package main

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// target is the type-checked package the proxies are generated into.
type target struct {
	fset  *token.FileSet
	pkg   *types.Package
	files []*ast.File
}

// loadPackage type-checks the package in dir.
//
// A previously generated outPath is replaced by a bare package clause, so a
// stale or broken generated file never prevents regeneration.
func loadPackage(dir, outPath string) (*target, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedImports,
		Dir:  absDir,
		Fset: fset,
	}
	if stub, ok, err := stubGenerated(outPath); err != nil {
		return nil, err
	} else if ok {
		abs, err := filepath.Abs(outPath)
		if err != nil {
			return nil, err
		}
		cfg.Overlay = map[string][]byte{abs: stub}
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("load %s: want 1 package, got %d", dir, len(pkgs))
	}
	p := pkgs[0]
	if len(p.Errors) > 0 {
		errs := make([]error, 0, len(p.Errors))
		for _, e := range p.Errors {
			errs = append(errs, e)
		}
		return nil, fmt.Errorf("load %s: %w", dir, errors.Join(errs...))
	}
	return &target{fset: fset, pkg: p.Types, files: p.Syntax}, nil
}

// stubGenerated returns "package <name>" for an existing output file.
func stubGenerated(outPath string) ([]byte, bool, error) {
	src, err := os.ReadFile(outPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	f, err := parser.ParseFile(token.NewFileSet(), outPath, src, parser.PackageClauseOnly)
	if err != nil {
		// not even a package clause; let the loader report it
		return nil, false, nil
	}
	return []byte("package " + f.Name.Name + "\n"), true, nil
}
