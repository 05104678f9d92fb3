package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

const usage = "usage: lazygen [--spec lazygen.yaml] [--out lazy_gen.go] [-v]"

// options are the parsed command line.
type options struct {
	specPath string
	outPath  string // overrides the spec's output
}

// run executes the generator and returns an exit code: 0 on success, 1 when
// generation fails and 2 for usage errors. It exists separately from main to
// allow unit testing without os.Exit.
func run(args []string, stderr io.Writer) int {
	flags := pflag.NewFlagSet("lazygen", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	var opts options
	flags.StringVar(&opts.specPath, "spec", "lazygen.yaml", "path to the lazygen spec (YAML or JSON)")
	flags.StringVar(&opts.outPath, "out", "", "output file, overriding the spec's output")
	verbose := flags.BoolP("verbose", "v", false, "log generation steps to stderr")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		_, _ = fmt.Fprintf(stderr, "lazygen: %v\n", err)
		_, _ = fmt.Fprintln(stderr, usage)
		return 2
	}
	if flags.NArg() > 0 {
		_, _ = fmt.Fprintln(stderr, usage)
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := generate(opts, log); err != nil {
		_, _ = fmt.Fprintf(stderr, "lazygen: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// generate reads the spec, inspects the package and writes the output file.
func generate(opts options, log *slog.Logger) error {
	spec, raw, err := readSpec(opts.specPath)
	if err != nil {
		return err
	}

	specDir := filepath.Dir(opts.specPath)
	pkgDir := filepath.Join(specDir, spec.Package)
	outPath := opts.outPath
	if outPath == "" {
		outPath = filepath.Join(specDir, spec.Output)
	}
	if err := sameDir(pkgDir, filepath.Dir(outPath)); err != nil {
		return err
	}
	log.Debug("spec loaded", "spec", opts.specPath, "interfaces", len(spec.Interfaces), "out", outPath)

	t, err := loadPackage(pkgDir, outPath)
	if err != nil {
		return err
	}
	log.Debug("package loaded", "path", t.pkg.Path(), "files", len(t.files))

	file, err := inspect(t, spec)
	if err != nil {
		return err
	}
	for _, p := range file.Proxies {
		log.Debug("proxy", "interface", p.Name, "type", p.Struct, "methods", len(p.Methods), "instances", len(p.Instances))
	}

	src, err := render(file, header{SpecPath: filepath.ToSlash(opts.specPath), SpecHash: sha256Hex(raw)})
	if err != nil {
		return err
	}
	if err := writeFileAtomic(outPath, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	log.Debug("generated", "out", outPath, "bytes", len(src))
	return nil
}

// sameDir requires the output file to live in the package it is generated for.
func sameDir(pkgDir, outDir string) error {
	a, err := filepath.Abs(pkgDir)
	if err != nil {
		return err
	}
	b, err := filepath.Abs(outDir)
	if err != nil {
		return err
	}
	if a != b {
		return fmt.Errorf("output directory %s is not the package directory %s", outDir, pkgDir)
	}
	return nil
}
