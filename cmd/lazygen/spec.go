package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"go/token"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

const defaultRuntime = "github.com/sghaida/lazyproxy/proxy"

// Spec is the input schema consumed by the generator.
type Spec struct {
	// Output is the generated file, relative to the spec file.
	Output string `mapstructure:"output" validate:"required,endswith=.go"`

	// Package is the directory of the package declaring the interfaces,
	// relative to the spec file. Defaults to ".".
	Package string `mapstructure:"package"`

	// Runtime is the import path of the proxy runtime package.
	Runtime string `mapstructure:"runtime" validate:"omitempty,importpath"`

	// AllowUnexported permits unexported interfaces and methods.
	AllowUnexported bool `mapstructure:"allowUnexported"`

	Interfaces []InterfaceSpec `mapstructure:"interfaces" validate:"required,min=1,dive"`
}

// InterfaceSpec selects one interface to proxy.
type InterfaceSpec struct {
	Name string `mapstructure:"name" validate:"required,goident"`

	// Proxy overrides the generated type name.
	Proxy string `mapstructure:"proxy" validate:"omitempty,goident"`

	// Instances lists the closed instantiations of a generic interface, each a
	// comma-separated type argument list.
	Instances []string `mapstructure:"instances" validate:"dive,required"`
}

var specValidator = newSpecValidator()

func newSpecValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ","); name != "" {
			return name
		}
		return f.Name
	})
	must(v.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	}))
	must(v.RegisterValidation("importpath", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p != "" && !strings.ContainsAny(p, " \t\\\"") && !strings.HasPrefix(p, "/") && !strings.HasSuffix(p, "/")
	}))
	return v
}

// readSpec reads, decodes and validates the spec at path. It also returns the
// raw bytes, which feed the header hash.
func readSpec(path string) (Spec, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, nil, err
	}
	spec, err := decodeSpec(raw)
	if err != nil {
		return Spec{}, nil, fmt.Errorf("spec %s: %w", path, err)
	}
	return spec, raw, nil
}

func decodeSpec(raw []byte) (Spec, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Spec{}, fmt.Errorf("parse: %w", err)
	}
	if doc == nil {
		return Spec{}, fmt.Errorf("empty spec")
	}

	var spec Spec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToSliceHookFunc(";"),
			trimStringsHook,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &spec,
	})
	if err != nil {
		return Spec{}, err
	}
	if err := dec.Decode(doc); err != nil {
		return Spec{}, fmt.Errorf("decode: %w", err)
	}

	applySpecDefaults(&spec)
	if err := specValidator.Struct(spec); err != nil {
		return Spec{}, fmt.Errorf("validate: %w", err)
	}
	if err := validateSpec(&spec); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// trimStringsHook trims every decoded string, including instance list entries.
func trimStringsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(reflect.ValueOf(data).String()), nil
}

func applySpecDefaults(s *Spec) {
	if s.Package == "" {
		s.Package = "."
	}
	if s.Runtime == "" {
		s.Runtime = defaultRuntime
	}
	for i := range s.Interfaces {
		is := &s.Interfaces[i]
		kept := is.Instances[:0]
		for _, inst := range is.Instances {
			if inst = strings.TrimSpace(inst); inst != "" {
				kept = append(kept, inst)
			}
		}
		is.Instances = kept
	}
}

// validateSpec checks what struct tags cannot express.
func validateSpec(s *Spec) error {
	seen := make(map[string]struct{}, len(s.Interfaces))
	names := make(map[string]string, len(s.Interfaces))
	for _, is := range s.Interfaces {
		if _, ok := seen[is.Name]; ok {
			return fmt.Errorf("duplicate interface: %s", is.Name)
		}
		seen[is.Name] = struct{}{}

		pn := proxyName(is)
		if other, ok := names[pn]; ok {
			return fmt.Errorf("interfaces %s and %s both generate %s", other, is.Name, pn)
		}
		names[pn] = is.Name

		insts := make(map[string]struct{}, len(is.Instances))
		for _, inst := range is.Instances {
			key := strings.Join(strings.Fields(inst), "")
			if _, ok := insts[key]; ok {
				return fmt.Errorf("interface %s: duplicate instance %q", is.Name, inst)
			}
			insts[key] = struct{}{}
		}
	}
	return nil
}

// proxyName returns the generated type name for is.
func proxyName(is InterfaceSpec) string {
	if is.Proxy != "" {
		return is.Proxy
	}
	return lowerFirst(is.Name) + "Lazy"
}

// ctorName returns the generated constructor name for is.
func ctorName(is InterfaceSpec) string {
	return "new" + upperFirst(proxyName(is))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// must panics if err is non-nil. Only used for static setup.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
