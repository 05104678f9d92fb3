package proxy

import (
	"reflect"
	"strings"
)

// Descriptor is the canonical identity of a proxied interface shape.
//
// Two descriptors are equal iff package path, base name and the ordered list of
// bound type arguments match, so a Descriptor can be used directly as a map key.
// A closed generic interface such as Repo[User] and Repo[Order] yield two
// distinct descriptors sharing a base name.
type Descriptor struct {
	pkgPath string
	name    string
	args    string // canonical type arguments, comma separated, as reported by reflect
}

// DescriptorOf returns the descriptor of an interface type.
//
// It fails with ErrNilType for a nil type and with a NotInterfaceError for
// anything that is not an interface.
func DescriptorOf(t reflect.Type) (Descriptor, error) {
	if t == nil {
		return Descriptor{}, ErrNilType
	}
	if t.Kind() != reflect.Interface {
		return Descriptor{}, &NotInterfaceError{Type: t}
	}
	return describe(t), nil
}

// DescriptorFor is the generic form of DescriptorOf.
func DescriptorFor[T any]() (Descriptor, error) {
	return DescriptorOf(reflect.TypeFor[T]())
}

// describe builds a descriptor for any type without validating its kind.
func describe(t reflect.Type) Descriptor {
	name := t.Name()
	if name == "" {
		// Unnamed interface literal: the type string is its identity.
		return Descriptor{name: t.String()}
	}
	d := Descriptor{pkgPath: t.PkgPath(), name: name}
	if i := strings.IndexByte(name, '['); i >= 0 && strings.HasSuffix(name, "]") {
		d.name = name[:i]
		d.args = strings.Join(splitTypeArgs(name[i+1:len(name)-1]), ",")
	}
	return d
}

// PkgPath returns the import path of the defining package ("" for predeclared or
// unnamed interfaces).
func (d Descriptor) PkgPath() string { return d.pkgPath }

// Name returns the base name without type arguments.
func (d Descriptor) Name() string { return d.name }

// Generic reports whether the descriptor carries bound type arguments.
func (d Descriptor) Generic() bool { return d.args != "" }

// TypeArgs returns the bound type arguments in declaration order.
func (d Descriptor) TypeArgs() []string {
	if d.args == "" {
		return nil
	}
	return splitTypeArgs(d.args)
}

// IsZero reports whether d is the zero descriptor.
func (d Descriptor) IsZero() bool { return d == Descriptor{} }

// String renders the descriptor as pkg/path.Name[Arg1,Arg2].
func (d Descriptor) String() string {
	var sb strings.Builder
	if d.pkgPath != "" {
		sb.WriteString(d.pkgPath)
		sb.WriteByte('.')
	}
	sb.WriteString(d.name)
	if d.args != "" {
		sb.WriteByte('[')
		sb.WriteString(d.args)
		sb.WriteByte(']')
	}
	return sb.String()
}

// splitTypeArgs splits a type argument list on commas that are not nested
// inside brackets, parentheses or braces (e.g. map[K]V, func(a, b), struct{...}).
func splitTypeArgs(s string) []string {
	var (
		out   []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}
