package main

import (
	"fmt"
	"go/token"
	"go/types"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// genFile is everything the template needs for one output file.
type genFile struct {
	Package string
	// Runtime is the identifier the proxy runtime is imported as.
	Runtime string
	Imports []importSpec
	Proxies []proxyModel
}

type importSpec struct {
	// Name is set only when the import needs an explicit alias.
	Name string
	Path string
}

type proxyModel struct {
	Interface  string // interface type expression inside the proxy, e.g. Repo[K, V]
	Name       string // interface name as declared
	Struct     string
	Ctor       string
	TypeParams string // "K comparable, V any"; empty for non-generic interfaces
	TypeArgs   string // "K, V"
	Methods    []methodModel
	Instances  []string
}

type methodShape int

const (
	shapeValue methodShape = iota // forwards through MustTarget
	shapeVoid                     // no results
	shapeError                    // last result is error
)

type methodModel struct {
	Name    string
	Shape   methodShape
	Params  string
	Results string
	Args    string
	Zeros   []zeroValue

	params []param
}

type param struct {
	name     string
	typ      string
	variadic bool
}

type zeroValue struct {
	Name string
	Type string
}

var (
	errorType   = types.Universe.Lookup("error").Type()
	resultName  = regexp.MustCompile(`^r[0-9]+$`)
	identifier  = regexp.MustCompile(`[\pL_][\pL\pN_]*`)
	localIdents = []string{"x", "target", "err"}
	// the constructor's parameter and the proxy's field
	declIdents = []string{"h", "holder"}
)

// inspector resolves the configured interfaces of one package.
type inspector struct {
	t       *target
	spec    Spec
	imports *importSet
}

func inspect(t *target, spec Spec) (*genFile, error) {
	in := &inspector{t: t, spec: spec, imports: newImportSet(t.pkg)}
	for _, l := range localIdents {
		in.imports.avoid[l] = true
	}
	for _, is := range spec.Interfaces {
		if named, ok := in.lookupNamed(is.Name); ok {
			for i := 0; i < named.TypeParams().Len(); i++ {
				in.imports.avoid[named.TypeParams().At(i).Obj().Name()] = true
			}
		}
	}

	file := &genFile{Package: t.pkg.Name()}
	file.Runtime = in.imports.add(spec.Runtime, path.Base(spec.Runtime))

	for _, is := range spec.Interfaces {
		pm, err := in.proxy(is)
		if err != nil {
			return nil, err
		}
		file.Proxies = append(file.Proxies, pm)
	}

	// param names are settled once every import identifier is known
	for i := range file.Proxies {
		pm := &file.Proxies[i]
		for j := range pm.Methods {
			in.finishMethod(pm, &pm.Methods[j])
		}
	}
	file.Imports = in.imports.list()
	return file, nil
}

func (in *inspector) lookupNamed(name string) (*types.Named, bool) {
	tn, ok := in.t.pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok || tn.IsAlias() {
		return nil, false
	}
	named, ok := tn.Type().(*types.Named)
	return named, ok
}

func (in *inspector) proxy(is InterfaceSpec) (proxyModel, error) {
	scope := in.t.pkg.Scope()
	obj := scope.Lookup(is.Name)
	if obj == nil {
		return proxyModel{}, fmt.Errorf("interface %s not found in package %s", is.Name, in.t.pkg.Path())
	}
	named, ok := in.lookupNamed(is.Name)
	if !ok {
		return proxyModel{}, fmt.Errorf("%s is not a defined type", is.Name)
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return proxyModel{}, fmt.Errorf("%s is not an interface (%s)", is.Name, named.Underlying())
	}
	if !iface.IsMethodSet() {
		return proxyModel{}, fmt.Errorf("%s is a constraint interface", is.Name)
	}
	if !token.IsExported(is.Name) && !in.spec.AllowUnexported {
		return proxyModel{}, fmt.Errorf("interface %s is unexported; set allowUnexported to proxy it", is.Name)
	}

	pm := proxyModel{Name: is.Name, Interface: is.Name, Struct: proxyName(is), Ctor: ctorName(is)}
	for _, id := range []string{pm.Struct, pm.Ctor} {
		if scope.Lookup(id) != nil {
			return proxyModel{}, fmt.Errorf("interface %s: %s is already declared in package %s", is.Name, id, in.t.pkg.Name())
		}
	}

	if tps := named.TypeParams(); tps.Len() > 0 {
		decl := make([]string, tps.Len())
		names := make([]string, tps.Len())
		for i := 0; i < tps.Len(); i++ {
			tp := tps.At(i)
			names[i] = tp.Obj().Name()
			if generatedIdent(names[i]) {
				return proxyModel{}, fmt.Errorf("interface %s: type parameter %s conflicts with a generated identifier", is.Name, names[i])
			}
			decl[i] = names[i] + " " + in.typeString(tp.Constraint())
		}
		pm.TypeParams = strings.Join(decl, ", ")
		pm.TypeArgs = strings.Join(names, ", ")
		pm.Interface = is.Name + "[" + pm.TypeArgs + "]"

		if len(is.Instances) == 0 {
			return proxyModel{}, fmt.Errorf("generic interface %s needs at least one instance", is.Name)
		}
		for _, inst := range is.Instances {
			s, err := in.instance(named, inst)
			if err != nil {
				return proxyModel{}, fmt.Errorf("interface %s: instance %q: %w", is.Name, inst, err)
			}
			pm.Instances = append(pm.Instances, s)
		}
	} else if len(is.Instances) > 0 {
		return proxyModel{}, fmt.Errorf("interface %s is not generic; remove its instances", is.Name)
	}

	methods := make([]*types.Func, iface.NumMethods())
	for i := range methods {
		methods[i] = iface.Method(i)
	}
	sort.Slice(methods, func(i, j int) bool {
		a, b := methods[i], methods[j]
		if a.Exported() != b.Exported() {
			return a.Exported()
		}
		return a.Name() < b.Name()
	})
	for _, m := range methods {
		mm, err := in.method(m)
		if err != nil {
			return proxyModel{}, fmt.Errorf("interface %s: method %s: %w", is.Name, m.Name(), err)
		}
		pm.Methods = append(pm.Methods, mm)
	}
	return pm, nil
}

func (in *inspector) method(m *types.Func) (methodModel, error) {
	if m.Name() == "LazyHolder" {
		return methodModel{}, fmt.Errorf("conflicts with the generated LazyHolder accessor")
	}
	if m.Name() == "holder" {
		return methodModel{}, fmt.Errorf("conflicts with the generated holder field")
	}
	if !m.Exported() {
		if m.Pkg() != in.t.pkg {
			return methodModel{}, fmt.Errorf("unexported method of package %s cannot be implemented here", m.Pkg().Path())
		}
		if !in.spec.AllowUnexported {
			return methodModel{}, fmt.Errorf("method is unexported; set allowUnexported to proxy it")
		}
	}

	sig := m.Type().(*types.Signature)
	mm := methodModel{Name: m.Name()}

	ps := sig.Params()
	for i := 0; i < ps.Len(); i++ {
		v := ps.At(i)
		if err := in.accessible(v.Type()); err != nil {
			return methodModel{}, err
		}
		p := param{name: v.Name()}
		if sig.Variadic() && i == ps.Len()-1 {
			p.variadic = true
			p.typ = "..." + in.typeString(v.Type().(*types.Slice).Elem())
		} else {
			p.typ = in.typeString(v.Type())
		}
		mm.params = append(mm.params, p)
	}

	rs := sig.Results()
	results := make([]string, rs.Len())
	for i := 0; i < rs.Len(); i++ {
		if err := in.accessible(rs.At(i).Type()); err != nil {
			return methodModel{}, err
		}
		results[i] = in.typeString(rs.At(i).Type())
	}
	switch n := rs.Len(); {
	case n == 0:
		mm.Shape = shapeVoid
	case types.Identical(rs.At(n-1).Type(), errorType):
		mm.Shape = shapeError
		for i := 0; i < n-1; i++ {
			mm.Zeros = append(mm.Zeros, zeroValue{Name: "r" + strconv.Itoa(i), Type: results[i]})
		}
	default:
		mm.Shape = shapeValue
	}
	switch len(results) {
	case 0:
	case 1:
		mm.Results = results[0]
	default:
		mm.Results = "(" + strings.Join(results, ", ") + ")"
	}
	return mm, nil
}

// generatedIdent reports whether name is declared by the generated code itself.
func generatedIdent(name string) bool {
	if resultName.MatchString(name) {
		return true
	}
	for _, id := range append(localIdents[:len(localIdents):len(localIdents)], declIdents...) {
		if id == name {
			return true
		}
	}
	return false
}

// finishMethod names the parameters and renders the parameter and argument lists.
//
// Source names are kept unless they are blank or would shadow an identifier the
// generated body needs: the receiver, locals, type parameters, imports and the
// names the zero values are spelled with.
func (in *inspector) finishMethod(pm *proxyModel, mm *methodModel) {
	reserved := map[string]bool{}
	for _, l := range localIdents {
		reserved[l] = true
	}
	for id := range in.imports.idents {
		reserved[id] = true
	}
	for _, tp := range strings.Split(pm.TypeArgs, ", ") {
		if tp != "" {
			reserved[tp] = true
		}
	}
	// zero values are declared in the body, after the parameters
	for _, z := range mm.Zeros {
		for _, id := range identifier.FindAllString(z.Type, -1) {
			reserved[id] = true
		}
	}

	used := map[string]bool{}
	for _, p := range mm.params {
		if p.name != "" && p.name != "_" && !reserved[p.name] && !resultName.MatchString(p.name) {
			used[p.name] = true
		}
	}

	decl := make([]string, len(mm.params))
	args := make([]string, len(mm.params))
	for i, p := range mm.params {
		name := p.name
		if name == "" || name == "_" || reserved[name] || resultName.MatchString(name) {
			name = "p" + strconv.Itoa(i)
			for used[name] || reserved[name] {
				name += "_"
			}
			used[name] = true
		}
		decl[i] = name + " " + p.typ
		args[i] = name
		if p.variadic {
			args[i] += "..."
		}
	}
	mm.Params = strings.Join(decl, ", ")
	mm.Args = strings.Join(args, ", ")
}

// instance resolves one comma-separated type argument list against named.
func (in *inspector) instance(named *types.Named, inst string) (string, error) {
	exprs := splitTypeList(inst)
	if want := named.TypeParams().Len(); len(exprs) != want {
		return "", fmt.Errorf("want %d type arguments, got %d", want, len(exprs))
	}
	targs := make([]types.Type, len(exprs))
	for i, e := range exprs {
		t, err := in.evalType(e)
		if err != nil {
			return "", err
		}
		if err := in.accessible(t); err != nil {
			return "", err
		}
		targs[i] = t
	}
	if _, err := types.Instantiate(nil, named, targs, true); err != nil {
		return "", err
	}
	out := make([]string, len(targs))
	for i, t := range targs {
		out[i] = in.typeString(t)
	}
	return strings.Join(out, ", "), nil
}

// evalType evaluates a type expression in the scope of the package files, so
// both package-level names and each file's imports are visible.
func (in *inspector) evalType(expr string) (types.Type, error) {
	positions := []token.Pos{token.NoPos}
	if len(in.t.files) > 0 {
		positions = positions[:0]
		for _, f := range in.t.files {
			positions = append(positions, f.Name.Pos())
		}
	}
	var first error
	for _, pos := range positions {
		tv, err := types.Eval(in.t.fset, in.t.pkg, pos, expr)
		if err == nil && !tv.IsType() {
			err = fmt.Errorf("%s is not a type", expr)
		}
		if err == nil {
			return tv.Type, nil
		}
		if first == nil {
			first = err
		}
	}
	return nil, first
}

// splitTypeList splits at commas outside brackets, parens and braces.
func splitTypeList(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
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
	if last := strings.TrimSpace(s[start:]); last != "" || len(out) > 0 {
		out = append(out, last)
	}
	return out
}

func (in *inspector) typeString(t types.Type) string {
	return types.TypeString(t, in.qualifier)
}

func (in *inspector) qualifier(p *types.Package) string {
	if p == in.t.pkg {
		return ""
	}
	return in.imports.add(p.Path(), p.Name())
}

// accessible reports an error if t mentions a name the generated file cannot
// refer to: unexported types, fields or methods of other packages.
func (in *inspector) accessible(t types.Type) error {
	foreign := func(obj types.Object) bool {
		return obj.Pkg() != nil && obj.Pkg() != in.t.pkg && !obj.Exported()
	}
	switch t := t.(type) {
	case *types.Named:
		if foreign(t.Obj()) {
			return fmt.Errorf("type %s is not accessible", t.Obj().Pkg().Path()+"."+t.Obj().Name())
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			if err := in.accessible(args.At(i)); err != nil {
				return err
			}
		}
	case *types.Alias:
		if foreign(t.Obj()) {
			return fmt.Errorf("type %s is not accessible", t.Obj().Pkg().Path()+"."+t.Obj().Name())
		}
	case *types.Pointer:
		return in.accessible(t.Elem())
	case *types.Slice:
		return in.accessible(t.Elem())
	case *types.Array:
		return in.accessible(t.Elem())
	case *types.Chan:
		return in.accessible(t.Elem())
	case *types.Map:
		if err := in.accessible(t.Key()); err != nil {
			return err
		}
		return in.accessible(t.Elem())
	case *types.Signature:
		for _, tup := range []*types.Tuple{t.Params(), t.Results()} {
			for i := 0; i < tup.Len(); i++ {
				if err := in.accessible(tup.At(i).Type()); err != nil {
					return err
				}
			}
		}
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if foreign(f) {
				return fmt.Errorf("field %s of package %s is not accessible", f.Name(), f.Pkg().Path())
			}
			if err := in.accessible(f.Type()); err != nil {
				return err
			}
		}
	case *types.Interface:
		for i := 0; i < t.NumExplicitMethods(); i++ {
			if m := t.ExplicitMethod(i); foreign(m) {
				return fmt.Errorf("method %s of package %s is not accessible", m.Name(), m.Pkg().Path())
			}
		}
		for i := 0; i < t.NumEmbeddeds(); i++ {
			if err := in.accessible(t.EmbeddedType(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// importSet assigns one identifier per imported path.
type importSet struct {
	pkg    *types.Package
	byPath map[string]string // path -> identifier
	names  map[string]string // path -> declared package name
	idents map[string]bool
	avoid  map[string]bool
}

func newImportSet(pkg *types.Package) *importSet {
	return &importSet{
		pkg:    pkg,
		byPath: map[string]string{},
		names:  map[string]string{},
		idents: map[string]bool{},
		avoid:  map[string]bool{},
	}
}

func (s *importSet) add(importPath, name string) string {
	if id, ok := s.byPath[importPath]; ok {
		return id
	}
	id := name
	for i := 2; s.idents[id] || s.avoid[id] || s.pkg.Scope().Lookup(id) != nil; i++ {
		id = name + strconv.Itoa(i)
	}
	s.byPath[importPath] = id
	s.names[importPath] = name
	s.idents[id] = true
	return id
}

func (s *importSet) list() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))
	for p, id := range s.byPath {
		is := importSpec{Path: p}
		if id != s.names[p] {
			is.Name = id
		}
		out = append(out, is)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
