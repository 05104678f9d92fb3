package proxy

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// MemberKind classifies an interface member.
type MemberKind int

const (
	// Method is any member that is not part of a property pair.
	Method MemberKind = iota
	// Getter is the read half of a property: X() V paired with SetX(V).
	Getter
	// Setter is the write half of a property.
	Setter
)

func (k MemberKind) String() string {
	switch k {
	case Getter:
		return "getter"
	case Setter:
		return "setter"
	default:
		return "method"
	}
}

var (
	errorType   = reflect.TypeFor[error]()
	typeTagType = reflect.TypeFor[reflect.Type]()
)

// Member is one entry of a dispatcher's member table.
type Member struct {
	Name     string
	Kind     MemberKind
	Type     reflect.Type // func signature without receiver
	In       []reflect.Type
	Out      []reflect.Type
	Variadic bool
	Exported bool
	// TypeArgs lists the parameter indices that carry a runtime type tag
	// (reflect.Type), the stand-in for method-level type parameters.
	TypeArgs []int
}

// ReturnsError reports whether the last result is error.
func (m Member) ReturnsError() bool {
	return len(m.Out) > 0 && m.Out[len(m.Out)-1] == errorType
}

// String renders the member as Name(params) results.
func (m Member) String() string {
	return m.Name + strings.TrimPrefix(m.Type.String(), "func")
}

// Dispatcher is the immutable, shared forwarding plan for one interface shape.
type Dispatcher struct {
	desc    Descriptor
	typ     reflect.Type
	tpl     *template
	members []Member
	index   map[string]int
}

// Generate builds the dispatcher for interface t. It does not consult or fill
// any cache; use Cache.GetOrCreate for memoized access.
func Generate(t reflect.Type) (*Dispatcher, error) {
	desc, err := DescriptorOf(t)
	if err != nil {
		return nil, err
	}
	tpl, ok := lookupTemplate(t)
	if !ok {
		return nil, &NoTemplateError{Descriptor: desc}
	}
	probe := tpl.probe()
	if probe == nil || !reflect.TypeOf(probe).Implements(t) {
		return nil, fmt.Errorf("%w: constructor for %s returned %T", ErrInvalidTemplate, desc, probe)
	}
	if _, ok := probe.(Instance); !ok {
		return nil, fmt.Errorf("%w: %T does not implement proxy.Instance", ErrInvalidTemplate, probe)
	}

	members := enumerate(t)
	d := &Dispatcher{
		desc:    desc,
		typ:     t,
		tpl:     tpl,
		members: members,
		index:   make(map[string]int, len(members)),
	}
	for i, m := range members {
		d.index[m.Name] = i
	}
	return d, nil
}

// enumerate lists the full method set of t (embedded interfaces are already
// flattened by reflect) in lexical order and classifies property pairs.
func enumerate(t reflect.Type) []Member {
	members := make([]Member, t.NumMethod())
	byName := make(map[string]int, len(members))
	for i := range members {
		rm := t.Method(i)
		ft := rm.Type
		m := Member{
			Name:     rm.Name,
			Type:     ft,
			Variadic: ft.IsVariadic(),
			Exported: rm.PkgPath == "",
			In:       make([]reflect.Type, ft.NumIn()),
			Out:      make([]reflect.Type, ft.NumOut()),
		}
		for j := range m.In {
			m.In[j] = ft.In(j)
			if m.In[j] == typeTagType {
				m.TypeArgs = append(m.TypeArgs, j)
			}
		}
		for j := range m.Out {
			m.Out[j] = ft.Out(j)
		}
		members[i] = m
		byName[m.Name] = i
	}

	for i, m := range members {
		if !isGetterShape(m) {
			continue
		}
		j, ok := byName["Set"+m.Name]
		if !ok {
			continue
		}
		s := members[j]
		if len(s.In) == 1 && len(s.Out) == 0 && !s.Variadic && s.In[0] == m.Out[0] {
			members[i].Kind = Getter
			members[j].Kind = Setter
		}
	}
	return members
}

func isGetterShape(m Member) bool {
	return len(m.In) == 0 && len(m.Out) == 1 && m.Out[0] != errorType
}

// Descriptor returns the dispatcher's descriptor.
func (d *Dispatcher) Descriptor() Descriptor { return d.desc }

// Type returns the proxied interface type.
func (d *Dispatcher) Type() reflect.Type { return d.typ }

// Members returns a copy of the member table.
func (d *Dispatcher) Members() []Member {
	out := make([]Member, len(d.members))
	copy(out, d.members)
	return out
}

// Member looks a member up by name.
func (d *Dispatcher) Member(name string) (Member, bool) {
	i, ok := d.index[name]
	if !ok {
		return Member{}, false
	}
	return d.members[i], true
}

// New returns a fresh proxy whose target is produced by factory on first use.
// The result implements the dispatcher's interface and Instance.
func (d *Dispatcher) New(factory func() (any, error), opts ...HolderOption) any {
	all := make([]HolderOption, 0, len(opts)+1)
	all = append(all, WithDescriptor(d.desc))
	all = append(all, opts...)
	return d.tpl.build(factory, all)
}

// Invoke calls member name on a proxy instance by reflection. Arguments are
// validated before the target is materialized; materialization errors are
// returned verbatim and panics raised by the target propagate unchanged.
func (d *Dispatcher) Invoke(instance any, name string, args ...any) ([]any, error) {
	m, ok := d.Member(name)
	if !ok {
		return nil, &MemberError{Descriptor: d.desc, Member: name, Err: ErrUnknownMember}
	}
	if !m.Exported {
		return nil, &MemberError{Descriptor: d.desc, Member: name, Err: ErrUnexportedMember}
	}
	in, err := m.bind(args)
	if err != nil {
		return nil, &MemberError{Descriptor: d.desc, Member: name, Err: ErrArgument, Detail: err.Error()}
	}
	inst, ok := instance.(Instance)
	if !ok || !reflect.TypeOf(instance).Implements(d.typ) {
		return nil, fmt.Errorf("%w: %T is not a %s proxy", ErrNotProxy, instance, d.desc)
	}

	target, err := inst.LazyHolder().Materialize()
	if err != nil {
		return nil, err
	}
	out := reflect.ValueOf(target).MethodByName(name).Call(in)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// bind converts boxed arguments to call values, checking arity and assignability.
func (m Member) bind(args []any) ([]reflect.Value, error) {
	fixed := len(m.In)
	if m.Variadic {
		fixed--
		if len(args) < fixed {
			return nil, fmt.Errorf("want %s arguments, got %d", m.Arity(), len(args))
		}
	} else if len(args) != fixed {
		return nil, fmt.Errorf("want %s arguments, got %d", m.Arity(), len(args))
	}

	vals := make([]reflect.Value, len(args))
	for i, a := range args {
		want := m.paramType(i, fixed)
		v, err := argValue(a, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func (m Member) paramType(i, fixed int) reflect.Type {
	if i < fixed {
		return m.In[i]
	}
	return m.In[len(m.In)-1].Elem()
}

func argValue(a any, want reflect.Type) (reflect.Value, error) {
	if a == nil {
		if nillable(want) {
			return reflect.Zero(want), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not assignable to %s", want)
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(want) {
		return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), want)
	}
	return v, nil
}

func nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return true
	}
	return false
}

// Arity renders the accepted argument count ("2", or "1+" when variadic).
func (m Member) Arity() string {
	n := len(m.In)
	if m.Variadic {
		return strconv.Itoa(n-1) + "+"
	}
	return strconv.Itoa(n)
}
