package netvar

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// ErrPropertyNotFound means a property the tool depends on is absent from
// the replication schema.
var ErrPropertyNotFound = errors.New("networked property not found")

// PropertyError identifies a missing property.
type PropertyError struct {
	Class string
	Path  string
}

func (e *PropertyError) Error() string {
	return fmt.Sprintf("%v: %s.%s", ErrPropertyNotFound, e.Class, e.Path)
}

func (e *PropertyError) Unwrap() error {
	return ErrPropertyNotFound
}

// Key addresses a property by root table and property name.
type Key struct {
	Table string
	Prop  string
}

// Want maps a logical name onto the property backing it.
type Want struct {
	Name string
	Key
}

// Property is a resolved networked property.
type Property struct {
	Name string
	Key
	// Path is the descent through nested tables, for diagnostics.
	Path   string
	Type   Type
	Offset uintptr
}

type found struct {
	path   string
	typ    Type
	offset uintptr
}

// Walk visits every leaf property under table. Offsets accumulate along the
// descent. The first occurrence of a name wins.
func Walk(table *Table, base uintptr, visit func(path string, prop Prop, offset uintptr)) {
	walk(table, base, "", visit, 0)
}

func walk(table *Table, base uintptr, prefix string, visit func(string, Prop, uintptr), depth int) {
	if table == nil || depth > maxDepth {
		return
	}
	for _, prop := range table.Props {
		offset := base + uintptr(prop.Offset)
		path := prop.Name
		if prefix != "" {
			path = prefix + "." + prop.Name
		}
		if prop.Type == TypeDataTable && prop.Table != nil {
			walk(prop.Table, offset, path, visit, depth+1)
			continue
		}
		visit(path, prop, offset)
	}
}

// Resolve walks the root table of every class named in wants and returns
// the offsets of all of them. Every missing property is reported.
func Resolve(classes []Class, wants []Want) (*Offsets, error) {
	interest := make(map[string]map[string]struct{})
	for _, w := range wants {
		if interest[w.Table] == nil {
			interest[w.Table] = make(map[string]struct{})
		}
		interest[w.Table][w.Prop] = struct{}{}
	}

	results := make(map[Key]found)
	walked := make(map[string]struct{})
	for _, class := range classes {
		if class.Table == nil {
			continue
		}
		root := class.Table.Name
		props, ok := interest[root]
		if !ok {
			continue
		}
		if _, done := walked[root]; done {
			continue
		}
		walked[root] = struct{}{}
		Walk(class.Table, 0, func(path string, prop Prop, offset uintptr) {
			if _, ok := props[prop.Name]; !ok {
				return
			}
			key := Key{Table: root, Prop: prop.Name}
			if _, dup := results[key]; dup {
				return
			}
			results[key] = found{path: path, typ: prop.Type, offset: offset}
		})
	}

	offsets := &Offsets{props: make(map[string]Property, len(wants))}
	var missing []error
	for _, w := range wants {
		f, ok := results[w.Key]
		if !ok {
			missing = append(missing, &PropertyError{Class: w.Table, Path: w.Prop})
			continue
		}
		offsets.props[w.Name] = Property{
			Name:   w.Name,
			Key:    w.Key,
			Path:   f.path,
			Type:   f.typ,
			Offset: f.offset,
		}
	}
	if len(missing) > 0 {
		return nil, errors.Join(missing...)
	}
	return offsets, nil
}

// Offsets is the resolved property table.
type Offsets struct {
	props map[string]Property
}

// Lookup returns a resolved property by logical name.
func (o *Offsets) Lookup(name string) (Property, bool) {
	if o == nil {
		return Property{}, false
	}
	p, ok := o.props[name]
	return p, ok
}

// Offset returns the byte offset of a logical property. Using a property
// that was never resolved is fatal.
func (o *Offsets) Offset(name string) uintptr {
	p, ok := o.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("networked property %s used before it was resolved", name))
	}
	return p.Offset
}

// Map returns logical name to offset.
func (o *Offsets) Map() map[string]uintptr {
	out := make(map[string]uintptr, len(o.props))
	for name, p := range o.props {
		out[name] = p.Offset
	}
	return out
}

// Properties lists resolved properties ordered by logical name.
func (o *Offsets) Properties() []Property {
	out := make([]Property, 0, len(o.props))
	for _, p := range o.props {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Read loads a property of entity as T.
func Read[T any](o *Offsets, entity uintptr, name string) T {
	return memory.Read[T](entity + o.Offset(name))
}

// Write stores a property of entity as T.
func Write[T any](o *Offsets, entity uintptr, name string, value T) {
	memory.Write(entity+o.Offset(name), value)
}

func (p Property) String() string {
	return fmt.Sprintf("%s (%s %s %s) +%#x", p.Name, p.Table, p.Path, p.Type, p.Offset)
}
