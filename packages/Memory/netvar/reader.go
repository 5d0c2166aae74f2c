package netvar

import (
	"github.com/mizz1e/snowdrop-sub000/packages/Memory/memory"
)

// In-memory layout of the client replication schema on linux64.
const (
	classNetworkName = 0x10
	classRecvTable   = 0x18
	classNext        = 0x20
	classID          = 0x28

	tableProps    = 0x00
	tableNumProps = 0x08
	tableName     = 0x18

	propName      = 0x00
	propType      = 0x08
	propDataTable = 0x40
	propOffset    = 0x48
	propSize      = 0x60

	maxClasses  = 4096
	maxProps    = 4096
	maxDepth    = 32
	maxNameSize = 256
)

type reader struct {
	tables map[uintptr]*Table
}

// ReadClasses copies the live class list starting at head into Go values.
// Shared sub-tables are read once and aliased.
func ReadClasses(head uintptr) []Class {
	r := &reader{tables: make(map[uintptr]*Table)}
	var classes []Class
	seen := make(map[uintptr]struct{})
	for cc := head; cc != 0 && len(classes) < maxClasses; cc = memory.ReadPointer(cc + classNext) {
		if _, ok := seen[cc]; ok {
			break
		}
		seen[cc] = struct{}{}
		classes = append(classes, Class{
			Name:  memory.ReadString(memory.ReadPointer(cc+classNetworkName), maxNameSize),
			ID:    memory.ReadInt32(cc + classID),
			Table: r.table(memory.ReadPointer(cc+classRecvTable), 0),
		})
	}
	return classes
}

func (r *reader) table(addr uintptr, depth int) *Table {
	if addr == 0 || depth > maxDepth {
		return nil
	}
	if t, ok := r.tables[addr]; ok {
		return t
	}
	t := &Table{Name: memory.ReadString(memory.ReadPointer(addr+tableName), maxNameSize)}
	r.tables[addr] = t

	props := memory.ReadPointer(addr + tableProps)
	count := int(memory.ReadInt32(addr + tableNumProps))
	if count < 0 || count > maxProps || props == 0 {
		return t
	}
	t.Props = make([]Prop, 0, count)
	for i := 0; i < count; i++ {
		p := props + uintptr(i)*propSize
		prop := Prop{
			Name:   memory.ReadString(memory.ReadPointer(p+propName), maxNameSize),
			Type:   Type(memory.ReadInt32(p + propType)),
			Offset: memory.ReadInt32(p + propOffset),
		}
		if prop.Type == TypeDataTable {
			prop.Table = r.table(memory.ReadPointer(p+propDataTable), depth+1)
		}
		t.Props = append(t.Props, prop)
	}
	return t
}
