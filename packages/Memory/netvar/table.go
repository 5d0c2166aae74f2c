package netvar

import "fmt"

// Type is the replication type tag of a property.
type Type int32

const (
	TypeInt Type = iota
	TypeFloat
	TypeVector
	TypeVectorXY
	TypeString
	TypeArray
	TypeDataTable
	TypeInt64
)

func (t Type) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeVector:
		return "vector"
	case TypeVectorXY:
		return "vector-xy"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeDataTable:
		return "table"
	case TypeInt64:
		return "int64"
	}
	return fmt.Sprintf("type(%d)", int32(t))
}

// Prop is one property of a table. Table is set for nested tables.
type Prop struct {
	Name   string
	Type   Type
	Offset int32
	Table  *Table
}

// Table is a node of the replication schema.
type Table struct {
	Name  string
	Props []Prop
}

// Class is one entry of the client class list.
type Class struct {
	Name  string
	ID    int32
	Table *Table
}
