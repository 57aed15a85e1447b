// Package sig carries the symbol-table-shaped inputs codegen consumes
// from the external validator: the function signature table and the
// type pool. Neither is produced here; this package only defines their
// shape, the way ccdavis-min-lang's compiler/types.go defines a Type
// interface the parser and compiler share without owning each other.
package sig

// Type is any value the validator assigns to an expression, parameter,
// or return position. Codegen itself never branches on a Type beyond
// comparing it against TypePool.None() to decide whether a function
// needs a RETFLAG prelude.
type Type interface {
	String() string
	Equals(other Type) bool
}

// basicType covers every scalar the backend actually has registers for
// (32-bit integers, booleans encoded as 0/1) plus the none/void marker.
type basicType struct {
	name string
}

func (t *basicType) String() string { return t.name }

func (t *basicType) Equals(other Type) bool {
	ot, ok := other.(*basicType)
	return ok && ot.name == t.name
}

// TypePool is the minimal type universe codegen needs: one shared None()
// instance per pool, mirroring how the original compiler's TypePool hands
// out one none() instance. Equals compares types by name, so the same
// type taken from two different pools still compares equal.
type TypePool struct {
	none *basicType
	int  *basicType
	bool *basicType
}

// NewTypePool builds a pool with the fixed set of types codegen
// understands. Struct types are acknowledged by the validator upstream
// but never reach codegen (spec.md's non-goals), so this pool has no
// room to register them.
func NewTypePool() *TypePool {
	return &TypePool{
		none: &basicType{name: "none"},
		int:  &basicType{name: "int"},
		bool: &basicType{name: "bool"},
	}
}

// None is the void/no-return marker type.
func (p *TypePool) None() Type { return p.none }

// Int is the 32-bit integer register type.
func (p *TypePool) Int() Type { return p.int }

// Bool is the 0/1-encoded boolean type.
func (p *TypePool) Bool() Type { return p.bool }
