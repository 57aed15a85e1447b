package codegen

import "github.com/carbonsmasher-forge/sculkgen/data"

// Action is one emitted primitive command. The concrete types below are
// the backend's entire instruction set. See spec.md §3's Action model.
type Action interface {
	action()
}

// CreateStorage declares a named register namespace (a scoreboard
// objective). Only ever emitted into _sculkmain, one per non-anonymous
// ready function.
type CreateStorage struct {
	Name string
}

func (CreateStorage) action() {}

// SetVariableToNumber assigns a literal value to a register.
type SetVariableToNumber struct {
	Var data.ScoreboardEntry
	Val int32
}

func (SetVariableToNumber) action() {}

// SetVariableToVariable copies one register's value into another.
type SetVariableToVariable struct {
	Dst data.ScoreboardEntry
	Src data.ScoreboardEntry
}

func (SetVariableToVariable) action() {}

// AddVariables performs an in-place "a += b".
type AddVariables struct {
	A data.ScoreboardEntry
	B data.ScoreboardEntry
}

func (AddVariables) action() {}

// SubtractVariables performs an in-place "a -= b".
type SubtractVariables struct {
	A data.ScoreboardEntry
	B data.ScoreboardEntry
}

func (SubtractVariables) action() {}

// MultiplyVariables performs an in-place "a *= b".
type MultiplyVariables struct {
	A data.ScoreboardEntry
	B data.ScoreboardEntry
}

func (MultiplyVariables) action() {}

// DivideVariables performs an in-place "a /= b".
type DivideVariables struct {
	A data.ScoreboardEntry
	B data.ScoreboardEntry
}

func (DivideVariables) action() {}

// ModuloVariables performs an in-place "a %= b".
type ModuloVariables struct {
	A data.ScoreboardEntry
	B data.ScoreboardEntry
}

func (ModuloVariables) action() {}

// CallFunction invokes another ready function by its resource location.
type CallFunction struct {
	Target data.ResourceLocation
}

func (CallFunction) action() {}

// ExecuteIf runs Then only if Condition holds.
type ExecuteIf struct {
	Condition string
	Then      Action
}

func (ExecuteIf) action() {}

// ExecuteUnless runs Then only if Condition does not hold.
type ExecuteUnless struct {
	Condition string
	Then      Action
}

func (ExecuteUnless) action() {}

// Direct passes a raw command literal through verbatim.
type Direct struct {
	Command string
}

func (Direct) action() {}

// Return halts execution of the current function.
type Return struct{}

func (Return) action() {}
