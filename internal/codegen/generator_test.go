package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonsmasher-forge/sculkgen/ast"
	"github.com/carbonsmasher-forge/sculkgen/sig"
)

func testSigs() (sig.Table, *sig.TypePool) {
	pool := sig.NewTypePool()
	table := sig.Table{
		"main": {Name: "main", ReturnType: pool.None()},
		"f": {
			Name:       "f",
			Params:     []sig.ParamDef{{Name: "x", Type: pool.Int()}},
			ReturnType: pool.Int(),
		},
	}
	return table, pool
}

// TestGenerateFunctionCall is spec.md §8 scenario 3.
func TestGenerateFunctionCall(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{Value: &ast.BinaryOp{Lhs: &ast.Identifier{Name: "x"}, Rhs: &ast.NumberLiteral{Value: 1}, Op: ast.Add}},
		}}},
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.VarAssign{Name: "y", Value: &ast.FunctionCall{Name: "f", Args: []ast.Node{&ast.NumberLiteral{Value: 5}}}},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "main")
	require.NoError(t, err)

	fFn := ready["f"]
	require.NotNil(t, fFn)
	assert.IsType(t, SetVariableToNumber{}, fFn.Actions[0])
	assert.Equal(t, "RETFLAG", fFn.Actions[0].(SetVariableToNumber).Var.Player)
	assert.Equal(t, int32(0), fFn.Actions[0].(SetVariableToNumber).Val)

	lastTwo := fFn.Actions[len(fFn.Actions)-2:]
	assert.Equal(t, SetVariableToNumber{Var: fFn.local("RETFLAG"), Val: 1}, lastTwo[0])
	assert.Equal(t, Return{}, lastTwo[1])

	mainFn := ready["main"]
	require.NotNil(t, mainFn)

	var sawCall bool
	for _, act := range mainFn.Actions {
		if c, ok := act.(CallFunction); ok && c.Target.Path() == "f" {
			sawCall = true
		}
	}
	assert.True(t, sawCall, "main must call p:f")

	assert.Contains(t, ready, "_sculkmain")
	bootstrap := ready["_sculkmain"]
	last := bootstrap.Actions[len(bootstrap.Actions)-1]
	call, ok := last.(CallFunction)
	require.True(t, ok)
	assert.Equal(t, "main", call.Target.Path())
}

// TestGenerateIfWithReturn is spec.md §8 scenario 4.
func TestGenerateIfWithReturn(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.If{
				Cond: &ast.BinaryOp{Lhs: &ast.Identifier{Name: "a"}, Rhs: &ast.Identifier{Name: "b"}, Op: ast.CheckEquals},
				Then: &ast.Block{Statements: []ast.Node{&ast.Return{}}},
			},
			&ast.VarAssign{Name: "c", Value: &ast.NumberLiteral{Value: 1}},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "main")
	require.NoError(t, err)

	mainFn := ready["main"]
	require.NotNil(t, mainFn)
	require.Contains(t, ready, "main/0")

	child := ready["main/0"]
	require.Len(t, child.Actions, 2)
	assert.Equal(t, SetVariableToNumber{Var: child.local("RETFLAG"), Val: 1}, child.Actions[0])
	assert.Equal(t, Return{}, child.Actions[1])

	// main: cond lowering, then ExecuteIf calling main/0, then the RETFLAG
	// guard, then the assignment to c, in that relative order.
	var callIdx, guardIdx, assignIdx = -1, -1, -1
	for i, act := range mainFn.Actions {
		switch a := act.(type) {
		case ExecuteIf:
			if call, ok := a.Then.(CallFunction); ok && call.Target.Path() == "main/0" {
				callIdx = i
			} else if _, ok := a.Then.(Return); ok && guardIdx == -1 {
				assert.Contains(t, a.Condition, "RETFLAG")
				guardIdx = i
			}
		case SetVariableToVariable:
			if a.Dst.Player == "c" {
				assignIdx = i
			}
		}
	}
	require.NotEqual(t, -1, callIdx, "main must call main/0 behind a guard")
	require.NotEqual(t, -1, guardIdx, "main must forward the return via a RETFLAG guard")
	require.NotEqual(t, -1, assignIdx, "main must still assign c = 1 after the guard")
	assert.Less(t, callIdx, guardIdx)
	assert.Less(t, guardIdx, assignIdx)
}

// TestGenerateLoopWithBreak is spec.md §8 scenario 5.
func TestGenerateLoopWithBreak(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.For{
				Init: &ast.VarAssign{Name: "i", Value: &ast.NumberLiteral{Value: 0}},
				Cond: &ast.BinaryOp{Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.NumberLiteral{Value: 3}, Op: ast.LessThan},
				Step: &ast.OpAssign{Name: "i", Op: ast.Add, Value: &ast.NumberLiteral{Value: 1}},
				Body: &ast.Block{Statements: []ast.Node{
					&ast.If{
						Cond: &ast.BinaryOp{Lhs: &ast.Identifier{Name: "i"}, Rhs: &ast.NumberLiteral{Value: 2}, Op: ast.CheckEquals},
						Then: &ast.Block{Statements: []ast.Node{&ast.Break{}}},
					},
				}},
			},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "main")
	require.NoError(t, err)

	require.Contains(t, ready, "main/0")
	loopBody := ready["main/0"]

	var sawSelfCall, sawBreakGuard bool
	for _, act := range loopBody.Actions {
		execIf, ok := act.(ExecuteIf)
		if !ok {
			continue
		}
		if call, ok := execIf.Then.(CallFunction); ok && call.Target.Path() == "main/0" {
			sawSelfCall = true
		}
		if _, ok := execIf.Then.(Return); ok {
			sawBreakGuard = true
		}
	}
	assert.True(t, sawSelfCall, "main/0 must tail-call itself when the condition still holds")
	assert.True(t, sawBreakGuard, "main/0 must forward a break via a BREAKFLAG1 guard")

	mainFn := ready["main"]
	var sawEntryGuard bool
	for _, act := range mainFn.Actions {
		if execIf, ok := act.(ExecuteIf); ok {
			if call, ok := execIf.Then.(CallFunction); ok && call.Target.Path() == "main/0" {
				sawEntryGuard = true
			}
		}
	}
	assert.True(t, sawEntryGuard, "main must emit the initial guarded call into the loop body")

	// break must not leak a BREAKFLAG guard past the loop boundary.
	for _, act := range mainFn.Actions {
		if execIf, ok := act.(ExecuteIf); ok {
			assert.NotContains(t, execIf.Condition, "BREAKFLAG")
		}
	}
}

// TestGenerateCommandLiteral is spec.md §8 scenario 6.
func TestGenerateCommandLiteral(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.CommandLiteral{Command: "say hi"},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "main")
	require.NoError(t, err)

	mainFn := ready["main"]
	require.Len(t, mainFn.Actions, 1)
	assert.Equal(t, Direct{Command: "say hi"}, mainFn.Actions[0])
}

// TestGenerateCreatesStorageForEveryNonAnonymousFunction covers the
// invariant: _sculkmain has exactly one CreateStorage per non-anonymous
// ready function, and none for anonymous children.
func TestGenerateCreatesStorageForEveryNonAnonymousFunction(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{Value: &ast.NumberLiteral{Value: 1}},
		}}},
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.If{
				Cond: &ast.BoolLiteral{Value: true},
				Then: &ast.Block{Statements: nil},
			},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "main")
	require.NoError(t, err)

	require.Contains(t, ready, "main/0", "the if's then-branch should have lowered into an anonymous child")

	bootstrap := ready["_sculkmain"]
	counts := map[string]int{}
	for _, act := range bootstrap.Actions {
		if cs, ok := act.(CreateStorage); ok {
			counts[cs.Name]++
		}
	}

	// main/0 is anonymous and shares main's scoreboard, so it must not
	// contribute a second CreateStorage for "p.main".
	assert.Equal(t, 1, counts["p.main"], "main's scoreboard must get exactly one CreateStorage, shared by its anonymous children")
	assert.Equal(t, 1, counts["p.f"])
	assert.Len(t, counts, 2, "only f and main (not main/0 or _sculkmain) should produce a CreateStorage")
}

func TestGenerateRejectsUndeclaredCall(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: []ast.Node{
			&ast.FunctionCall{Name: "missing"},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	_, err := gen.Generate(program, "main")
	assert.Error(t, err)
}

func TestGenerateBootstrapCallsChosenEntry(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "f", Body: &ast.Block{Statements: []ast.Node{
			&ast.Return{Value: &ast.NumberLiteral{Value: 1}},
		}}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	ready, err := gen.Generate(program, "f")
	require.NoError(t, err)

	bootstrap := ready["_sculkmain"]
	last := bootstrap.Actions[len(bootstrap.Actions)-1]
	call, ok := last.(CallFunction)
	require.True(t, ok)
	assert.Equal(t, "f", call.Target.Path())
}

func TestGenerateRejectsUnknownEntry(t *testing.T) {
	table, pool := testSigs()
	program := &ast.Program{Statements: []ast.Node{
		&ast.FunctionDecl{Name: "main", Body: &ast.Block{Statements: nil}},
	}}

	gen := NewGenerator("p", table, pool, nil)
	_, err := gen.Generate(program, "nope")
	assert.Error(t, err)
}
