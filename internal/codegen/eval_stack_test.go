package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonsmasher-forge/sculkgen/ast"
	"github.com/carbonsmasher-forge/sculkgen/data"
)

func entry(ns data.ResourceLocation, player string) data.ScoreboardEntry {
	return data.NewScoreboardEntry(ns, player)
}

// TestFlushSimpleAddition is spec.md §8 scenario 1: `let x = 1 + 2`.
func TestFlushSimpleAddition(t *testing.T) {
	ns := data.NewResourceLocation("p", "main")
	s := newEvaluationStack(ns, 0)
	s.push(pushNumber{n: 1})
	s.push(pushNumber{n: 2})
	s.push(operationInstr{op: ast.Add})

	idx, err := s.flush()
	require.NoError(t, err)
	assert.Equal(t, int32(1), idx)

	want := []Action{
		SetVariableToNumber{Var: entry(ns, "TMP1"), Val: 1},
		SetVariableToNumber{Var: entry(ns, "TMP2"), Val: 2},
		AddVariables{A: entry(ns, "TMP1"), B: entry(ns, "TMP2")},
	}
	if diff := cmp.Diff(want, s.actions, cmp.AllowUnexported(data.ResourceLocation{})); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

// TestFlushComparisonAndNegation covers spec.md §8 scenario 2's shape:
// `!(3 > 4)`, without pinning the exact temp numbering the scenario's
// prose illustrates out of context of the outer "1 - e" rewrite.
func TestFlushComparisonAndNegation(t *testing.T) {
	ns := data.NewResourceLocation("p", "main")
	s := newEvaluationStack(ns, 0)
	// 1 - (3 > 4), the shape visitUnary(Not) builds.
	s.push(pushNumber{n: 1})
	s.push(pushNumber{n: 3})
	s.push(pushNumber{n: 4})
	s.push(operationInstr{op: ast.GreaterThan})
	s.push(operationInstr{op: ast.Subtract})

	idx, err := s.flush()
	require.NoError(t, err)

	var sawRange string
	var sawFinalSubtract bool
	for _, act := range s.actions {
		switch a := act.(type) {
		case ExecuteIf:
			sawRange = a.Condition
		case SubtractVariables:
			if a.A == (entry(ns, "TMP1")) {
				sawFinalSubtract = true
			}
		}
	}
	assert.Contains(t, sawRange, "matches 1..", "GreaterThan must lower via a \"1..\" range match")
	assert.True(t, sawFinalSubtract, "outer Not must subtract the comparison's result from the pre-pushed 1")
	assert.Equal(t, int32(1), idx)
}

func TestFlushFunctionCall(t *testing.T) {
	ns := data.NewResourceLocation("p", "main")
	target := data.NewResourceLocation("p", "f")
	s := newEvaluationStack(ns, 0)
	s.push(pushNumber{n: 5})
	s.push(callFunctionInstr{target: target, paramNames: []string{"x"}})

	idx, err := s.flush()
	require.NoError(t, err)
	assert.Equal(t, int32(2), idx)

	want := []Action{
		SetVariableToNumber{Var: entry(ns, "TMP1"), Val: 5},
		SetVariableToVariable{Dst: entry(target, "x"), Src: entry(ns, "TMP1")},
		CallFunction{Target: target},
		SetVariableToVariable{Dst: entry(ns, "TMP2"), Src: entry(target, "RET")},
	}
	if diff := cmp.Diff(want, s.actions, cmp.AllowUnexported(data.ResourceLocation{})); diff != "" {
		t.Fatalf("actions mismatch (-want +got):\n%s", diff)
	}
}

// TestFlushFreeListInvariant is spec.md §8's invariant: after a complete
// flush, the free list holds exactly 1..=maxTmps minus the returned index.
func TestFlushFreeListInvariant(t *testing.T) {
	ns := data.NewResourceLocation("p", "main")
	s := newEvaluationStack(ns, 0)
	s.push(pushNumber{n: 1})
	s.push(pushNumber{n: 2})
	s.push(pushNumber{n: 3})
	s.push(operationInstr{op: ast.Add})
	s.push(operationInstr{op: ast.Add})

	idx, err := s.flush()
	require.NoError(t, err)

	freed := map[int32]bool{}
	for _, f := range s.freeList {
		freed[f] = true
	}
	for i := int32(1); i <= s.maxTmps; i++ {
		if i == idx {
			assert.False(t, freed[i], "the returned index must not be on the free list")
			continue
		}
		assert.True(t, freed[i], "temp %d should have been freed", i)
	}
}

func TestFlushOperatorWithoutOperandsErrors(t *testing.T) {
	s := newEvaluationStack(data.NewResourceLocation("p", "main"), 0)
	s.push(pushNumber{n: 1})
	s.push(operationInstr{op: ast.Add})

	_, err := s.flush()
	assert.Error(t, err)
}
