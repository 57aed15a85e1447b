package codegen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/carbonsmasher-forge/sculkgen/ast"
	"github.com/carbonsmasher-forge/sculkgen/data"
)

// evalInstr is one element of an EvaluationStack's linearized postfix
// instruction stream.
type evalInstr interface{ evalInstr() }

type pushNumber struct{ n int32 }

func (pushNumber) evalInstr() {}

type pushBool struct{ b bool }

func (pushBool) evalInstr() {}

type pushVariable struct{ v data.ScoreboardEntry }

func (pushVariable) evalInstr() {}

type operationInstr struct{ op ast.Operation }

func (operationInstr) evalInstr() {}

type callFunctionInstr struct {
	target     data.ResourceLocation
	paramNames []string
}

func (callFunctionInstr) evalInstr() {}

// EvaluationStack lowers one complete expression into a sequence of
// Actions, using a free-list temporary-register allocator scoped to this
// single flush. See spec.md §3/§4.2.
type EvaluationStack struct {
	scoreboard   data.ResourceLocation
	instructions []evalInstr
	actions      []Action
	freeList     []int32
	maxTmps      int32
}

// newEvaluationStack opens a stack for scoreboard, with its temporary
// indices starting above minTmp (the current design always passes 0, per
// spec.md §4.2, but a caller reserving its own low indices could pass a
// higher floor to avoid collisions).
func newEvaluationStack(scoreboard data.ResourceLocation, minTmp int32) *EvaluationStack {
	return &EvaluationStack{scoreboard: scoreboard, maxTmps: minTmp}
}

func (s *EvaluationStack) push(instr evalInstr) {
	s.instructions = append(s.instructions, instr)
}

func (s *EvaluationStack) emit(act Action) {
	s.actions = append(s.actions, act)
}

func (s *EvaluationStack) reserve() int32 {
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		return idx
	}
	s.maxTmps++
	return s.maxTmps
}

func (s *EvaluationStack) free(idx int32) {
	s.freeList = append(s.freeList, idx)
}

func (s *EvaluationStack) tmp(idx int32) data.ScoreboardEntry {
	return data.NewScoreboardEntry(s.scoreboard, fmt.Sprintf("TMP%d", idx))
}

// flush lowers the full instruction stream accumulated so far into
// s.actions and returns the single temporary index carrying the
// expression's final value, per the evaluation rules of spec.md §4.2.
func (s *EvaluationStack) flush() (int32, error) {
	var working []int32

	for _, instr := range s.instructions {
		switch in := instr.(type) {
		case pushNumber:
			idx := s.reserve()
			s.emit(SetVariableToNumber{Var: s.tmp(idx), Val: in.n})
			working = append(working, idx)

		case pushBool:
			idx := s.reserve()
			val := int32(0)
			if in.b {
				val = 1
			}
			s.emit(SetVariableToNumber{Var: s.tmp(idx), Val: val})
			working = append(working, idx)

		case pushVariable:
			idx := s.reserve()
			s.emit(SetVariableToVariable{Dst: s.tmp(idx), Src: in.v})
			working = append(working, idx)

		case operationInstr:
			if len(working) < 2 {
				return 0, errors.Errorf("codegen: operator %s has fewer than two operands on the evaluation stack", in.op)
			}
			bIdx := working[len(working)-1]
			working = working[:len(working)-1]
			aIdx := working[len(working)-1]

			a, b := s.tmp(aIdx), s.tmp(bIdx)
			if err := s.lowerOperation(in.op, a, b); err != nil {
				return 0, err
			}

			s.free(bIdx)

		case callFunctionInstr:
			n := len(in.paramNames)
			if len(working) < n {
				return 0, errors.Errorf("codegen: call to %s expects %d arguments, only %d on the evaluation stack", in.target, n, len(working))
			}
			argIdxs := append([]int32(nil), working[len(working)-n:]...)
			working = working[:len(working)-n]

			for i, paramName := range in.paramNames {
				s.emit(SetVariableToVariable{
					Dst: data.NewScoreboardEntry(in.target, paramName),
					Src: s.tmp(argIdxs[i]),
				})
			}

			s.emit(CallFunction{Target: in.target})

			// Reserve the temp that will hold RET before freeing the
			// argument temps, so the return value never aliases an
			// argument slot freed moments earlier in the same flush.
			retIdx := s.reserve()
			s.emit(SetVariableToVariable{
				Dst: s.tmp(retIdx),
				Src: data.NewScoreboardEntry(in.target, "RET"),
			})

			for _, idx := range argIdxs {
				s.free(idx)
			}
			working = append(working, retIdx)

		default:
			return 0, errors.Errorf("codegen: unhandled evaluation instruction %T", instr)
		}
	}

	if len(working) == 0 {
		return 0, errors.New("codegen: evaluation stack flushed with no value produced")
	}

	target := working[0]
	if len(working) == 2 {
		result := working[1]
		if result != target {
			s.emit(SetVariableToVariable{Dst: s.tmp(target), Src: s.tmp(result)})
		}
	}
	for _, idx := range working {
		if idx != target {
			s.free(idx)
		}
	}

	s.instructions = s.instructions[:0]
	return target, nil
}

// lowerOperation appends the action(s) implementing op against operands
// a (left, result destination) and b (right, consumed). Comparisons lower
// as a subtraction followed by a conditional write of 1 to a, which is
// only correct when a is freshly materialized and therefore zero on the
// "false" path. See spec.md §9's open question on this precondition; the
// validator/rebranch pass upstream is relied on to keep comparison
// operands fresh.
func (s *EvaluationStack) lowerOperation(op ast.Operation, a, b data.ScoreboardEntry) error {
	switch op {
	case ast.Add:
		s.emit(AddVariables{A: a, B: b})
	case ast.Subtract:
		s.emit(SubtractVariables{A: a, B: b})
	case ast.Multiply:
		s.emit(MultiplyVariables{A: a, B: b})
	case ast.Divide:
		s.emit(DivideVariables{A: a, B: b})
	case ast.Modulo:
		s.emit(ModuloVariables{A: a, B: b})

	case ast.GreaterThan:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteIf{Condition: matchesCondition(a, "1.."), Then: SetVariableToNumber{Var: a, Val: 1}})
	case ast.LessThan:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteIf{Condition: matchesCondition(a, "..-1"), Then: SetVariableToNumber{Var: a, Val: 1}})
	case ast.GreaterThanOrEquals:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteIf{Condition: matchesCondition(a, "0.."), Then: SetVariableToNumber{Var: a, Val: 1}})
	case ast.LessThanOrEquals:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteIf{Condition: matchesCondition(a, "..0"), Then: SetVariableToNumber{Var: a, Val: 1}})
	case ast.CheckEquals:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteIf{Condition: matchesCondition(a, "0"), Then: SetVariableToNumber{Var: a, Val: 1}})
	case ast.NotEquals:
		s.emit(SubtractVariables{A: a, B: b})
		s.emit(ExecuteUnless{Condition: matchesCondition(a, "0"), Then: SetVariableToNumber{Var: a, Val: 1}})

	default:
		return errors.Errorf("codegen: operator %s cannot be lowered by the expression evaluator", op)
	}
	return nil
}

// matchesCondition builds the "score <entry> matches <range>" predicate
// string spec.md §3 specifies for conditional actions.
func matchesCondition(entry data.ScoreboardEntry, rng string) string {
	return fmt.Sprintf("score %s matches %s", entry, rng)
}
