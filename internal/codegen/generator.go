// Package codegen lowers a validated AST into a flat table of ready
// Functions, each a straight-line list of Actions. It is the
// command-function analogue of ccdavis-min-lang's
// compiler/register_compiler.go, retargeted at a register/scoreboard
// runtime with no call stack.
package codegen

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/carbonsmasher-forge/sculkgen/ast"
	"github.com/carbonsmasher-forge/sculkgen/data"
	"github.com/carbonsmasher-forge/sculkgen/sig"
)

// Generator walks a Program and lowers it into Functions. It is the
// "CodeGenerator" of spec.md §4.1: an AST-walking driver that owns a
// stack of in-progress function builders and a stack of open
// EvaluationStacks, plus the handful of counters the lowering rules need.
type Generator struct {
	namespace string
	sigs      sig.Table
	types     *sig.TypePool
	log       *zap.SugaredLogger

	unfinished []*Function
	ready      map[string]*Function
	evalStacks []*EvaluationStack

	loopDepth    int32
	flagTmpCount int32
	binOpDepth   int32 // nesting depth of binary operations; maintained, currently unread
}

// NewGenerator builds a Generator targeting namespace, resolving calls
// against sigs and comparing return types against types.
func NewGenerator(namespace string, sigs sig.Table, types *sig.TypePool, log *zap.SugaredLogger) *Generator {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Generator{
		namespace: namespace,
		sigs:      sigs,
		types:     types,
		log:       log,
		ready:     make(map[string]*Function),
	}
}

// Generate lowers every top-level declaration in program and assembles the
// bootstrap _sculkmain function, returning the complete ready-function
// table keyed by function name. entry names the function _sculkmain calls
// into after setting up storage; callers pass config.DefaultEntry when the
// caller hasn't overridden it.
func (g *Generator) Generate(program *ast.Program, entry string) (map[string]*Function, error) {
	for _, stmt := range program.Statements {
		if _, err := g.visit(stmt); err != nil {
			return nil, err
		}
	}
	if len(g.unfinished) != 0 {
		return nil, errors.Errorf("codegen: %d function(s) left unclosed after compilation", len(g.unfinished))
	}
	if _, ok := g.sigs[entry]; !ok {
		return nil, errors.Errorf("codegen: entry function %q has no recorded signature", entry)
	}

	g.log.Debugw("assembling bootstrap function", "namespace", g.namespace, "entry", entry, "ready", len(g.ready))
	bootstrap := newFunction("_sculkmain", data.NewResourceLocation(g.namespace, "_sculkmain"), nil, g.types.None())

	names := make([]string, 0, len(g.ready))
	for name, fn := range g.ready {
		if !fn.IsAnonymous {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		bootstrap.push(CreateStorage{Name: g.ready[name].Scoreboard.Dotted()})
	}
	bootstrap.push(CallFunction{Target: g.resourceLocation(entry)})

	g.ready[bootstrap.Name] = bootstrap
	return g.ready, nil
}

func (g *Generator) current() *Function {
	if len(g.unfinished) == 0 {
		panic("codegen: no function builder open")
	}
	return g.unfinished[len(g.unfinished)-1]
}

func (g *Generator) pushFunction(fn *Function) { g.unfinished = append(g.unfinished, fn) }

func (g *Generator) popFunction() *Function {
	n := len(g.unfinished)
	fn := g.unfinished[n-1]
	g.unfinished = g.unfinished[:n-1]
	return fn
}

func (g *Generator) resourceLocation(name string) data.ResourceLocation {
	return data.NewResourceLocation(g.namespace, name)
}

func (g *Generator) beginEval(scoreboard data.ResourceLocation, minTmp int32) {
	g.evalStacks = append(g.evalStacks, newEvaluationStack(scoreboard, minTmp))
}

// endEval closes the topmost open EvaluationStack, flushing it and
// splicing its actions into the current function in order, then returns
// the temporary index holding the expression's value.
func (g *Generator) endEval() (int32, error) {
	n := len(g.evalStacks)
	if n == 0 {
		return 0, errors.New("codegen: no evaluation stack open to close")
	}
	stack := g.evalStacks[n-1]
	g.evalStacks = g.evalStacks[:n-1]

	idx, err := stack.flush()
	if err != nil {
		return 0, err
	}
	for _, act := range stack.actions {
		g.current().push(act)
	}
	return idx, nil
}

func (g *Generator) topEval() *EvaluationStack {
	return g.evalStacks[len(g.evalStacks)-1]
}

// accountForJumps emits, into the current function, the guard(s) needed
// to keep propagating a return or break that happened somewhere in the
// subtree ji summarizes. See jump.go's doc comment for why this is a
// value threaded explicitly rather than a pair of mutable latches.
func (g *Generator) accountForJumps(ji jumpInfo) {
	if ji.mayReturn {
		g.current().push(ExecuteIf{
			Condition: matchesCondition(g.current().local("RETFLAG"), "1"),
			Then:      Return{},
		})
	}
	if ji.mayBreak {
		flag := fmt.Sprintf("BREAKFLAG%d", g.loopDepth)
		g.current().push(ExecuteIf{
			Condition: matchesCondition(g.current().local(flag), "1"),
			Then:      Return{},
		})
	}
}

// visit dispatches on the concrete node type, lowering it into the
// current function and/or the top open EvaluationStack, and returns a
// summary of any return/break it produced.
func (g *Generator) visit(n ast.Node) (jumpInfo, error) {
	switch node := n.(type) {

	case *ast.Program:
		var ji jumpInfo
		for _, stmt := range node.Statements {
			next, err := g.visit(stmt)
			if err != nil {
				return jumpInfo{}, err
			}
			ji = orJump(ji, next)
		}
		return ji, nil

	case *ast.Block:
		var ji jumpInfo
		for _, stmt := range node.Statements {
			next, err := g.visit(stmt)
			if err != nil {
				return jumpInfo{}, err
			}
			ji = orJump(ji, next)
		}
		return ji, nil

	case *ast.NumberLiteral:
		g.topEval().push(pushNumber{n: node.Value})
		return jumpInfo{}, nil

	case *ast.BoolLiteral:
		g.topEval().push(pushBool{b: node.Value})
		return jumpInfo{}, nil

	case *ast.Identifier:
		g.topEval().push(pushVariable{v: g.current().local(node.Name)})
		return jumpInfo{}, nil

	case *ast.BinaryOp:
		g.binOpDepth++
		if _, err := g.visit(node.Lhs); err != nil {
			g.binOpDepth--
			return jumpInfo{}, err
		}
		if _, err := g.visit(node.Rhs); err != nil {
			g.binOpDepth--
			return jumpInfo{}, err
		}
		g.topEval().push(operationInstr{op: node.Op})
		g.binOpDepth--
		return jumpInfo{}, nil

	case *ast.UnaryOp:
		return jumpInfo{}, g.visitUnary(node)

	case *ast.VarAssign:
		g.beginEval(g.current().Scoreboard, 0)
		if _, err := g.visit(node.Value); err != nil {
			return jumpInfo{}, err
		}
		idx, err := g.endEval()
		if err != nil {
			return jumpInfo{}, err
		}
		g.current().push(SetVariableToVariable{
			Dst: g.current().local(node.Name),
			Src: data.NewScoreboardEntry(g.current().Scoreboard, fmt.Sprintf("TMP%d", idx)),
		})
		return jumpInfo{}, nil

	case *ast.OpAssign:
		if !node.Op.IsCompoundAssignable() {
			return jumpInfo{}, errors.Errorf("codegen: operator %s is not a valid compound-assignment operator", node.Op)
		}
		g.beginEval(g.current().Scoreboard, 0)
		if _, err := g.visit(node.Value); err != nil {
			return jumpInfo{}, err
		}
		idx, err := g.endEval()
		if err != nil {
			return jumpInfo{}, err
		}
		dst := g.current().local(node.Name)
		src := data.NewScoreboardEntry(g.current().Scoreboard, fmt.Sprintf("TMP%d", idx))
		g.current().push(compoundAction(node.Op, dst, src))
		return jumpInfo{}, nil

	case *ast.CommandLiteral:
		g.current().push(Direct{Command: node.Command})
		return jumpInfo{}, nil

	case *ast.Return:
		if node.Value != nil {
			g.beginEval(g.current().Scoreboard, 0)
			if _, err := g.visit(node.Value); err != nil {
				return jumpInfo{}, err
			}
			idx, err := g.endEval()
			if err != nil {
				return jumpInfo{}, err
			}
			g.current().push(SetVariableToVariable{
				Dst: g.current().local("RET"),
				Src: data.NewScoreboardEntry(g.current().Scoreboard, fmt.Sprintf("TMP%d", idx)),
			})
		}
		g.current().push(SetVariableToNumber{Var: g.current().local("RETFLAG"), Val: 1})
		g.current().push(Return{})
		return jumpInfo{mayReturn: true}, nil

	case *ast.Break:
		flag := fmt.Sprintf("BREAKFLAG%d", g.loopDepth)
		g.current().push(SetVariableToNumber{Var: g.current().local(flag), Val: 1})
		g.current().push(Return{})
		return jumpInfo{mayBreak: true}, nil

	case *ast.FunctionCall:
		if err := g.visitCall(node); err != nil {
			return jumpInfo{}, err
		}
		return jumpInfo{}, nil

	case *ast.FunctionDecl:
		return jumpInfo{}, g.visitFunctionDecl(node)

	case *ast.If:
		return g.visitIf(node)

	case *ast.For:
		return g.visitFor(node)

	case *ast.StructDefinition, *ast.TypedIdentifier:
		return jumpInfo{}, nil

	default:
		return jumpInfo{}, errors.Errorf("codegen: unhandled node type %T", n)
	}
}

// visitUnary rewrites Negate(e) as "e * -1" and Not(e) as "1 - e" before
// handing both off to the evaluator as ordinary binary operations. This
// mirrors codegen.rs's visit_unary rather than giving the evaluator a
// dedicated unary instruction.
func (g *Generator) visitUnary(node *ast.UnaryOp) error {
	switch node.Op {
	case ast.Negate:
		if _, err := g.visit(node.Operand); err != nil {
			return err
		}
		g.topEval().push(pushNumber{n: -1})
		g.topEval().push(operationInstr{op: ast.Multiply})
	case ast.Not:
		g.topEval().push(pushNumber{n: 1})
		if _, err := g.visit(node.Operand); err != nil {
			return err
		}
		g.topEval().push(operationInstr{op: ast.Subtract})
	default:
		return errors.Errorf("codegen: %s is not a valid unary operator", node.Op)
	}
	return nil
}

// visitCall lowers a function call in either statement or expression
// position. When no EvaluationStack is already open (a bare statement
// call, its result discarded) it opens and closes one of its own;
// nested inside a larger expression it shares the caller's stack.
func (g *Generator) visitCall(node *ast.FunctionCall) error {
	signature, ok := g.sigs[node.Name]
	if !ok {
		return errors.Errorf("codegen: call to undeclared function %q", node.Name)
	}

	standalone := len(g.evalStacks) == 0
	if standalone {
		g.beginEval(g.current().Scoreboard, 0)
	}
	for _, arg := range node.Args {
		if _, err := g.visit(arg); err != nil {
			return err
		}
	}
	g.topEval().push(callFunctionInstr{
		target:     g.resourceLocation(node.Name),
		paramNames: signature.ParamNames(),
	})
	if standalone {
		if _, err := g.endEval(); err != nil {
			return err
		}
	}
	return nil
}

// visitFunctionDecl lowers a source-declared function's body into a
// fresh ready Function, giving it a RETFLAG prelude iff it returns a
// value.
func (g *Generator) visitFunctionDecl(node *ast.FunctionDecl) error {
	signature, ok := g.sigs[node.Name]
	if !ok {
		return errors.Errorf("codegen: no signature recorded for function %q", node.Name)
	}

	fn := newFunction(node.Name, g.resourceLocation(node.Name), signature.Params, signature.ReturnType)
	g.pushFunction(fn)

	if !fn.ReturnType.Equals(g.types.None()) {
		fn.push(SetVariableToNumber{Var: fn.local("RETFLAG"), Val: 0})
	}

	if _, err := g.visit(node.Body); err != nil {
		return err
	}

	finished := g.popFunction()
	g.ready[finished.Name] = finished
	g.flagTmpCount = 0
	return nil
}

// visitIf lowers both branches into their own anonymous child functions
// and dispatches between them with execute if/unless, per spec.md §4.1's
// worked scenario 4. The two branches share the enclosing function's
// namespace, so RETFLAG/BREAKFLAG writes inside either are immediately
// visible once control returns here.
func (g *Generator) visitIf(node *ast.If) (jumpInfo, error) {
	g.beginEval(g.current().Scoreboard, 0)
	if _, err := g.visit(node.Cond); err != nil {
		return jumpInfo{}, err
	}
	condIdx, err := g.endEval()
	if err != nil {
		return jumpInfo{}, err
	}
	g.flagTmpCount++
	condTmp := data.NewScoreboardEntry(g.current().Scoreboard, fmt.Sprintf("TMP%d", condIdx))

	thenChild := g.current().makeAnonymousChild()
	g.pushFunction(thenChild)
	thenJump, err := g.visit(node.Then)
	if err != nil {
		return jumpInfo{}, err
	}
	thenChild = g.popFunction()
	g.ready[thenChild.Name] = thenChild

	g.current().push(ExecuteIf{
		Condition: matchesCondition(condTmp, "1"),
		Then:      CallFunction{Target: g.resourceLocation(thenChild.Name)},
	})

	combined := thenJump

	if node.Else != nil {
		elseChild := g.current().makeAnonymousChild()
		g.pushFunction(elseChild)
		elseJump, err := g.visit(node.Else)
		if err != nil {
			return jumpInfo{}, err
		}
		elseChild = g.popFunction()
		g.ready[elseChild.Name] = elseChild

		g.current().push(ExecuteUnless{
			Condition: matchesCondition(condTmp, "1"),
			Then:      CallFunction{Target: g.resourceLocation(elseChild.Name)},
		})
		combined = orJump(combined, elseJump)
	}

	g.accountForJumps(combined)
	return combined, nil
}

// visitFor lowers a C-style loop into a self-recursive anonymous child:
// the enclosing function tests the loop condition once and, if true,
// calls the child; the child runs its body, applies the step, re-tests
// the same condition, and calls itself again if still true. break is
// absorbed at this loop's boundary (it never needs to keep propagating
// past the loop that owns it); return keeps propagating upward unchanged.
func (g *Generator) visitFor(node *ast.For) (jumpInfo, error) {
	g.loopDepth++
	defer func() { g.loopDepth-- }()

	if node.Init != nil {
		if _, err := g.visit(node.Init); err != nil {
			return jumpInfo{}, err
		}
	}

	loopChild := g.current().makeAnonymousChild()
	g.pushFunction(loopChild)

	bodyJump, err := g.visit(node.Body)
	if err != nil {
		return jumpInfo{}, err
	}
	if node.Step != nil {
		if _, err := g.visit(node.Step); err != nil {
			return jumpInfo{}, err
		}
	}

	g.beginEval(loopChild.Scoreboard, 0)
	if _, err := g.visit(node.Cond); err != nil {
		return jumpInfo{}, err
	}
	innerCondIdx, err := g.endEval()
	if err != nil {
		return jumpInfo{}, err
	}
	innerCondTmp := data.NewScoreboardEntry(loopChild.Scoreboard, fmt.Sprintf("TMP%d", innerCondIdx))
	g.current().push(ExecuteIf{
		Condition: matchesCondition(innerCondTmp, "1"),
		Then:      CallFunction{Target: g.resourceLocation(loopChild.Name)},
	})

	loopChild = g.popFunction()
	g.ready[loopChild.Name] = loopChild

	g.beginEval(g.current().Scoreboard, 0)
	if _, err := g.visit(node.Cond); err != nil {
		return jumpInfo{}, err
	}
	outerCondIdx, err := g.endEval()
	if err != nil {
		return jumpInfo{}, err
	}
	g.flagTmpCount++
	outerCondTmp := data.NewScoreboardEntry(g.current().Scoreboard, fmt.Sprintf("TMP%d", outerCondIdx))
	g.current().push(ExecuteIf{
		Condition: matchesCondition(outerCondTmp, "1"),
		Then:      CallFunction{Target: g.resourceLocation(loopChild.Name)},
	})

	combined := jumpInfo{mayReturn: bodyJump.mayReturn}
	g.accountForJumps(combined)
	return combined, nil
}

// compoundAction maps an IsCompoundAssignable operator to the in-place
// Action that implements it.
func compoundAction(op ast.Operation, dst, src data.ScoreboardEntry) Action {
	switch op {
	case ast.Add:
		return AddVariables{A: dst, B: src}
	case ast.Subtract:
		return SubtractVariables{A: dst, B: src}
	case ast.Multiply:
		return MultiplyVariables{A: dst, B: src}
	case ast.Divide:
		return DivideVariables{A: dst, B: src}
	case ast.Modulo:
		return ModuloVariables{A: dst, B: src}
	default:
		panic(fmt.Sprintf("codegen: %s is not compound-assignable", op))
	}
}
