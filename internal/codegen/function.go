package codegen

import (
	"fmt"

	"github.com/carbonsmasher-forge/sculkgen/data"
	"github.com/carbonsmasher-forge/sculkgen/sig"
)

// Function is a mutable builder during lowering. Every local it will ever
// reference (parameters, RET, RETFLAG, BREAKFLAG<n>, TMP<n>) lives in
// its own Scoreboard namespace.
type Function struct {
	Name         string
	Scoreboard   data.ResourceLocation
	Params       []sig.ParamDef
	ReturnType   sig.Type
	Actions      []Action
	IsAnonymous  bool
	childCounter int
}

// newFunction starts a builder for a non-anonymous, source-declared
// function.
func newFunction(name string, scoreboard data.ResourceLocation, params []sig.ParamDef, returnType sig.Type) *Function {
	return &Function{
		Name:       name,
		Scoreboard: scoreboard,
		Params:     params,
		ReturnType: returnType,
	}
}

// makeAnonymousChild allocates a fresh child function sharing this
// function's scoreboard (so its locals stay visible) and named
// "<this-name>/<n>" for a per-parent monotonically increasing n. This is
// the stable suffix generator spec.md §3 requires two fresh children of
// the same parent to satisfy.
func (f *Function) makeAnonymousChild() *Function {
	name := fmt.Sprintf("%s/%d", f.Name, f.childCounter)
	f.childCounter++
	return &Function{
		Name:        name,
		Scoreboard:  f.Scoreboard,
		ReturnType:  f.ReturnType,
		IsAnonymous: true,
	}
}

// local builds a ScoreboardEntry for name inside this function's
// namespace.
func (f *Function) local(name string) data.ScoreboardEntry {
	return data.NewScoreboardEntry(f.Scoreboard, name)
}

// push appends an action to this function in visit order.
func (f *Function) push(act Action) {
	f.Actions = append(f.Actions, act)
}
