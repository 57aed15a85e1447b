package codegen

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// writeAction renders one action as a single logical command line into
// buf, with no trailing newline of its own. Callers separate actions
// with "\r\n" the way the target runtime's function files expect.
func writeAction(buf *strings.Builder, act Action) error {
	switch a := act.(type) {
	case CreateStorage:
		fmt.Fprintf(buf, "scoreboard objectives add %s dummy", a.Name)
	case SetVariableToNumber:
		fmt.Fprintf(buf, "scoreboard players set %s %d", a.Var, a.Val)
	case SetVariableToVariable:
		fmt.Fprintf(buf, "scoreboard players operation %s = %s", a.Dst, a.Src)
	case AddVariables:
		fmt.Fprintf(buf, "scoreboard players operation %s += %s", a.A, a.B)
	case SubtractVariables:
		fmt.Fprintf(buf, "scoreboard players operation %s -= %s", a.A, a.B)
	case MultiplyVariables:
		fmt.Fprintf(buf, "scoreboard players operation %s *= %s", a.A, a.B)
	case DivideVariables:
		fmt.Fprintf(buf, "scoreboard players operation %s /= %s", a.A, a.B)
	case ModuloVariables:
		fmt.Fprintf(buf, "scoreboard players operation %s %%= %s", a.A, a.B)
	case CallFunction:
		fmt.Fprintf(buf, "function %s", a.Target)
	case ExecuteIf:
		fmt.Fprintf(buf, "execute if %s run ", a.Condition)
		return writeAction(buf, a.Then)
	case ExecuteUnless:
		fmt.Fprintf(buf, "execute unless %s run ", a.Condition)
		return writeAction(buf, a.Then)
	case Direct:
		buf.WriteString(a.Command)
	case Return:
		buf.WriteString("return")
	default:
		return errors.Errorf("codegen: printer cannot render action of type %T", act)
	}
	return nil
}

// RenderAction renders a single action in isolation, mainly useful from
// tests asserting on one line at a time without building a whole
// function's text.
func RenderAction(act Action) (string, error) {
	var buf strings.Builder
	if err := writeAction(&buf, act); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderFunction renders every action of fn, one per line, joined by
// "\r\n" with no trailing separator. That is the exact text written
// to fn's .mcfunction file.
func RenderFunction(fn *Function, buf *strings.Builder) error {
	buf.Reset()
	for i, act := range fn.Actions {
		if i > 0 {
			buf.WriteString("\r\n")
		}
		if err := writeAction(buf, act); err != nil {
			return errors.Wrapf(err, "codegen: rendering function %q", fn.Name)
		}
	}
	return nil
}
