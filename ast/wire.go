package ast

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/carbonsmasher-forge/sculkgen/sig"
)

// Envelope is the on-disk contract the CLI reads: the already-rebranched
// AST plus the validator's function-signature table and the namespace,
// bundled as one JSON document (spec.md §6's "Inputs" section, given a
// concrete wire shape; see DESIGN.md's Open Question decision). The type
// pool is not part of the document; DecodeEnvelope builds a fresh one and
// maps each type name onto it.
type Envelope struct {
	Namespace  string          `json:"namespace"`
	Functions  []wireSignature `json:"functions"`
	AST        json.RawMessage `json:"ast"`
}

type wireSignature struct {
	Name       string       `json:"name"`
	Params     []wireParam  `json:"params"`
	ReturnType string       `json:"return_type"`
}

type wireParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// wireNode is the generic recursive shape every node is encoded as: a
// "kind" discriminator naming one of this package's node types, plus
// whatever fields that kind needs.
type wireNode struct {
	Kind     string          `json:"kind"`
	Value    int32           `json:"value,omitempty"`
	Bool     bool            `json:"bool,omitempty"`
	Name     string          `json:"name,omitempty"`
	Type     string          `json:"type,omitempty"`
	Op       string          `json:"op,omitempty"`
	Command  string          `json:"command,omitempty"`
	Lhs      json.RawMessage `json:"lhs,omitempty"`
	Rhs      json.RawMessage `json:"rhs,omitempty"`
	Operand  json.RawMessage `json:"operand,omitempty"`
	Value_   json.RawMessage `json:"value_node,omitempty"`
	Cond     json.RawMessage `json:"cond,omitempty"`
	Then     json.RawMessage `json:"then,omitempty"`
	Else     json.RawMessage `json:"else,omitempty"`
	Init     json.RawMessage `json:"init,omitempty"`
	Step     json.RawMessage `json:"step,omitempty"`
	Body     json.RawMessage `json:"body,omitempty"`
	Args     []json.RawMessage `json:"args,omitempty"`
	Statements []json.RawMessage `json:"statements,omitempty"`
}

var opNames = map[string]Operation{
	"+": Add, "-": Subtract, "*": Multiply, "/": Divide, "%": Modulo,
	">": GreaterThan, "<": LessThan, ">=": GreaterThanOrEquals, "<=": LessThanOrEquals,
	"==": CheckEquals, "!=": NotEquals, "neg": Negate, "!": Not,
}

func decodeOp(s string) (Operation, error) {
	op, ok := opNames[s]
	if !ok {
		return 0, errors.Errorf("ast: unknown operator %q in wire format", s)
	}
	return op, nil
}

// DecodeNode decodes one JSON-encoded node and its entire subtree.
func DecodeNode(raw json.RawMessage) (Node, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var w wireNode
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, errors.Wrap(err, "ast: decoding node")
	}

	switch w.Kind {
	case "Program":
		stmts, err := decodeList(w.Statements)
		if err != nil {
			return nil, err
		}
		return &Program{Statements: stmts}, nil

	case "Block":
		stmts, err := decodeList(w.Statements)
		if err != nil {
			return nil, err
		}
		return &Block{Statements: stmts}, nil

	case "NumberLiteral":
		return &NumberLiteral{Value: w.Value}, nil

	case "BoolLiteral":
		return &BoolLiteral{Value: w.Bool}, nil

	case "Identifier":
		return &Identifier{Name: w.Name}, nil

	case "BinaryOp":
		op, err := decodeOp(w.Op)
		if err != nil {
			return nil, err
		}
		lhs, err := DecodeNode(w.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := DecodeNode(w.Rhs)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Lhs: lhs, Rhs: rhs, Op: op}, nil

	case "UnaryOp":
		op, err := decodeOp(w.Op)
		if err != nil {
			return nil, err
		}
		operand, err := DecodeNode(w.Operand)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Operand: operand, Op: op}, nil

	case "VarAssign":
		value, err := DecodeNode(w.Value_)
		if err != nil {
			return nil, err
		}
		return &VarAssign{Name: w.Name, Value: value}, nil

	case "OpAssign":
		op, err := decodeOp(w.Op)
		if err != nil {
			return nil, err
		}
		value, err := DecodeNode(w.Value_)
		if err != nil {
			return nil, err
		}
		return &OpAssign{Name: w.Name, Op: op, Value: value}, nil

	case "CommandLiteral":
		return &CommandLiteral{Command: w.Command}, nil

	case "Return":
		value, err := DecodeNode(w.Value_)
		if err != nil {
			return nil, err
		}
		return &Return{Value: value}, nil

	case "Break":
		return &Break{}, nil

	case "FunctionCall":
		args, err := decodeList(w.Args)
		if err != nil {
			return nil, err
		}
		return &FunctionCall{Name: w.Name, Args: args}, nil

	case "FunctionDecl":
		body, err := DecodeNode(w.Body)
		if err != nil {
			return nil, err
		}
		return &FunctionDecl{Name: w.Name, Body: body}, nil

	case "If":
		cond, err := DecodeNode(w.Cond)
		if err != nil {
			return nil, err
		}
		then, err := DecodeNode(w.Then)
		if err != nil {
			return nil, err
		}
		elseNode, err := DecodeNode(w.Else)
		if err != nil {
			return nil, err
		}
		return &If{Cond: cond, Then: then, Else: elseNode}, nil

	case "For":
		init, err := DecodeNode(w.Init)
		if err != nil {
			return nil, err
		}
		cond, err := DecodeNode(w.Cond)
		if err != nil {
			return nil, err
		}
		step, err := DecodeNode(w.Step)
		if err != nil {
			return nil, err
		}
		body, err := DecodeNode(w.Body)
		if err != nil {
			return nil, err
		}
		return &For{Init: init, Cond: cond, Step: step, Body: body}, nil

	case "StructDefinition":
		return &StructDefinition{Name: w.Name}, nil

	case "TypedIdentifier":
		return &TypedIdentifier{Name: w.Name, Type: w.Type}, nil

	default:
		return nil, errors.Errorf("ast: unknown node kind %q in wire format", w.Kind)
	}
}

func decodeList(raw []json.RawMessage) ([]Node, error) {
	nodes := make([]Node, 0, len(raw))
	for _, item := range raw {
		n, err := DecodeNode(item)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// DecodeEnvelope decodes a full compile unit: namespace, function
// signature table, and AST, returned together with the type pool the
// signatures' types were resolved against.
func DecodeEnvelope(data []byte) (namespace string, program *Program, table sig.Table, pool *sig.TypePool, err error) {
	var env Envelope
	if err = json.Unmarshal(data, &env); err != nil {
		return "", nil, nil, nil, errors.Wrap(err, "ast: decoding envelope")
	}

	pool = sig.NewTypePool()
	table = make(sig.Table, len(env.Functions))
	for _, fn := range env.Functions {
		params := make([]sig.ParamDef, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = sig.ParamDef{Name: p.Name, Type: resolveType(pool, p.Type)}
		}
		table[fn.Name] = sig.FunctionSignature{
			Name:       fn.Name,
			Params:     params,
			ReturnType: resolveType(pool, fn.ReturnType),
		}
	}

	node, err := DecodeNode(env.AST)
	if err != nil {
		return "", nil, nil, nil, err
	}
	root, ok := node.(*Program)
	if !ok {
		return "", nil, nil, nil, errors.Errorf("ast: envelope's top-level node must be a Program, got %T", node)
	}

	return env.Namespace, root, table, pool, nil
}

func resolveType(pool *sig.TypePool, name string) sig.Type {
	switch name {
	case "", "none", "void":
		return pool.None()
	case "bool":
		return pool.Bool()
	default:
		return pool.Int()
	}
}
