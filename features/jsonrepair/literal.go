package jsonrepair

import (
	"fmt"
	"math"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
	"github.com/dop251/goja/token"
)

// parseLiteral recovers JSON-like object/array literals (unquoted keys, single quoted strings,
// comments, signed numbers). The text is only parsed into a syntax tree, never executed;
// anything that is not a plain literal is rejected.
func parseLiteral(str string) (any, error) {
	program, err := parser.ParseFile(nil, "", "(\n"+str+"\n)", 0)
	if err != nil {
		return nil, err
	}
	if len(program.Body) != 1 {
		return nil, fmt.Errorf("expected a single expression, got %d statements", len(program.Body))
	}
	stmt, ok := program.Body[0].(*ast.ExpressionStatement)
	if !ok {
		return nil, fmt.Errorf("not an expression: %T", program.Body[0])
	}
	v, err := literalValue(stmt.Expression)
	if err != nil {
		return nil, err
	}
	if !IsContainer(v) {
		return nil, fmt.Errorf("literal is not an object or array")
	}
	return v, nil
}

func literalValue(expr ast.Expression) (any, error) {
	switch e := expr.(type) {
	case *ast.ObjectLiteral:
		obj := NewObject()
		for _, prop := range e.Value {
			keyed, ok := prop.(*ast.PropertyKeyed)
			if !ok || keyed.Computed || keyed.Kind != ast.PropertyKindValue {
				return nil, fmt.Errorf("unsupported property %T", prop)
			}
			key, err := literalKey(keyed.Key)
			if err != nil {
				return nil, err
			}
			v, err := literalValue(keyed.Value)
			if err != nil {
				return nil, err
			}
			obj.Set(key, v)
		}
		return obj, nil
	case *ast.ArrayLiteral:
		arr := make([]any, 0, len(e.Value))
		for _, item := range e.Value {
			if item == nil { // hole, e.g. [1,,2]
				arr = append(arr, nil)
				continue
			}
			v, err := literalValue(item)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case *ast.StringLiteral:
		return e.Value.String(), nil
	case *ast.NumberLiteral:
		return numberValue(e.Value)
	case *ast.BooleanLiteral:
		return e.Value, nil
	case *ast.NullLiteral:
		return nil, nil
	case *ast.Identifier:
		switch e.Name.String() {
		case "undefined", "NaN":
			return nil, nil
		case "Infinity":
			return math.Inf(1), nil
		}
		return nil, fmt.Errorf("unsupported identifier %q", e.Name.String())
	case *ast.UnaryExpression:
		if e.Postfix || (e.Operator != token.MINUS && e.Operator != token.PLUS) {
			return nil, fmt.Errorf("unsupported operator %v", e.Operator)
		}
		v, err := literalValue(e.Operand)
		if err != nil {
			return nil, err
		}
		f, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("sign applied to non-number")
		}
		if e.Operator == token.MINUS {
			f = -f
		}
		return f, nil
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func literalKey(expr ast.Expression) (string, error) {
	switch k := expr.(type) {
	case *ast.StringLiteral:
		return k.Value.String(), nil
	case *ast.NumberLiteral:
		f, err := numberValue(k.Value)
		if err != nil {
			return "", err
		}
		return FormatNumber(f), nil
	case *ast.Identifier:
		return k.Name.String(), nil
	}
	return "", fmt.Errorf("unsupported key %T", expr)
}

func numberValue(v any) (float64, error) {
	switch n := v.(type) {
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	}
	return 0, fmt.Errorf("unsupported number %T", v)
}
