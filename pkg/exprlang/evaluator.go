package exprlang

import (
	"strconv"
	"strings"
	"time"

	"github.com/forgekit/forge-engine/pkg/jsonvalue"
	"github.com/spf13/cast"
)

// EvalContext is the evaluation environment: the variables root and the
// timestamp now() resolves against (captured once, per spec section 5, so
// evaluation stays deterministic except through this single seam).
type EvalContext struct {
	Variables *jsonvalue.Value
	Now       time.Time
}

// NewEvalContext builds a context with the given variables and timestamp.
func NewEvalContext(variables *jsonvalue.Value, now time.Time) *EvalContext {
	return &EvalContext{Variables: variables, Now: now}
}

// NewEvalContextWithNow builds a context using the wall clock.
func NewEvalContextWithNow(variables *jsonvalue.Value) *EvalContext {
	return &EvalContext{Variables: variables, Now: time.Now()}
}

// Eval evaluates expr against ctx, implementing spec section 4.1's
// evaluation contract.
func Eval(expr *Expr, ctx *EvalContext) (*jsonvalue.Value, error) {
	switch expr.Kind {
	case ExprLiteral:
		return expr.Literal, nil
	case ExprVar:
		return lookupVariable(ctx.Variables, expr.Path), nil
	case ExprUnary:
		value, err := Eval(expr.Operand, ctx)
		if err != nil {
			return nil, err
		}
		switch expr.UnaryOp {
		case OpNegate:
			n, err := toNumber(value)
			if err != nil {
				return nil, err
			}
			return jsonvalue.NewNumber(-n), nil
		case OpNot:
			return jsonvalue.NewBoolean(!value.Truthy()), nil
		}
		return nil, newEvalError("unknown unary operator")
	case ExprBinary:
		return evalBinary(expr, ctx)
	case ExprCall:
		return evalCall(expr.Callee, expr.Args, ctx)
	default:
		return nil, newEvalError("unknown expression kind")
	}
}

func evalBinary(expr *Expr, ctx *EvalContext) (*jsonvalue.Value, error) {
	switch expr.BinaryOp {
	case OpAnd:
		lhs, err := Eval(expr.Left, ctx)
		if err != nil {
			return nil, err
		}
		if !lhs.Truthy() {
			return jsonvalue.NewBoolean(false), nil
		}
		rhs, err := Eval(expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		return jsonvalue.NewBoolean(rhs.Truthy()), nil
	case OpOr:
		lhs, err := Eval(expr.Left, ctx)
		if err != nil {
			return nil, err
		}
		if lhs.Truthy() {
			return jsonvalue.NewBoolean(true), nil
		}
		rhs, err := Eval(expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		return jsonvalue.NewBoolean(rhs.Truthy()), nil
	case OpAdd, OpSub, OpMul, OpDiv:
		lhs, err := Eval(expr.Left, ctx)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		lnum, err := toNumber(lhs)
		if err != nil {
			return nil, err
		}
		rnum, err := toNumber(rhs)
		if err != nil {
			return nil, err
		}
		var result float64
		switch expr.BinaryOp {
		case OpAdd:
			result = lnum + rnum
		case OpSub:
			result = lnum - rnum
		case OpMul:
			result = lnum * rnum
		case OpDiv:
			if rnum == 0 {
				return nil, newEvalError("division by zero")
			}
			result = lnum / rnum
		}
		return jsonvalue.NewNumber(result), nil
	case OpEq, OpNotEq:
		lhs, err := Eval(expr.Left, ctx)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		eq := jsonvalue.Equal(lhs, rhs)
		if expr.BinaryOp == OpNotEq {
			eq = !eq
		}
		return jsonvalue.NewBoolean(eq), nil
	case OpLt, OpLte, OpGt, OpGte:
		lhs, err := Eval(expr.Left, ctx)
		if err != nil {
			return nil, err
		}
		rhs, err := Eval(expr.Right, ctx)
		if err != nil {
			return nil, err
		}
		return compareValues(expr.BinaryOp, lhs, rhs)
	default:
		return nil, newEvalError("unknown binary operator")
	}
}

func compareValues(op BinaryOp, lhs, rhs *jsonvalue.Value) (*jsonvalue.Value, error) {
	switch {
	case lhs.IsNumeric() && rhs.IsNumeric():
		l, r := lhs.NumberValue(), rhs.NumberValue()
		return jsonvalue.NewBoolean(compareOrdered(op, l < r, l <= r, l > r, l >= r)), nil
	case lhs.Kind() == jsonvalue.KindString && rhs.Kind() == jsonvalue.KindString:
		l, r := lhs.StringValue(), rhs.StringValue()
		return jsonvalue.NewBoolean(compareOrdered(op, l < r, l <= r, l > r, l >= r)), nil
	default:
		return nil, newEvalError("comparison requires two numbers or two strings")
	}
}

func compareOrdered(op BinaryOp, lt, lte, gt, gte bool) bool {
	switch op {
	case OpLt:
		return lt
	case OpLte:
		return lte
	case OpGt:
		return gt
	case OpGte:
		return gte
	default:
		return false
	}
}

func evalCall(name string, args []*Expr, ctx *EvalContext) (*jsonvalue.Value, error) {
	switch strings.ToLower(name) {
	case "concat":
		var sb strings.Builder
		for _, arg := range args {
			value, err := Eval(arg, ctx)
			if err != nil {
				return nil, err
			}
			sb.WriteString(valueToString(value))
		}
		return jsonvalue.NewString(sb.String()), nil
	case "len":
		if len(args) != 1 {
			return nil, newEvalError("len() expects exactly one argument")
		}
		value, err := Eval(args[0], ctx)
		if err != nil {
			return nil, err
		}
		switch value.Kind() {
		case jsonvalue.KindString:
			return jsonvalue.NewNumber(float64(len([]rune(value.StringValue())))), nil
		case jsonvalue.KindArray:
			return jsonvalue.NewNumber(float64(value.ArrayLen())), nil
		default:
			return nil, newEvalError("len() supports only string or array arguments")
		}
	case "now":
		if len(args) != 0 {
			return nil, newEvalError("now() takes no arguments")
		}
		return jsonvalue.NewString(ctx.Now.Format(time.RFC3339)), nil
	default:
		return nil, newEvalError("unknown function %s", name)
	}
}

func lookupVariable(root *jsonvalue.Value, path []string) *jsonvalue.Value {
	current := root
	for _, segment := range path {
		if current.Kind() != jsonvalue.KindObject {
			return jsonvalue.NewNull()
		}
		next := current.ObjectGet(segment)
		if next == nil {
			return jsonvalue.NewNull()
		}
		current = next
	}
	return current
}

func toNumber(value *jsonvalue.Value) (float64, error) {
	if !value.IsNumeric() {
		return 0, newEvalError("expected number")
	}
	return value.NumberValue(), nil
}

// valueToString renders a value's "printable form", used by concat(): null
// becomes "null", booleans/numbers their literal text, arrays/objects
// compact JSON, grounded on expr.rs's value_to_string.
func valueToString(value *jsonvalue.Value) string {
	switch value.Kind() {
	case jsonvalue.KindUndefined, jsonvalue.KindNull:
		return "null"
	case jsonvalue.KindBoolean:
		return cast.ToString(value.BoolValue())
	case jsonvalue.KindNumber:
		return strconv.FormatFloat(value.NumberValue(), 'g', -1, 64)
	case jsonvalue.KindInt64:
		return strconv.FormatInt(value.Int64Value(), 10)
	case jsonvalue.KindString:
		return value.StringValue()
	default:
		data, err := value.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(data)
	}
}
