package exprlang_test

import (
	"testing"
	"time"

	"github.com/forgekit/forge-engine/pkg/exprlang"
	"github.com/forgekit/forge-engine/pkg/jsonvalue"
)

func evalSource(t *testing.T, src string, ctx *exprlang.EvalContext) *jsonvalue.Value {
	t.Helper()
	expr, err := exprlang.ParseExpression(src)
	if err != nil {
		t.Fatalf("ParseExpression(%q) error: %v", src, err)
	}
	value, err := exprlang.Eval(expr, ctx)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", src, err)
	}
	return value
}

func emptyContext() *exprlang.EvalContext {
	return exprlang.NewEvalContext(jsonvalue.NewObject(), time.Unix(0, 0).UTC())
}

func TestEval_ArithmeticPrecedence(t *testing.T) {
	value := evalSource(t, "1 + 2 * 3 - 4 / 2", emptyContext())
	if value.Kind() != jsonvalue.KindNumber || value.NumberValue() != 5 {
		t.Fatalf("expected 5, got %v (%v)", value.NumberValue(), value.Kind())
	}
}

func TestEval_BooleanLogic(t *testing.T) {
	value := evalSource(t, "true && false || !false", emptyContext())
	if value.Kind() != jsonvalue.KindBoolean || !value.BoolValue() {
		t.Fatalf("expected true, got %v", value)
	}
}

func TestEval_ConcatFunction(t *testing.T) {
	value := evalSource(t, `concat("a", "b", 1, true)`, emptyContext())
	if value.Kind() != jsonvalue.KindString || value.StringValue() != "ab1true" {
		t.Fatalf("expected \"ab1true\", got %q", value.StringValue())
	}
}

func TestEval_LenFunctionOnArray(t *testing.T) {
	variables := jsonvalue.NewObject()
	items := jsonvalue.NewArray()
	items.ArrayAppend(jsonvalue.NewNumber(1))
	items.ArrayAppend(jsonvalue.NewNumber(2))
	items.ArrayAppend(jsonvalue.NewNumber(3))
	variables.ObjectSet("items", items)
	ctx := exprlang.NewEvalContext(variables, time.Unix(0, 0).UTC())

	value := evalSource(t, "len(items)", ctx)
	if value.Kind() != jsonvalue.KindNumber || value.NumberValue() != 3 {
		t.Fatalf("expected 3, got %v", value.NumberValue())
	}
}

func TestEval_NowFunction(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := exprlang.NewEvalContext(jsonvalue.NewObject(), now)
	value := evalSource(t, "now()", ctx)
	if value.Kind() != jsonvalue.KindString || value.StringValue() != now.Format(time.RFC3339) {
		t.Fatalf("expected %q, got %q", now.Format(time.RFC3339), value.StringValue())
	}
}

func TestEval_VariableMissingReturnsNull(t *testing.T) {
	value := evalSource(t, "user.name", emptyContext())
	if value.Kind() != jsonvalue.KindNull {
		t.Fatalf("expected null for missing variable, got %v", value.Kind())
	}
}

func TestEval_DivisionByZeroErrors(t *testing.T) {
	expr, err := exprlang.ParseExpression("1 / 0")
	if err != nil {
		t.Fatalf("ParseExpression error: %v", err)
	}
	_, err = exprlang.Eval(expr, emptyContext())
	if err == nil {
		t.Fatal("expected division by zero to error")
	}
	var evalErr *exprlang.EvalError
	if !asEvalError(err, &evalErr) {
		t.Fatalf("expected *exprlang.EvalError, got %T", err)
	}
}

func asEvalError(err error, target **exprlang.EvalError) bool {
	evalErr, ok := err.(*exprlang.EvalError)
	if !ok {
		return false
	}
	*target = evalErr
	return true
}
