package jsonvalue

import "testing"

func TestValue_TruthyMatchesSpecPredicate(t *testing.T) {
	falsy := []*Value{
		NewBoolean(false),
		NewNull(),
		NewNumber(0),
		NewInt64(0),
		NewString(""),
		NewArray(),
		NewObject(),
	}
	for _, v := range falsy {
		if v.Truthy() {
			t.Errorf("expected %v (%s) to be falsy", v, v.Kind())
		}
	}

	truthy := []*Value{
		NewBoolean(true),
		NewNumber(1),
		NewString("x"),
	}
	arr := NewArray()
	arr.ArrayAppend(NewNull())
	truthy = append(truthy, arr)

	for _, v := range truthy {
		if !v.Truthy() {
			t.Errorf("expected %v (%s) to be truthy", v, v.Kind())
		}
	}
}

func TestValue_EqualCoercesNumberAndInt64(t *testing.T) {
	if !Equal(NewInt64(3), NewNumber(3)) {
		t.Fatal("expected int64 3 to equal float 3.0")
	}
	if Equal(NewInt64(3), NewNumber(3.5)) {
		t.Fatal("expected int64 3 to differ from float 3.5")
	}
}

func TestValue_ObjectPreservesInsertionOrderButSortsOnDemand(t *testing.T) {
	obj := NewObject()
	obj.ObjectSet("zebra", NewString("z"))
	obj.ObjectSet("apple", NewString("a"))

	if got := obj.ObjectKeys(); got[0] != "zebra" || got[1] != "apple" {
		t.Fatalf("expected insertion order [zebra apple], got %v", got)
	}
	if got := obj.ObjectSortedKeys(); got[0] != "apple" || got[1] != "zebra" {
		t.Fatalf("expected sorted order [apple zebra], got %v", got)
	}
}

func TestValue_CloneIsDeepAndIndependent(t *testing.T) {
	obj := NewObject()
	inner := NewArray()
	inner.ArrayAppend(NewInt64(1))
	obj.ObjectSet("list", inner)

	clone := Clone(obj)
	clone.ObjectGet("list").ArrayAppend(NewInt64(2))

	if obj.ObjectGet("list").ArrayLen() != 1 {
		t.Fatalf("expected original array untouched, got len %d", obj.ObjectGet("list").ArrayLen())
	}
	if clone.ObjectGet("list").ArrayLen() != 2 {
		t.Fatalf("expected clone array to grow, got len %d", clone.ObjectGet("list").ArrayLen())
	}
}

func TestParseNumericLiteral_PrefersInt64ThenFloat(t *testing.T) {
	v, ok := ParseNumericLiteral("42")
	if !ok || v.Kind() != KindInt64 || v.Int64Value() != 42 {
		t.Fatalf("expected int64 42, got %v ok=%v", v, ok)
	}

	v, ok = ParseNumericLiteral("3.5")
	if !ok || v.Kind() != KindNumber || v.NumberValue() != 3.5 {
		t.Fatalf("expected float 3.5, got %v ok=%v", v, ok)
	}

	if _, ok := ParseNumericLiteral("not-a-number"); ok {
		t.Fatal("expected failure for non-numeric text")
	}
}

func TestValue_MarshalJSONRoundTripsObjectAndArray(t *testing.T) {
	obj := NewObject()
	obj.ObjectSet("name", NewString("Text"))
	arr := NewArray()
	arr.ArrayAppend(NewInt64(1))
	arr.ArrayAppend(NewBoolean(true))
	obj.ObjectSet("values", arr)

	data, err := obj.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded Value
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.ObjectGet("name").StringValue() != "Text" {
		t.Fatalf("expected name Text, got %v", decoded.ObjectGet("name"))
	}
	if decoded.ObjectGet("values").ArrayGet(0).Int64Value() != 1 {
		t.Fatalf("expected first value 1, got %v", decoded.ObjectGet("values").ArrayGet(0))
	}
}
