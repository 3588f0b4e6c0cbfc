package semantic

import "testing"

func TestRectangleDimensions(t *testing.T) {
	r := Rectangle{LLX: 10, LLY: 5, URX: 300, URY: 105}
	if got := r.Width(); got != 290 {
		t.Errorf("Width = %v, want 290", got)
	}
	if got := r.Height(); got != 100 {
		t.Errorf("Height = %v, want 100", got)
	}
}

func TestArrayOperandNesting(t *testing.T) {
	arr := ArrayOperand{Values: []Operand{
		NumberOperand{Value: 2},
		NameOperand{Value: "Im0"},
	}}
	if len(arr.Values) != 2 {
		t.Fatalf("expected 2 nested operands, got %d", len(arr.Values))
	}
	n, ok := arr.Values[0].(NumberOperand)
	if !ok || n.Value != 2 {
		t.Errorf("first operand = %#v, want NumberOperand{2}", arr.Values[0])
	}
}
