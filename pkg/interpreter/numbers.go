package interpreter

import "fmt"

// Numeric supplies the arithmetic the dispatch loop delegates to. ADD and EQ
// pop a (the top) then b and call Add(a, b) / Eq(a, b) in that order.
type Numeric interface {
	Add(a, b Value) (Value, error)
	Eq(a, b Value) (Value, error)
}

// IntegerArithmetic is the default Numeric over Integer values.
type IntegerArithmetic struct{}

// Add sums two integers; overflow wraps.
func (IntegerArithmetic) Add(a, b Value) (Value, error) {
	x, ok1 := a.(Integer)
	y, ok2 := b.(Integer)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("cannot add %s and %s", TypeName(a), TypeName(b))
	}
	return x + y, nil
}

// Eq compares integers by value and everything else by identity.
func (IntegerArithmetic) Eq(a, b Value) (Value, error) {
	if x, ok := a.(Integer); ok {
		if y, ok := b.(Integer); ok {
			return Bool(x == y), nil
		}
	}
	return Bool(a == b), nil
}
