package main

import "fmt"

// constFolder evaluates a left-associative, no-precedence chain of
// values joined by '+', '-', '*', '/', '%', '&', '|', '^', "<<", ">>",
// or a leading '~' negation toggle, mirroring the spec's
// acc/pending_op/negate_next state machine. The caller turns each
// constant or known symbol into a number before calling Feed; an
// unresolved symbol is reported as an UnresolvedSymbolError by the
// caller, not here.
type constFolder struct {
	acc       int64
	pendingOp string // "", "+", "-", "*", "/", "%", "&", "|", "^", "<<", ">>"
	negate    bool
	started   bool
}

func newConstFolder() *constFolder {
	return &constFolder{}
}

// Feed consumes one numeric value (already resolved from either a
// literal constant or a symbol address) and applies it against the
// accumulator using whatever operator is pending. An operator pending
// before the first value applies to an accumulator of zero, so a
// leading '-' negates it. It fails if no operator is pending and this
// isn't the first value fed.
func (f *constFolder) Feed(v int64) error {
	if f.negate {
		v = ^v
		f.negate = false
	}
	if !f.started {
		f.started = true
		if f.pendingOp == "" {
			f.acc = v
			return nil
		}
	}
	if f.pendingOp == "" {
		return fmt.Errorf("operand %d has no pending operator", v)
	}
	switch f.pendingOp {
	case "+":
		f.acc += v
	case "-":
		f.acc -= v
	case "*":
		f.acc *= v
	case "/":
		if v == 0 {
			return fmt.Errorf("division by zero")
		}
		f.acc /= v
	case "%":
		if v == 0 {
			return fmt.Errorf("modulo by zero")
		}
		f.acc %= v
	case "&":
		f.acc &= v
	case "|":
		f.acc |= v
	case "^":
		f.acc ^= v
	case "<<":
		f.acc <<= uint(v)
	case ">>":
		f.acc >>= uint(v)
	}
	f.pendingOp = ""
	return nil
}

// Op registers a pending binary operator, or — for '~' — toggles the
// negate-next-operand flag instead of consuming a binary slot. It
// fails if a binary operator arrives while one is already pending.
func (f *constFolder) Op(op string) error {
	if op == "~" {
		f.negate = !f.negate
		return nil
	}
	if f.pendingOp != "" {
		return fmt.Errorf("operator %q follows operator %q with no operand between them", op, f.pendingOp)
	}
	f.pendingOp = op
	return nil
}

func (f *constFolder) Result() int64 { return f.acc }
