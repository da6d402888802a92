package numeric

import "math"

// Tape owns a reverse-mode autodiff graph. Every Dual produced from a
// method call on another Dual on the same tape is appended to nodes in
// creation order; because an operation's operands must already exist before
// the operation runs, creation order is always a valid topological order,
// which is what Backward relies on to avoid an explicit sort.
type Tape struct {
	nodes []*Dual
}

// NewTape returns an empty autodiff tape.
func NewTape() *Tape {
	return &Tape{}
}

// Param creates a tracked leaf node (a trainable parameter) on the tape.
func (t *Tape) Param(v float64) *Dual {
	d := &Dual{value: v, tape: t}
	t.nodes = append(t.nodes, d)
	return d
}

// Backward runs reverse-mode accumulation from out back to every parameter
// reachable on this tape, leaving the resulting partials in each node's Grad.
// It resets every node's gradient to 0 first, so it is safe to call again
// after the tape has accumulated more nodes for a different output.
func (t *Tape) Backward(out *Dual) {
	for _, n := range t.nodes {
		n.grad = 0
	}
	out.grad = 1
	for i := len(t.nodes) - 1; i >= 0; i-- {
		n := t.nodes[i]
		if n.grad == 0 {
			continue
		}
		for j, p := range n.parents {
			p.grad += n.localGrads[j] * n.grad
		}
	}
}

// Reset drops every recorded node, freeing the graph. Call between
// mini-batches once gradients have been read and applied.
func (t *Tape) Reset() {
	t.nodes = t.nodes[:0]
}

// Dual is a reverse-mode differentiable scalar: a value plus, after
// Tape.Backward, the accumulated partial derivative of some scalar output
// with respect to it.
type Dual struct {
	value      float64
	grad       float64
	tape       *Tape
	parents    []*Dual
	localGrads []float64
}

var _ Scalar[*Dual] = (*Dual)(nil)

// Grad returns the gradient accumulated by the most recent Tape.Backward.
func (d *Dual) Grad() float64 { return d.grad }

// Detach returns a fresh leaf node carrying d's current value but severed
// from the graph that produced it — gradients no longer flow back through
// whatever computed d. Used between mini-batches to bound tape memory while
// letting a card's running stability/difficulty survive to the next step.
func (d *Dual) Detach() *Dual {
	return d.tape.Param(d.value)
}

func (d *Dual) record(value float64, parents []*Dual, localGrads []float64) *Dual {
	n := &Dual{value: value, tape: d.tape, parents: parents, localGrads: localGrads}
	d.tape.nodes = append(d.tape.nodes, n)
	return n
}

func (d *Dual) Add(o *Dual) *Dual {
	return d.record(d.value+o.value, []*Dual{d, o}, []float64{1, 1})
}

func (d *Dual) Sub(o *Dual) *Dual {
	return d.record(d.value-o.value, []*Dual{d, o}, []float64{1, -1})
}

func (d *Dual) Mul(o *Dual) *Dual {
	return d.record(d.value*o.value, []*Dual{d, o}, []float64{o.value, d.value})
}

func (d *Dual) Div(o *Dual) *Dual {
	inv := 1 / o.value
	return d.record(d.value*inv, []*Dual{d, o}, []float64{inv, -d.value * inv * inv})
}

func (d *Dual) Neg() *Dual {
	return d.record(-d.value, []*Dual{d}, []float64{-1})
}

func (d *Dual) Exp() *Dual {
	e := math.Exp(d.value)
	return d.record(e, []*Dual{d}, []float64{e})
}

func (d *Dual) Log() *Dual {
	return d.record(math.Log(d.value), []*Dual{d}, []float64{1 / d.value})
}

// Pow raises d to the power exp, propagating gradient into both operands:
// the kernel trains parameters that appear in exponent position (the decay
// and several weights), so exp's partial cannot be dropped.
func (d *Dual) Pow(exp *Dual) *Dual {
	p := math.Pow(d.value, exp.value)
	var dBase float64
	if d.value != 0 {
		dBase = exp.value * p / d.value
	}
	var dExp float64
	if d.value > 0 {
		dExp = p * math.Log(d.value)
	}
	return d.record(p, []*Dual{d, exp}, []float64{dBase, dExp})
}

func (d *Dual) Max(o *Dual) *Dual {
	if d.value >= o.value {
		return d.record(d.value, []*Dual{d, o}, []float64{1, 0})
	}
	return d.record(o.value, []*Dual{d, o}, []float64{0, 1})
}

func (d *Dual) Min(o *Dual) *Dual {
	if d.value <= o.value {
		return d.record(d.value, []*Dual{d, o}, []float64{1, 0})
	}
	return d.record(o.value, []*Dual{d, o}, []float64{0, 1})
}

func (d *Dual) Clamp(lo, hi *Dual) *Dual {
	return d.Max(lo).Min(hi)
}

// Lift creates a constant on d's tape. Constants have no parents, so
// gradient that Backward accumulates into them goes no further.
func (d *Dual) Lift(v float64) *Dual {
	return d.tape.Param(v)
}

func (d *Dual) Float64() float64 { return d.value }
