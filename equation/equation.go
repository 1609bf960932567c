// Package equation transforms channels with per-sample mathematics: free
// form expressions evaluated by an embedded Lua interpreter, or linear
// channel maps. Expressions see the input channels as variables c1..cN
// and the Lua math library.
package equation

import (
	"errors"
	"fmt"

	"github.com/Shopify/go-lua"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/signal"
)

// Expression evaluates one Lua expression per output channel, once per
// sample. Expressions are compiled during setup and run against the
// values of the current sample, so "(c1 + c2) / 2" averages the first two
// channels and "math.abs(c1)" rectifies the first.
type Expression struct {
	label string
	exprs []string

	state *lua.State
	vars  []string
	funcs []string
}

// NewExpression creates an expression node with one output channel per
// expression.
func NewExpression(label string, exprs ...string) *Expression {
	return &Expression{
		label: label,
		exprs: exprs,
	}
}

// Label returns the node name.
func (e *Expression) Label() string { return e.label }

// Inputs returns the input port count.
func (e *Expression) Inputs() int { return 1 }

// Outputs returns the output port count.
func (e *Expression) Outputs() int { return 1 }

// Setup compiles the expressions and runs them once against zeroes, so a
// malformed expression fails here and not on the first tick.
func (e *Expression) Setup(in []signal.Context) ([]signal.Context, error) {
	if len(e.exprs) == 0 {
		return nil, errors.New("no expressions")
	}
	ctx := in[0]
	e.state = lua.NewState()
	lua.Require(e.state, "_G", lua.BaseOpen, true)
	e.state.Pop(1)
	lua.Require(e.state, "math", lua.MathOpen, true)
	e.state.Pop(1)

	e.vars = make([]string, ctx.Channels)
	for ch := range e.vars {
		e.vars[ch] = fmt.Sprintf("c%d", ch+1)
	}
	e.funcs = make([]string, len(e.exprs))
	for i, expr := range e.exprs {
		if err := lua.LoadString(e.state, "return "+expr); err != nil {
			return nil, fmt.Errorf("expression %q: %w", expr, err)
		}
		e.funcs[i] = fmt.Sprintf("__expr%d", i)
		e.state.SetGlobal(e.funcs[i])
	}

	for _, name := range e.vars {
		e.state.PushNumber(0)
		e.state.SetGlobal(name)
	}
	for i, fn := range e.funcs {
		if _, err := e.call(fn); err != nil {
			return nil, fmt.Errorf("expression %q: %w", e.exprs[i], err)
		}
	}

	out := ctx.Clone()
	out.Channels = len(e.exprs)
	out.Labels = nil
	out.Unit = ""
	return []signal.Context{out}, nil
}

// Step evaluates every expression for every sample of the frame.
func (e *Expression) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	f := in[0]
	if f.IsEmpty() {
		return nil, nil
	}
	out := signal.EmptyFloat64(len(e.funcs), f.Data.Size())
	for i := 0; i < f.Data.Size(); i++ {
		for ch, name := range e.vars {
			e.state.PushNumber(f.Data[ch][i])
			e.state.SetGlobal(name)
		}
		for r, fn := range e.funcs {
			v, err := e.call(fn)
			if err != nil {
				return nil, fmt.Errorf("expression %q: %w", e.exprs[r], err)
			}
			out[r][i] = v
		}
	}
	return []signal.Frame{{Data: out, Timestamp: f.Timestamp}}, nil
}

// call runs one compiled expression against the current variables.
func (e *Expression) call(fn string) (float64, error) {
	e.state.Global(fn)
	if err := e.state.ProtectedCall(0, 1, 0); err != nil {
		return 0, err
	}
	v, ok := e.state.ToNumber(-1)
	e.state.Pop(1)
	if !ok {
		return 0, errors.New("result is not a number")
	}
	return v, nil
}

// Matrix maps input channels onto output channels by a weight matrix: one
// row per output channel, one weight per input channel. Referencing,
// re-referencing and montage derivations are all weight matrices.
type Matrix struct {
	label   string
	weights [][]float64
}

// NewMatrix creates a matrix node.
func NewMatrix(label string, weights [][]float64) *Matrix {
	return &Matrix{
		label:   label,
		weights: weights,
	}
}

// Label returns the node name.
func (m *Matrix) Label() string { return m.label }

// Inputs returns the input port count.
func (m *Matrix) Inputs() int { return 1 }

// Outputs returns the output port count.
func (m *Matrix) Outputs() int { return 1 }

// Setup checks the matrix shape against the connected stream. Every row
// must carry exactly one weight per input channel.
func (m *Matrix) Setup(in []signal.Context) ([]signal.Context, error) {
	if len(m.weights) == 0 {
		return nil, errors.New("empty matrix")
	}
	ctx := in[0]
	for r, row := range m.weights {
		if len(row) != ctx.Channels {
			return nil, fmt.Errorf("row %d has %d weights for %d channels", r, len(row), ctx.Channels)
		}
	}

	out := ctx.Clone()
	out.Channels = len(m.weights)
	out.Labels = nil
	return []signal.Context{out}, nil
}

// Step applies the weight matrix to every sample.
func (m *Matrix) Step(t sigflow.Tick, in []signal.Frame) ([]signal.Frame, error) {
	f := in[0]
	if f.IsEmpty() {
		return nil, nil
	}
	out := signal.EmptyFloat64(len(m.weights), f.Data.Size())
	for r, row := range m.weights {
		for ch, w := range row {
			if w == 0 {
				continue
			}
			for i, v := range f.Data[ch] {
				out[r][i] += w * v
			}
		}
	}
	return []signal.Frame{{Data: out, Timestamp: f.Timestamp}}, nil
}
