package config

import (
	"fmt"

	"github.com/sigflow/sigflow"
	"github.com/sigflow/sigflow/equation"
	"github.com/sigflow/sigflow/filter"
	"github.com/sigflow/sigflow/flow"
	"github.com/sigflow/sigflow/signal"
	"github.com/sigflow/sigflow/source"
	"github.com/sigflow/sigflow/writer"
)

// Default returns a registry with every builtin node type bound.
func Default() *Registry {
	r := NewRegistry()
	builtins := map[string]Builder{
		"generator":  buildGenerator,
		"wav-source": buildWAVSource,
		"filter":     buildFilter,
		"equation":   buildEquation,
		"matrix":     buildMatrix,
		"framer":     buildFramer,
		"decimator":  buildDecimator,
		"router":     buildRouter,
		"hold":       buildHold,
		"trigger":    buildTrigger,
		"csv-writer": buildCSVWriter,
		"wav-writer": buildWAVWriter,
	}
	for nodeType, builder := range builtins {
		// the table has unique literal keys, Register cannot reject them
		if err := r.Register(nodeType, builder); err != nil {
			panic(err)
		}
	}
	return r
}

// reader reads typed parameters and keeps the first error, so builders
// can read a whole block and check once.
type reader struct {
	p   Params
	err error
}

func (r *reader) keep(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *reader) float(key string, fallback float64) float64 {
	v, err := r.p.Float(key, fallback)
	r.keep(err)
	return v
}

func (r *reader) integer(key string, fallback int) int {
	v, err := r.p.Int(key, fallback)
	r.keep(err)
	return v
}

func (r *reader) str(key, fallback string) string {
	v, err := r.p.String(key, fallback)
	r.keep(err)
	return v
}

func (r *reader) boolean(key string, fallback bool) bool {
	v, err := r.p.Bool(key, fallback)
	r.keep(err)
	return v
}

func (r *reader) floats(key string) []float64 {
	v, err := r.p.Floats(key)
	r.keep(err)
	return v
}

func (r *reader) ints(key string) []int {
	v, err := r.p.Ints(key)
	r.keep(err)
	return v
}

func (r *reader) strings(key string) []string {
	v, err := r.p.Strings(key)
	r.keep(err)
	return v
}

func (r *reader) rows(key string) [][]float64 {
	v, err := r.p.Rows(key)
	r.keep(err)
	return v
}

func buildGenerator(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	rate := params.float("rate", 0)
	frameSize := params.integer("frame_size", 1)
	channels := params.integer("channels", 1)
	waveName := params.str("wave", "sine")
	freq := params.float("frequency", 10)
	amplitude := params.float("amplitude", 1)
	limit := params.integer("limit", 0)
	phases := params.floats("phases")
	if params.err != nil {
		return nil, params.err
	}
	var wave source.Wave
	switch waveName {
	case "sine":
		wave = source.Sine(freq, amplitude)
	case "square":
		wave = source.Square(freq, amplitude)
	case "noise":
		wave = source.Noise(amplitude)
	default:
		return nil, fmt.Errorf("unknown wave %q", waveName)
	}
	var options []source.GeneratorOption
	if limit > 0 {
		options = append(options, source.Limit(limit))
	}
	if phases != nil {
		options = append(options, source.Phase(phases...))
	}
	return source.NewGenerator(name, rate, frameSize, channels, wave, options...), nil
}

func buildWAVSource(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	path := params.str("path", "")
	frameSize := params.integer("frame_size", 512)
	if params.err != nil {
		return nil, params.err
	}
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return source.NewWAV(name, path, frameSize)
}

func buildFilter(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	design := params.str("design", "")
	order := params.integer("order", 2)
	rate := params.float("rate", 0)
	cutoff := params.float("cutoff", 0)
	low := params.float("low", 0)
	high := params.float("high", 0)
	window := params.integer("window", 0)
	taps := params.integer("taps", 0)
	coefficients := params.floats("coefficients")
	if params.err != nil {
		return nil, params.err
	}
	var (
		realization filter.Realization
		err         error
	)
	switch design {
	case "lowpass":
		realization, err = filter.LowPass(order, cutoff, rate)
	case "highpass":
		realization, err = filter.HighPass(order, cutoff, rate)
	case "bandpass":
		realization, err = filter.BandPass(order, low, high, rate)
	case "moving-average":
		realization, err = filter.MovingAverage(window)
	case "lowpass-fir":
		realization, err = filter.LowPassFIR(taps, cutoff, rate)
	case "fir":
		realization = filter.FIR{Taps: coefficients}
	default:
		return nil, fmt.Errorf("unknown filter design %q", design)
	}
	if err != nil {
		return nil, err
	}
	return filter.New(name, realization), nil
}

func buildEquation(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	exprs := params.strings("expressions")
	if params.err != nil {
		return nil, params.err
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("expressions are required")
	}
	return equation.NewExpression(name, exprs...), nil
}

func buildMatrix(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	weights := params.rows("weights")
	if params.err != nil {
		return nil, params.err
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("weights are required")
	}
	return equation.NewMatrix(name, weights), nil
}

func buildFramer(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	size := params.integer("size", 0)
	stride := params.integer("stride", 0)
	partial := params.boolean("finalize_partial", false)
	if params.err != nil {
		return nil, params.err
	}
	var options []flow.FramerOption
	if partial {
		options = append(options, flow.FinalizePartial())
	}
	return flow.NewFramer(name, size, stride, options...), nil
}

func buildDecimator(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	ratio := params.integer("ratio", 0)
	if params.err != nil {
		return nil, params.err
	}
	antialias, err := flow.AntiAlias(ratio)
	if err != nil {
		return nil, err
	}
	return flow.NewDecimator(name, ratio, antialias), nil
}

func buildRouter(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	mode := params.str("mode", "sync")
	capacity := params.integer("capacity", 16)
	inputChannels := params.ints("input_channels")
	outputChannels := params.ints("output_channels")
	if params.err != nil {
		return nil, params.err
	}
	var propagation flow.Propagation
	switch mode {
	case "sync":
		propagation = flow.Sync()
	case "async":
		propagation = flow.Async(capacity)
	default:
		return nil, fmt.Errorf("unknown router mode %q", mode)
	}
	return flow.NewRouter(name, propagation, inputChannels, outputChannels), nil
}

func buildHold(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	rate := params.float("rate", 0)
	policyName := params.str("policy", "hold-last")
	if params.err != nil {
		return nil, params.err
	}
	var policy flow.HoldPolicy
	switch policyName {
	case "hold-last":
		policy = flow.HoldLast
	case "zero-fill":
		policy = flow.ZeroFill
	default:
		return nil, fmt.Errorf("unknown hold policy %q", policyName)
	}
	return flow.NewHold(name, rate, policy), nil
}

func buildTrigger(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	pre := params.integer("pre", 0)
	post := params.integer("post", 0)
	channel := params.integer("channel", 0)
	threshold := params.float("threshold", 0)
	if params.err != nil {
		return nil, params.err
	}
	return flow.NewTrigger(name, pre, post, flow.Rising(channel, threshold)), nil
}

func buildCSVWriter(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	path := params.str("path", "")
	queue := params.integer("queue", 0)
	if params.err != nil {
		return nil, params.err
	}
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	var options []writer.WriterOption
	if queue > 0 {
		options = append(options, writer.QueueCapacity(queue))
	}
	return writer.New(name, writer.NewCSV(path), options...), nil
}

func buildWAVWriter(name string, p Params) (sigflow.Node, error) {
	params := reader{p: p}
	path := params.str("path", "")
	depth := params.integer("depth", 16)
	queue := params.integer("queue", 0)
	if params.err != nil {
		return nil, params.err
	}
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	var options []writer.WriterOption
	if queue > 0 {
		options = append(options, writer.QueueCapacity(queue))
	}
	return writer.New(name, writer.NewWAV(path, signal.BitDepth(depth)), options...), nil
}
