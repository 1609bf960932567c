package filter

import (
	"fmt"
	"math"
)

// LowPassFIR designs a windowed-sinc low-pass FIR with a Hamming window
// and unity DC gain. cutoff is the corner frequency in Hz at sample rate
// fs.
func LowPassFIR(taps int, cutoff, fs float64) (FIR, error) {
	if taps < 1 {
		return FIR{}, fmt.Errorf("tap count %d, want at least 1", taps)
	}
	if cutoff <= 0 || cutoff >= fs/2 {
		return FIR{}, fmt.Errorf("cutoff %v outside (0, %v)", cutoff, fs/2)
	}
	fc := cutoff / fs
	m := float64(taps - 1)
	h := make([]float64, taps)
	sum := 0.0
	for i := range h {
		x := float64(i) - m/2
		if x == 0 {
			h[i] = 2 * fc
		} else {
			h[i] = math.Sin(2*math.Pi*fc*x) / (math.Pi * x)
		}
		if m > 0 {
			h[i] *= 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/m)
		}
		sum += h[i]
	}
	for i := range h {
		h[i] /= sum
	}
	return FIR{Taps: h}, nil
}

// MovingAverage designs an n-point averaging FIR.
func MovingAverage(n int) (FIR, error) {
	if n < 1 {
		return FIR{}, fmt.Errorf("window %d, want at least 1", n)
	}
	taps := make([]float64, n)
	for i := range taps {
		taps[i] = 1 / float64(n)
	}
	return FIR{Taps: taps}, nil
}

// LowPass designs a Butterworth low-pass of even order as a biquad
// cascade. cutoff is the corner frequency in Hz at sample rate fs.
func LowPass(order int, cutoff, fs float64) (Cascade, error) {
	return butterworth(order, cutoff, fs, false)
}

// HighPass designs a Butterworth high-pass of even order as a biquad
// cascade.
func HighPass(order int, cutoff, fs float64) (Cascade, error) {
	return butterworth(order, cutoff, fs, true)
}

// BandPass combines a high-pass at low and a low-pass at high, each of
// the given order.
func BandPass(order int, low, high, fs float64) (Cascade, error) {
	if low >= high {
		return nil, fmt.Errorf("band edges %v..%v inverted", low, high)
	}
	hp, err := HighPass(order, low, fs)
	if err != nil {
		return nil, err
	}
	lp, err := LowPass(order, high, fs)
	if err != nil {
		return nil, err
	}
	return append(hp, lp...), nil
}

// butterworth realizes the classic maximally flat response as cascaded
// second-order sections. Section Q values come from the Butterworth pole
// angles: Q(k) = 1 / (2 sin((2k-1)π/2n)).
func butterworth(order int, cutoff, fs float64, highpass bool) (Cascade, error) {
	if order < 2 || order%2 != 0 {
		return nil, fmt.Errorf("order %d, want even and at least 2", order)
	}
	if cutoff <= 0 || cutoff >= fs/2 {
		return nil, fmt.Errorf("cutoff %v outside (0, %v)", cutoff, fs/2)
	}
	n := order / 2
	cascade := make(Cascade, 0, n)
	for k := 1; k <= n; k++ {
		q := 1 / (2 * math.Sin(float64(2*k-1)*math.Pi/float64(2*order)))
		cascade = append(cascade, section(cutoff, fs, q, highpass))
	}
	return cascade, nil
}

// section computes one second-order section from cutoff and Q.
func section(cutoff, fs, q float64, highpass bool) Biquad {
	w0 := 2 * math.Pi * cutoff / fs
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha
	b := Biquad{
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}
	if highpass {
		b.B0 = (1 + cosw) / 2 / a0
		b.B1 = -(1 + cosw) / a0
		b.B2 = (1 + cosw) / 2 / a0
	} else {
		b.B0 = (1 - cosw) / 2 / a0
		b.B1 = (1 - cosw) / a0
		b.B2 = (1 - cosw) / 2 / a0
	}
	return b
}
