/*
Package sine generates the training series: a sine wave squashed into [0, 1].
*/
package sine

import "github.com/chewxy/math32"

// DefaultFreq is the angular step per time index.
const DefaultFreq = 0.01

/*
Wave samples (sin(t*Freq) + 1) / 2 at integer time indexes.
*/
type Wave struct {
	Freq float32
}

/*
New returns a Wave with DefaultFreq.
*/
func New() Wave {
	return Wave{Freq: DefaultFreq}
}

/*
Value is the sample at time index t. It is a pure function of t.
*/
func (w Wave) Value(t int) float32 {
	return (math32.Sin(float32(t)*w.Freq) + 1) / 2
}
