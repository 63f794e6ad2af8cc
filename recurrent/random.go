package recurrent

import (
	"github.com/chewxy/math32"
	"github.com/ruffrey/sine-lstm-go/mat32"
)

/*
Rand is the random source weights are initialized from. *rand.Rand from
math/rand and from golang.org/x/exp/rand both satisfy it, so callers pick
the seed.
*/
type Rand interface {
	Float64() float64
}

/*
HeInit draws one sample of U(0,1) * sqrt(2/fanIn).

This is not the usual zero-centered normal He initialization: samples are
always non-negative.
*/
func HeInit(r Rand, fanIn int) float32 {
	return float32(r.Float64()) * math32.Sqrt(2/float32(fanIn))
}

func heInit(r Rand) mat32.InitFunc {
	return func(fanIn int) float32 {
		return HeInit(r, fanIn)
	}
}
