package recurrent

import (
	"github.com/getlantern/errors"
	"github.com/ruffrey/sine-lstm-go/mat32"
)

/*
Readout maps a hidden vector to a scalar: b + W·h. No activation.
*/
type Readout struct {
	W []float32
	B float32
}

/*
NewReadout allocates a readout with He-scaled W and a zero bias.
*/
func NewReadout(inSize int, r Rand) (*Readout, error) {
	if inSize < 1 {
		return nil, errors.New("recurrent: invalid readout size %d", inSize)
	}
	w, err := mat32.Fill(inSize, heInit(r), inSize)
	if err != nil {
		return nil, err
	}
	return &Readout{W: w}, nil
}

/*
Forward computes the prediction.
*/
func (out *Readout) Forward(input []float32) float32 {
	result := out.B
	for k := range input {
		result += out.W[k] * input[k]
	}
	return result
}

/*
Backward returns the gradient with respect to the input, outGrad * W, using
the current (not yet updated) weights.
*/
func (out *Readout) Backward(outGrad float32) []float32 {
	dh := make([]float32, len(out.W))
	for k, w := range out.W {
		dh[k] = outGrad * w
	}
	return dh
}

/*
Update steps W and B given the input the prediction was made from.
*/
func (out *Readout) Update(input []float32, outGrad float32, learningRate float32) {
	for k := range out.W {
		update(&out.W[k], outGrad*input[k], learningRate)
	}
	update(&out.B, outGrad, learningRate)
}
