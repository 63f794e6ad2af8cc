package recurrent

import "github.com/getlantern/errors"

/*
Network is a stack of single-cell LSTM layers topped by a linear readout.
Layer 0 reads the network input; layer d reads layer d-1's output.
*/
type Network struct {
	InputSize  int
	HiddenSize int
	Layers     []*Layer
	Out        *Readout
}

/*
NewNetwork initializes numLayers layers and the readout, drawing every
weight from r.
*/
func NewNetwork(inputSize int, hiddenSize int, numLayers int, r Rand) (*Network, error) {
	if numLayers < 1 {
		return nil, errors.New("recurrent: network needs at least one layer, got %d", numLayers)
	}
	net := &Network{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		Layers:     make([]*Layer, numLayers),
	}
	prevSize := inputSize
	for d := range net.Layers { // loop over depths
		layer, err := NewLayer(1, prevSize, hiddenSize, r)
		if err != nil {
			return nil, err
		}
		net.Layers[d] = layer
		prevSize = hiddenSize
	}
	out, err := NewReadout(hiddenSize, r)
	if err != nil {
		return nil, err
	}
	net.Out = out
	return net, nil
}

/*
Reset zeroes the recurrent state of every layer. Call it before each
independent sequence.
*/
func (net *Network) Reset() {
	for _, layer := range net.Layers {
		layer.Reset()
	}
}

/*
Hidden is the top layer's output.
*/
func (net *Network) Hidden() []float32 {
	return net.Layers[len(net.Layers)-1].Output()
}

/*
Forward advances every layer by one time step and returns the prediction.
*/
func (net *Network) Forward(input []float32) float32 {
	x := input
	for _, layer := range net.Layers {
		layer.Forward(x)
		x = layer.Output()
	}
	return net.Out.Forward(x)
}

/*
Backward propagates outGrad, the loss gradient at the prediction of the last
Forward, down through the layers, updating them, and then updates the
readout. The readout's gradient is taken before its weights move.

Each layer's input gradient becomes the hidden gradient of the layer below.
Gradients do not cross time steps.
*/
func (net *Network) Backward(outGrad float32, learningRate float32) error {
	dh := net.Out.Backward(outGrad)
	for d := len(net.Layers) - 1; d >= 0; d-- {
		dc := make([]float32, len(dh))
		grads, err := net.Layers[d].Backward(dh, dc, learningRate)
		if err != nil {
			return errors.Wrap(err).With("layer", d)
		}
		dh = grads.DX
	}
	net.Out.Update(net.Hidden(), outGrad, learningRate)
	return nil
}
