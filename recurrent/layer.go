package recurrent

import "github.com/getlantern/errors"

/*
Layer is an ordered list of cells sharing input and hidden sizes.

Only single-cell layers are used for stacking. With more than one cell every
cell sees the same input and the cells are chained only in backward; that
arrangement has no established meaning and is kept as is.
*/
type Layer struct {
	Cells []*Cell
}

/*
NewLayer allocates numCells cells.
*/
func NewLayer(numCells int, inSize int, hidSize int, r Rand) (*Layer, error) {
	if numCells < 1 {
		return nil, errors.New("recurrent: layer needs at least one cell, got %d", numCells)
	}
	layer := &Layer{Cells: make([]*Cell, numCells)}
	for i := range layer.Cells {
		cell, err := NewCell(inSize, hidSize, r)
		if err != nil {
			return nil, err
		}
		layer.Cells[i] = cell
	}
	return layer, nil
}

/*
Forward runs every cell, in order, on input.
*/
func (layer *Layer) Forward(input []float32) {
	for _, cell := range layer.Cells {
		cell.Forward(input)
	}
}

/*
Output is the hidden state the next layer or the readout consumes: the first
cell's H.
*/
func (layer *Layer) Output() []float32 {
	return layer.Cells[0].H
}

/*
Reset zeroes the state of every cell.
*/
func (layer *Layer) Reset() {
	for _, cell := range layer.Cells {
		cell.Reset()
	}
}

/*
Backward runs the cells in reverse. The last cell receives dh and dc; each
earlier cell receives only what the cell after it returned, so the DH and DC
returned here are the first cell's. DX is summed over all cells.
*/
func (layer *Layer) Backward(dh []float32, dc []float32, learningRate float32) (Gradients, error) {
	out := Gradients{DH: dh, DC: dc}
	var dx []float32
	for i := len(layer.Cells) - 1; i >= 0; i-- {
		grads, err := layer.Cells[i].Backward(out.DH, out.DC, learningRate)
		if err != nil {
			return Gradients{}, errors.Wrap(err).With("cell", i)
		}
		out.DH, out.DC = grads.DH, grads.DC
		if dx == nil {
			dx = grads.DX
			continue
		}
		for k := range dx {
			dx[k] += grads.DX[k]
		}
	}
	out.DX = dx
	return out, nil
}
