package recurrent

import (
	"github.com/getlantern/errors"
	"github.com/ruffrey/sine-lstm-go/mat32"
)

/*
Gate holds the parameters of one LSTM gate: W maps the input to the gate
(hidden x input), U maps the previous hidden state to the gate
(hidden x hidden) and B is the bias (hidden x 1).
*/
type Gate struct {
	W *mat32.Mat
	U *mat32.Mat
	B *mat32.Mat
}

func newGate(inSize int, hidSize int, r Rand) (g Gate, err error) {
	if g.W, err = mat32.RandMat(hidSize, inSize, heInit(r), inSize); err != nil {
		return g, err
	}
	if g.U, err = mat32.RandMat(hidSize, hidSize, heInit(r), hidSize); err != nil {
		return g, err
	}
	if g.B, err = mat32.NewMat(hidSize, 1); err != nil {
		return g, err
	}
	return g, nil
}

func (g Gate) clone() Gate {
	return Gate{W: g.W.Clone(), U: g.U.Clone(), B: g.B.Clone()}
}

// preActivation is b[j] + W[j,:]·input + U[j,:]·h.
func (g Gate) preActivation(j int, input []float32, h []float32) float32 {
	sum := g.B.W[j]
	w := g.W.Row(j)
	for k := range input {
		sum += w[k] * input[k]
	}
	u := g.U.Row(j)
	for k := range h {
		sum += u[k] * h[k]
	}
	return sum
}

// backward pushes the pre-activation gradient of unit j into dx and dh, then
// steps the weights. Every dx/dh contribution reads the weight before it is
// updated.
func (g Gate) backward(j int, pre float32, s *step, grads *Gradients, learningRate float32) {
	w := g.W.Row(j)
	for k, x := range s.input {
		grads.DX[k] += pre * w[k]
		update(&w[k], pre*x, learningRate)
	}
	u := g.U.Row(j)
	for k, h := range s.hPrev {
		grads.DH[k] += pre * u[k]
		update(&u[k], pre*h, learningRate)
	}
	update(&g.B.W[j], pre, learningRate)
}

/*
Gradients flowing out of a backward call: DH and DC are with respect to the
hidden and cell state the cell held before the matching forward, DX with
respect to the forward input.
*/
type Gradients struct {
	DH []float32
	DC []float32
	DX []float32
}

// step is what a forward call saw and produced, kept for backward.
type step struct {
	input []float32
	hPrev []float32
	cPrev []float32

	f     []float32
	i     []float32
	o     []float32
	g     []float32 // candidate
	tanhC []float32
}

/*
Cell is a single LSTM unit: four gates and the recurrent state H and C,
carried across forward calls until Reset.
*/
type Cell struct {
	InSize  int
	HidSize int

	Forget    Gate
	Input     Gate
	Candidate Gate
	Output    Gate

	H []float32
	C []float32

	last *step
}

/*
NewCell allocates a cell with He-scaled weights, zero biases except the
forget gate bias which starts at 1, and zero state.
*/
func NewCell(inSize int, hidSize int, r Rand) (*Cell, error) {
	if inSize < 1 || hidSize < 1 {
		return nil, errors.New("recurrent: invalid cell size in=%d hidden=%d", inSize, hidSize)
	}
	var err error
	cell := &Cell{InSize: inSize, HidSize: hidSize}
	for _, g := range []*Gate{&cell.Forget, &cell.Input, &cell.Candidate, &cell.Output} {
		if *g, err = newGate(inSize, hidSize, r); err != nil {
			return nil, err
		}
	}
	if cell.H, err = mat32.Zeros(hidSize); err != nil {
		return nil, err
	}
	if cell.C, err = mat32.Zeros(hidSize); err != nil {
		return nil, err
	}
	for j := range cell.Forget.B.W {
		cell.Forget.B.W[j] = 1
	}
	return cell, nil
}

/*
Reset zeroes H and C and drops any pending forward step.
*/
func (cell *Cell) Reset() {
	for j := range cell.H {
		cell.H[j] = 0
		cell.C[j] = 0
	}
	cell.last = nil
}

/*
Clone makes a deep copy of the parameters and state, including a pending
forward step.
*/
func (cell *Cell) Clone() *Cell {
	c := &Cell{
		InSize:    cell.InSize,
		HidSize:   cell.HidSize,
		Forget:    cell.Forget.clone(),
		Input:     cell.Input.clone(),
		Candidate: cell.Candidate.clone(),
		Output:    cell.Output.clone(),
		H:         append([]float32(nil), cell.H...),
		C:         append([]float32(nil), cell.C...),
		last:      cell.last, // never mutated once recorded
	}
	return c
}

/*
Forward runs one time step on input, which must have InSize elements, and
replaces H and C with the new state.
*/
func (cell *Cell) Forward(input []float32) {
	n := cell.HidSize
	s := &step{
		input: append([]float32(nil), input...),
		hPrev: append([]float32(nil), cell.H...),
		cPrev: append([]float32(nil), cell.C...),
		f:     make([]float32, n),
		i:     make([]float32, n),
		o:     make([]float32, n),
		g:     make([]float32, n),
		tanhC: make([]float32, n),
	}
	for j := 0; j < n; j++ {
		s.f[j] = Sigmoid(cell.Forget.preActivation(j, s.input, s.hPrev))
	}
	for j := 0; j < n; j++ {
		s.i[j] = Sigmoid(cell.Input.preActivation(j, s.input, s.hPrev))
	}
	for j := 0; j < n; j++ {
		s.o[j] = Sigmoid(cell.Output.preActivation(j, s.input, s.hPrev))
	}
	for j := 0; j < n; j++ {
		s.g[j] = Tanh(cell.Candidate.preActivation(j, s.input, s.hPrev))
	}

	cNext := make([]float32, n)
	hNext := make([]float32, n)
	for j := 0; j < n; j++ {
		cNext[j] = s.f[j]*s.cPrev[j] + s.i[j]*s.g[j]
		s.tanhC[j] = Tanh(cNext[j])
		hNext[j] = s.o[j] * s.tanhC[j]
	}
	cell.C = cNext
	cell.H = hNext
	cell.last = s
}

/*
Backward takes the gradient of the loss with respect to the H and C produced
by the last Forward, updates every weight by plain SGD and returns the
gradients for the previous state and the input. dh and dc are not modified.

Backward consumes the forward step: calling it twice without a Forward in
between is an error.
*/
func (cell *Cell) Backward(dh []float32, dc []float32, learningRate float32) (Gradients, error) {
	s := cell.last
	if s == nil {
		return Gradients{}, errors.New("recurrent: backward without a matching forward step")
	}
	cell.last = nil

	n := cell.HidSize
	grads := Gradients{
		DH: make([]float32, n),
		DC: make([]float32, n),
		DX: make([]float32, cell.InSize),
	}

	dC := make([]float32, n)
	dO := make([]float32, n)
	dI := make([]float32, n)
	dF := make([]float32, n)
	dG := make([]float32, n)
	for j := 0; j < n; j++ {
		// through h = o * tanh(c)
		dO[j] = dh[j] * s.tanhC[j]
		dC[j] = dc[j] + dh[j]*s.o[j]*(1-s.tanhC[j]*s.tanhC[j])

		// through c = f * cPrev + i * g
		dG[j] = dC[j] * s.i[j]
		dI[j] = dC[j] * s.g[j]
		dF[j] = dC[j] * s.cPrev[j]
		grads.DC[j] = dC[j] * s.f[j]
	}

	sigmoidGates := []struct {
		gate Gate
		d    []float32
		act  []float32
	}{
		{cell.Forget, dF, s.f},
		{cell.Input, dI, s.i},
		{cell.Output, dO, s.o},
	}
	for _, sg := range sigmoidGates {
		for j := 0; j < n; j++ {
			pre := sg.d[j] * sg.act[j] * (1 - sg.act[j])
			sg.gate.backward(j, pre, s, &grads, learningRate)
		}
	}
	for j := 0; j < n; j++ {
		pre := dG[j] * (1 - s.g[j]*s.g[j])
		cell.Candidate.backward(j, pre, s, &grads, learningRate)
	}

	return grads, nil
}
