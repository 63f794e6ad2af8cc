package recurrent

import "github.com/chewxy/math32"

/*
Sigmoid is the logistic function. It is not clamped; large negative inputs
saturate to 0 through ordinary float32 behavior.
*/
func Sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}

/*
Tanh is the hyperbolic tangent.
*/
func Tanh(x float32) float32 {
	return math32.Tanh(x)
}
