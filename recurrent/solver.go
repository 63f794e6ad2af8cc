package recurrent

// update is a plain gradient descent step on one weight.
func update(weight *float32, grad float32, learningRate float32) {
	*weight -= learningRate * grad
}
