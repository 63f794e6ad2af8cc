package recurrent

/*
SquaredError returns (pred-target)^2 and its derivative with respect to pred.
*/
func SquaredError(pred float32, target float32) (loss float32, grad float32) {
	diff := pred - target
	return diff * diff, 2 * diff
}
