package mat32

import (
	"fmt"
	"math"

	"github.com/getlantern/errors"
)

// maxElements caps a single allocation at 16 GiB of float32 values; anything
// larger is reported as out of memory without asking the runtime.
const maxElements uint64 = 1 << 32

/*
OutOfMemoryError is returned when an array cannot be allocated.
*/
type OutOfMemoryError struct {
	Elements int
}

func (e *OutOfMemoryError) Error() string {
	if e.Elements < 0 {
		return "mat32: out of memory (size overflows int)"
	}
	return fmt.Sprintf("mat32: out of memory allocating %d float32 values", e.Elements)
}

/*
IsOutOfMemory reports whether err is an allocation failure from this package.
*/
func IsOutOfMemory(err error) bool {
	_, ok := err.(*OutOfMemoryError)
	return ok
}

/*
InitFunc produces one initial value for a slot, given the fan-in of the
unit the slot feeds.
*/
type InitFunc func(fanIn int) float32

/*
Mat holds a row-major matrix. Element (row, col) lives at W[row*ColumnCount+col].
*/
type Mat struct {
	RowCount    int
	ColumnCount int
	W           []float32
}

/*
Size multiplies rows by cols, reporting an OutOfMemoryError when the
product does not fit.
*/
func Size(rows int, cols int) (int, error) {
	if rows < 0 || cols < 0 {
		return 0, errors.New("mat32: negative dimensions %dx%d", rows, cols)
	}
	if cols != 0 && rows > math.MaxInt/cols {
		return 0, &OutOfMemoryError{Elements: -1}
	}
	return rows * cols, nil
}

/*
Zeros allocates a zero-filled array.
*/
func Zeros(size int) (arr []float32, err error) {
	if size < 0 {
		return nil, errors.New("mat32: negative size %d", size)
	}
	if uint64(size) > maxElements {
		return nil, &OutOfMemoryError{Elements: size}
	}
	defer func() {
		// makeslice panics are the only recoverable allocation failure
		if r := recover(); r != nil {
			arr = nil
			err = &OutOfMemoryError{Elements: size}
		}
	}()
	// no need to initialize zero values
	return make([]float32, size), nil
}

/*
Fill allocates an array of size and, when init is not nil, sets every slot
with an independent call to init(fanIn). With a nil init the array is zeroed.
*/
func Fill(size int, init InitFunc, fanIn int) ([]float32, error) {
	arr, err := Zeros(size)
	if err != nil {
		return nil, err
	}
	if init == nil {
		return arr, nil
	}
	for i := range arr {
		arr[i] = init(fanIn)
	}
	return arr, nil
}

/*
NewMat instantiates a zeroed n x d matrix.
*/
func NewMat(n int, d int) (*Mat, error) {
	return RandMat(n, d, nil, 0)
}

/*
RandMat instantiates an n x d matrix with every element drawn from init.
*/
func RandMat(n int, d int, init InitFunc, fanIn int) (*Mat, error) {
	size, err := Size(n, d)
	if err != nil {
		return nil, err
	}
	w, err := Fill(size, init, fanIn)
	if err != nil {
		return nil, err
	}
	return &Mat{RowCount: n, ColumnCount: d, W: w}, nil
}

/*
At returns element (row, col).
*/
func (m *Mat) At(row int, col int) float32 {
	return m.W[row*m.ColumnCount+col]
}

/*
Row returns the slice backing one row. Writes go through to the matrix.
*/
func (m *Mat) Row(row int) []float32 {
	start := row * m.ColumnCount
	return m.W[start : start+m.ColumnCount]
}

/*
Clone makes a deep copy.
*/
func (m *Mat) Clone() *Mat {
	w := make([]float32, len(m.W))
	copy(w, m.W)
	return &Mat{RowCount: m.RowCount, ColumnCount: m.ColumnCount, W: w}
}
