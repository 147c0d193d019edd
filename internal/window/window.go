// Package window slices a scenario's normalized sensor matrix into
// fixed-length overlapping windows and flattens each into one feature vector.
package window

import "iter"

// Default extraction parameters for the timeseries dataset.
const (
	DefaultSize   = 30
	DefaultStride = 10
)

// Count returns the number of full windows a matrix with rows time steps
// yields: floor((rows-size)/stride)+1, or 0 when rows < size.
func Count(rows, size, stride int) int {
	if size < 1 || stride < 1 || rows < size {
		return 0
	}
	return (rows-size)/stride + 1
}

// Slide returns a lazy, finite, restartable sequence of flattened windows.
// For start index i = 0, stride, 2*stride, ... while i+size <= len(m), it
// yields rows [i, i+size) flattened row-major (time-major, sensor-major
// within each step). A trailing slice shorter than size is never yielded;
// a matrix with fewer rows than size yields nothing. Each yielded vector is
// a fresh slice.
func Slide(m [][]float64, size, stride int) iter.Seq[[]float64] {
	return func(yield func([]float64) bool) {
		if size < 1 || stride < 1 || len(m) < size {
			return
		}
		width := len(m[0])
		for i := 0; i+size <= len(m); i += stride {
			vec := make([]float64, 0, size*width)
			for _, row := range m[i : i+size] {
				vec = append(vec, row...)
			}
			if !yield(vec) {
				return
			}
		}
	}
}

// Labeled pairs each window vector from seq with the scenario's class label.
func Labeled(seq iter.Seq[[]float64], label string) iter.Seq2[[]float64, string] {
	return func(yield func([]float64, string) bool) {
		for vec := range seq {
			if !yield(vec, label) {
				return
			}
		}
	}
}
