// Package stats provides NaN-aware summary statistics and the per-scenario
// standard scaler used by the dataset builders.
package stats

import "math"

// Summary holds the per-channel reduction used by the aggregated dataset.
// All reducers skip NaN cells; with no finite values every field is NaN.
// Std is the sample standard deviation (n-1 divisor), NaN for fewer than
// two finite values.
type Summary struct {
	Mean float64
	Std  float64
	Max  float64
	Min  float64
}

// Summarize reduces one column of values to its Summary.
func Summarize(values []float64) Summary {
	s := Summary{
		Mean: math.NaN(),
		Std:  math.NaN(),
		Max:  math.NaN(),
		Min:  math.NaN(),
	}

	n := 0
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if n == 0 {
			s.Max, s.Min = v, v
		} else {
			s.Max = math.Max(s.Max, v)
			s.Min = math.Min(s.Min, v)
		}
		sum += v
		n++
	}
	if n == 0 {
		return s
	}
	s.Mean = sum / float64(n)

	if n >= 2 {
		var sq float64
		for _, v := range values {
			if math.IsNaN(v) {
				continue
			}
			d := v - s.Mean
			sq += d * d
		}
		s.Std = math.Sqrt(sq / float64(n-1))
	}
	return s
}

// Scaler performs zero-mean/unit-variance scaling, fit independently on one
// scenario's matrix. The std uses the population (n) divisor; a column with
// zero variance or no finite values scales by 1, so constant columns become
// all zeros rather than NaN. NaN cells are excluded from the fit and remain
// NaN after transform.
type Scaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes per-column mean and std over the matrix's finite values.
// Matrix rows must all have the same width.
func (s *Scaler) Fit(m [][]float64) {
	if len(m) == 0 {
		s.Mean, s.Std = nil, nil
		return
	}
	width := len(m[0])
	s.Mean = make([]float64, width)
	s.Std = make([]float64, width)

	for j := 0; j < width; j++ {
		n := 0
		sum := 0.0
		for _, row := range m {
			if v := row[j]; !math.IsNaN(v) {
				sum += v
				n++
			}
		}
		if n == 0 {
			s.Mean[j] = 0
			s.Std[j] = 1
			continue
		}
		mean := sum / float64(n)

		var sq float64
		for _, row := range m {
			if v := row[j]; !math.IsNaN(v) {
				d := v - mean
				sq += d * d
			}
		}
		std := math.Sqrt(sq / float64(n))
		if std == 0 {
			std = 1
		}
		s.Mean[j] = mean
		s.Std[j] = std
	}
}

// Transform scales the matrix in place using the fitted parameters.
// NaN cells stay NaN.
func (s *Scaler) Transform(m [][]float64) {
	for _, row := range m {
		for j := range row {
			if math.IsNaN(row[j]) {
				continue
			}
			row[j] = (row[j] - s.Mean[j]) / s.Std[j]
		}
	}
}

// FitTransform fits the scaler on m and scales m in place.
func (s *Scaler) FitTransform(m [][]float64) {
	s.Fit(m)
	s.Transform(m)
}
