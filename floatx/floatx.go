// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package floatx has small helpers for float64 slices used by the
// model packages. Functions panic on shape errors; callers are expected
// to validate input first.
package floatx

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrZeroLength = Error("floatx: zero length in slice definition")
	ErrLength     = Error("floatx: length mismatch")
	ErrZeroSum    = Error("floatx: cannot normalize slice with zero sum")
)

var Log = func(r int, v float64) float64 { return math.Log(v) }
var Sq = func(r int, v float64) float64 { return v * v }
var Sqrt = func(r int, v float64) float64 { return math.Sqrt(v) }
var Inv = func(r int, v float64) float64 { return 1.0 / v }

func ScaleFunc(f float64) ApplyFunc {
	return func(r int, v float64) float64 { return v * f }
}
func SetValueFunc(f float64) ApplyFunc {
	return func(r int, v float64) float64 { return f }
}

// FloorFunc replaces values below f with f.
func FloorFunc(f float64) ApplyFunc {
	return func(r int, v float64) float64 {
		if v < f {
			return f
		}
		return v
	}
}

// MakeFloat2D allocates an n1 x n2 slice.
func MakeFloat2D(n1, n2 int) [][]float64 {

	s := make([][]float64, n1)
	for i := 0; i < n1; i++ {
		s[i] = make([]float64, n2)
	}

	return s
}

type ApplyFunc func(n int, v float64) float64

// Apply function to 1D slice. If out slice is empty, the function is applied in place.
func Apply(fn ApplyFunc, in, out []float64) []float64 {

	n := len(in)
	if n == 0 {
		panic(ErrZeroLength)
	}
	if len(out) == 0 {
		out = in
	}
	if len(out) != n {
		panic(ErrLength)
	}
	for i := 0; i < n; i++ {
		out[i] = fn(i, in[i])
	}

	return out
}

// Set all values to zero.
func Clear(s []float64) {
	for i := range s {
		s[i] = 0
	}
}

// Set all values to zero.
func Clear2D(s [][]float64) {

	for _, slice := range s {
		Clear(slice)
	}
}

// LogNormalize writes log(s[i]/sum(s)) into out. Returns ErrZeroSum when
// the slice does not have positive mass.
func LogNormalize(s, out []float64) error {

	sum := floats.Sum(s)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return ErrZeroSum
	}
	Apply(func(r int, v float64) float64 { return math.Log(v / sum) }, s, out)
	return nil
}
