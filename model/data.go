// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package model

import (
	"fmt"
	"sort"
)

// Sequence is an ordered list of feature frames. All frames in a sequence
// have the same dimension.
type Sequence [][]float64

// WordSequences maps a word to its training sequences.
type WordSequences map[string][]Sequence

// Words returns the words in sorted order.
func (ws WordSequences) Words() []string {
	words := make([]string, 0, len(ws))
	for w := range ws {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Flat holds one or more sequences concatenated into a single list of
// frames. Lengths has the length of each segment in concatenation order.
// Frames are shared with the source sequences and must not be modified.
type Flat struct {
	X       [][]float64
	Lengths []int
}

// NumFrames returns the total number of frames.
func (f Flat) NumFrames() int { return len(f.X) }

// NumSeqs returns the number of segments.
func (f Flat) NumSeqs() int { return len(f.Lengths) }

// Dim returns the frame dimension, zero if there are no frames.
func (f Flat) Dim() int {
	if len(f.X) == 0 {
		return 0
	}
	return len(f.X[0])
}

// Validate checks that the flat is non-empty, that lengths are positive and
// add up to the number of frames, and that all frames have the same dimension.
func (f Flat) Validate() error {

	if len(f.X) == 0 || len(f.Lengths) == 0 {
		return ErrEmpty
	}
	sum := 0
	for i, n := range f.Lengths {
		if n <= 0 {
			return fmt.Errorf("%w: segment %d has length %d", ErrLengths, i, n)
		}
		sum += n
	}
	if sum != len(f.X) {
		return fmt.Errorf("%w: lengths add up to %d, have %d frames", ErrLengths, sum, len(f.X))
	}
	dim := len(f.X[0])
	if dim == 0 {
		return fmt.Errorf("%w: zero dimension frames", ErrEmpty)
	}
	for t, x := range f.X {
		if len(x) != dim {
			return fmt.Errorf("frame %d has dimension %d, expected %d", t, len(x), dim)
		}
	}
	return nil
}

// Segments returns the frames of each segment. The returned slices share
// memory with f.X. Call Validate first.
func (f Flat) Segments() [][][]float64 {
	segs := make([][][]float64, len(f.Lengths))
	start := 0
	for i, n := range f.Lengths {
		segs[i] = f.X[start : start+n : start+n]
		start += n
	}
	return segs
}

// Combine concatenates the sequences at the given positions, in the order
// given. Panics with ErrIndexOutOfRange if an index is invalid.
func Combine(indices []int, seqs []Sequence) Flat {

	total := 0
	for _, i := range indices {
		if i < 0 || i >= len(seqs) {
			panic(ErrIndexOutOfRange)
		}
		total += len(seqs[i])
	}
	flat := Flat{
		X:       make([][]float64, 0, total),
		Lengths: make([]int, 0, len(indices)),
	}
	for _, i := range indices {
		flat.X = append(flat.X, seqs[i]...)
		flat.Lengths = append(flat.Lengths, len(seqs[i]))
	}
	return flat
}

// Flatten concatenates all sequences.
func Flatten(seqs []Sequence) Flat {
	indices := make([]int, len(seqs))
	for i := range indices {
		indices[i] = i
	}
	return Combine(indices, seqs)
}

// FlattenAll flattens the sequences of every word.
func FlattenAll(ws WordSequences) map[string]Flat {
	flats := make(map[string]Flat, len(ws))
	for w, seqs := range ws {
		flats[w] = Flatten(seqs)
	}
	return flats
}
