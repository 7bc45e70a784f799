package selector

import "fmt"

// Fold holds the sequence indices of one cross-validation split.
type Fold struct {
	Train []int
	Test  []int
}

// KFold splits the indices 0..n-1 into k folds without shuffling. Test
// blocks are contiguous; the first n%k folds have one extra index. Train
// indices are the complement of the test block, in ascending order.
// Panics if k < 2 or k > n.
func KFold(n, k int) []Fold {

	if k < 2 || k > n {
		panic(fmt.Sprintf("selector: can't split %d sequences into %d folds", n, k))
	}
	folds := make([]Fold, k)
	start := 0
	for i := range folds {
		size := n / k
		if i < n%k {
			size++
		}
		end := start + size
		f := Fold{
			Train: make([]int, 0, n-size),
			Test:  make([]int, 0, size),
		}
		for j := 0; j < n; j++ {
			if j >= start && j < end {
				f.Test = append(f.Test, j)
			} else {
				f.Train = append(f.Train, j)
			}
		}
		folds[i] = f
		start = end
	}
	return folds
}
