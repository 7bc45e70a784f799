package recognizer

import "fmt"

// Accuracy returns the fraction of guesses that match refs and the number
// of errors. NoGuess is always an error.
func Accuracy(guesses, refs []string) (acc float64, numErrors int, err error) {

	if len(guesses) != len(refs) {
		return 0, 0, fmt.Errorf("have %d guesses and %d references", len(guesses), len(refs))
	}
	if len(refs) == 0 {
		return 0, 0, nil
	}
	for i, g := range guesses {
		if g == NoGuess || g != refs[i] {
			numErrors++
		}
	}
	acc = float64(len(refs)-numErrors) / float64(len(refs))
	return acc, numErrors, nil
}
