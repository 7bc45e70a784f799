package model

// Set holds at most one model per word. Words are enumerated in the order
// they were first added.
type Set struct {
	words  []string
	models map[string]Modeler
}

// NewSet creates an empty model set.
func NewSet() *Set {
	return &Set{models: make(map[string]Modeler)}
}

// Add sets the model for a word, replacing any previous model. A replaced
// word keeps its original position.
func (s *Set) Add(word string, m Modeler) {
	if _, ok := s.models[word]; !ok {
		s.words = append(s.words, word)
	}
	s.models[word] = m
}

// Get returns the model for word.
func (s *Set) Get(word string) (Modeler, bool) {
	m, ok := s.models[word]
	return m, ok
}

// Words returns the words in enumeration order.
func (s *Set) Words() []string {
	return append([]string(nil), s.words...)
}

// Len returns the number of models.
func (s *Set) Len() int { return len(s.words) }
