package model

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/golang/glog"
)

// Seq is a data format to represent a sequence of observation vectors.
// We use it to read json data. The first label is the word.
type Seq struct {
	Vectors [][]float64 `json:"vectors"`
	Labels  []string    `json:"labels"`
	ID      string      `json:"id"`
}

// Word returns the first label or an empty string.
func (s Seq) Word() string {
	if len(s.Labels) == 0 {
		return ""
	}
	return s.Labels[0]
}

// ReadSeqs reads a stream of JSON objects of type Seq from an io.Reader.
// Each JSON object must be separated by a newline.
//
// Example (error handling ignored for brevity):
//
//	r, _ := os.Open(fn)
//	seqs, _ := ReadSeqs(r)
//	ws, words := GroupByWord(seqs)
func ReadSeqs(reader io.Reader) ([]Seq, error) {

	var seqs []Seq
	dec := json.NewDecoder(reader)
	for {
		var v Seq
		err := dec.Decode(&v)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode sequence after %d records: %w", len(seqs), err)
		}
		if len(v.Vectors) == 0 {
			glog.Warningf("skipping empty sequence id [%s]", v.ID)
			continue
		}
		seqs = append(seqs, v)
	}
	glog.V(1).Infof("read %d sequences", len(seqs))
	return seqs, nil
}

// WriteSeqs writes sequences as a stream of JSON objects.
func WriteSeqs(w io.Writer, seqs []Seq) error {
	enc := json.NewEncoder(w)
	for _, s := range seqs {
		if err := enc.Encode(s); err != nil {
			return err
		}
	}
	return nil
}

// GroupByWord collects the sequences of each word. Returns the words in
// order of first appearance. Sequences with no label are skipped.
func GroupByWord(seqs []Seq) (WordSequences, []string) {

	ws := make(WordSequences)
	var words []string
	for _, s := range seqs {
		w := s.Word()
		if w == "" {
			glog.Warningf("skipping unlabeled sequence id [%s]", s.ID)
			continue
		}
		if _, ok := ws[w]; !ok {
			words = append(words, w)
		}
		ws[w] = append(ws[w], Sequence(s.Vectors))
	}
	return ws, words
}
