package selector

import (
	"github.com/akualab/hmmsel/model"
	"github.com/golang/glog"
)

// Constant selects the model with the fallback number of states.
type Constant struct {
	*Base
}

// Select fits the whole-word data with the constant state count.
func (s Constant) Select() model.Modeler {
	m := s.constantModel()
	glog.V(1).Infof("constant word [%s] using %d states", s.word, s.constant)
	return m
}
