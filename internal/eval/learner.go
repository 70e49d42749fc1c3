package eval

import (
	"context"

	"samstream/internal/instance"
	"samstream/internal/samknn"
)

// classifierLearner adapts a single SAM-kNN classifier to the Learner
// contract, for runs without the ensemble wrapper.
type classifierLearner struct {
	cls *samknn.Classifier
}

func NewClassifierLearner(cls *samknn.Classifier) Learner {
	return &classifierLearner{cls: cls}
}

func (l *classifierLearner) SetContext(header *instance.Header) {
	l.cls.SetContext(header)
}

func (l *classifierLearner) Predict(x *instance.Instance) []float64 {
	return l.cls.Predict(x)
}

func (l *classifierLearner) Train(_ context.Context, x *instance.Instance) error {
	l.cls.Train(x)
	return nil
}

func (l *classifierLearner) AfterLearning() {
	l.cls.AfterLearning()
}
