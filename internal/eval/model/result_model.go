package model

import (
	"time"

	"github.com/google/uuid"
)

// Result summarizes one prequential evaluation run.
type Result struct {
	ID           uuid.UUID `json:"id"`
	Stream       string    `json:"stream"`
	Learner      string    `json:"learner"`
	Steps        int       `json:"steps"`
	Correct      int       `json:"correct"`
	Accuracy     float64   `json:"accuracy"`
	Drifts       int       `json:"drifts"`
	Replacements int       `json:"replacements"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
}

func NewResult(stream, learner string, startedAt time.Time) Result {
	return Result{
		ID:        uuid.New(),
		Stream:    stream,
		Learner:   learner,
		StartedAt: startedAt,
	}
}
