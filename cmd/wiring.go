package main

import (
	"time"

	"github.com/google/uuid"

	"github.com/tovu/retain/internal/domain/decision"
	"github.com/tovu/retain/internal/domain/model"
	"github.com/tovu/retain/internal/domain/risk"
)

func newScorer() *risk.RuleScorer {
	return risk.NewRuleScorer()
}

func decisionEngine(advisor decision.Advisor) *decision.Engine {
	return decision.New(advisor,
		decision.WithTimeout(time.Duration(cfg.AdvisoryTimeoutMS)*time.Millisecond),
	)
}

func newIntervention(studentID string) model.Intervention {
	return model.Intervention{
		ID:        uuid.NewString(),
		StudentID: studentID,
		AsOf:      time.Now().UTC(),
		Type:      interveneType,
		Notes:     interveneNotes,
		Status:    interveneStatus,
		Outcome:   interveneOutcome,
	}
}
