// Package transcript records interviews as line-delimited JSON for audit and replay.
package transcript

import (
	"time"

	"github.com/google/uuid"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/models"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/scoring"
)

// Stage is the interview step.
type Stage string

const (
	StageIntro   Stage = "intro"
	StageConcept Stage = "concept"
	StageTask    Stage = "task"
	StageSummary Stage = "summary"
)

// QA is one answered question.
type QA struct {
	Question  string    `json:"q"`
	Answer    string    `json:"a"`
	Timestamp time.Time `json:"ts"`
}

// Feedback holds scorer output per interview part.
type Feedback struct {
	Q1       *scoring.Feedback `json:"q1,omitempty"`
	Workbook *scoring.Feedback `json:"workbook,omitempty"`
}

// Interview is the full record of one candidate session.
type Interview struct {
	ID            uuid.UUID      `json:"id"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at,omitempty"`
	Stage         Stage          `json:"stage"`
	QA            []QA           `json:"qa"`
	Deterministic *models.Report `json:"deterministic"`
	LLMFeedback   *Feedback      `json:"llm_feedback"`
	FusedScore    *int           `json:"fused_score,omitempty"`
}

// New starts an interview at the intro stage.
func New(now time.Time) *Interview {
	return &Interview{
		ID:        uuid.New(),
		StartedAt: now.UTC(),
		Stage:     StageIntro,
		QA:        []QA{},
	}
}

// Answer appends a question/answer pair. The first answer moves an interview
// from the intro to the concept stage.
func (iv *Interview) Answer(question, answer string, at time.Time) {
	iv.QA = append(iv.QA, QA{Question: question, Answer: answer, Timestamp: at.UTC()})
	if iv.Stage == StageIntro {
		iv.Stage = StageConcept
	}
}

// SetConceptFeedback stores the concept question feedback and moves to the task stage.
func (iv *Interview) SetConceptFeedback(fb scoring.Feedback) {
	if iv.LLMFeedback == nil {
		iv.LLMFeedback = &Feedback{}
	}
	iv.LLMFeedback.Q1 = &fb
	iv.Stage = StageTask
}

// Finish stores the workbook grade and feedback, computes the fused score
// and moves to the summary stage.
func (iv *Interview) Finish(report *models.Report, workbook scoring.Feedback, at time.Time) {
	if iv.LLMFeedback == nil {
		iv.LLMFeedback = &Feedback{}
	}
	iv.Deterministic = report
	iv.LLMFeedback.Workbook = &workbook
	fused := scoring.Fuse(report, workbook)
	iv.FusedScore = &fused
	finished := at.UTC()
	iv.FinishedAt = &finished
	iv.Stage = StageSummary
}
