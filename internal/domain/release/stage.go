package release

import (
	"errors"
	"fmt"
)

// Stage identifies a step in the sequential release pipeline.
type Stage uint8

// Pipeline stages in execution order. Hashing covers both artifacts;
// StageHashed is only reached once executable and archive digests exist.
const (
	StagePending Stage = iota
	StageBuilt
	StagePackaged
	StageHashed
	StagePublished
)

var (
	errProgressTerminal = errors.New("pipeline already finished")
	errStageSkipped     = errors.New("stage transition must advance by exactly one step")
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageBuilt:
		return "built"
	case StagePackaged:
		return "packaged"
	case StageHashed:
		return "hashed"
	case StagePublished:
		return "published"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Progress tracks the pipeline through its stages. Transitions move forward
// one stage at a time; failure is terminal and records the failed stage.
// This is what makes the "no partial release" rule mechanically enforceable:
// publication is only legal from StageHashed.
type Progress struct {
	// current is the last successfully completed stage.
	current Stage
	// failed marks the progress as terminally failed.
	failed bool
	// failedAt is the stage whose work failed, valid only when failed is set.
	failedAt Stage
}

// NewProgress returns pipeline progress at the pending stage.
func NewProgress() *Progress {
	return &Progress{current: StagePending}
}

// Advance moves the pipeline to the next stage.
// It rejects skipped stages and any movement out of a terminal state.
func (p *Progress) Advance(next Stage) error {
	if p.Terminal() {
		return errProgressTerminal
	}

	if next != p.current+1 {
		return fmt.Errorf("%w: %s -> %s", errStageSkipped, p.current, next)
	}

	p.current = next

	return nil
}

// Fail marks the pipeline as terminally failed at the given stage.
func (p *Progress) Fail(at Stage) {
	if p.Terminal() {
		return
	}

	p.failed = true
	p.failedAt = at
}

// Current returns the last successfully completed stage.
func (p *Progress) Current() Stage {
	return p.current
}

// FailedAt returns the failed stage and whether the pipeline failed.
func (p *Progress) FailedAt() (Stage, bool) {
	return p.failedAt, p.failed
}

// Terminal reports whether no further transitions are possible.
func (p *Progress) Terminal() bool {
	return p.failed || p.current == StagePublished
}
