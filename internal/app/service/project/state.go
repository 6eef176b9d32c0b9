package project

import (
	"fmt"

	"github.com/lumenworks/storefront/pkg/types"
)

// State is the in-memory form of a project's progress: an ordered step list,
// the current step index and the derived status. All mutations go through
// the methods below; Reconcile restores the invariants after any step edit
// and must run before the state is persisted.
type State struct {
	Status           string
	CurrentStepIndex int
	Steps            []types.ProjectStep
}

// NewState is the initial state on project creation: no steps yet, nothing
// started. Steps are added later by an operator.
func NewState() State {
	return State{Status: types.ProjectStatusNotStarted}
}

// AddStep appends a step. Status and the current index are untouched.
func (s *State) AddStep(name string) {
	s.Steps = append(s.Steps, types.ProjectStep{Name: name})
}

// RemoveStep deletes the step at index k. Removing at or before the current
// index shifts the current index down by one, floored at zero.
func (s *State) RemoveStep(k int) error {
	if k < 0 || k >= len(s.Steps) {
		return fmt.Errorf("step index %d out of range [0, %d)", k, len(s.Steps))
	}
	s.Steps = append(s.Steps[:k], s.Steps[k+1:]...)
	if s.CurrentStepIndex >= k && s.CurrentStepIndex > 0 {
		s.CurrentStepIndex--
	}
	return nil
}

// SetStatus applies an operator status change, updating step completion
// flags to match: steps before the active one are completed, the active one
// and everything after are not.
func (s *State) SetStatus(status string) error {
	switch {
	case status == types.ProjectStatusNotStarted:
		s.reset()
	case status == types.ProjectStatusCompleted:
		if len(s.Steps) == 0 {
			s.reset()
			return nil
		}
		s.Status = types.ProjectStatusCompleted
		s.CurrentStepIndex = len(s.Steps) - 1
		for i := range s.Steps {
			s.Steps[i].Completed = true
		}
	default:
		i, ok := types.ParseStepIndex(status)
		if !ok {
			return fmt.Errorf("unknown project status %q", status)
		}
		if i >= len(s.Steps) {
			return fmt.Errorf("status %s references a missing step (have %d)", status, len(s.Steps))
		}
		s.Status = types.StepStatus(i)
		s.CurrentStepIndex = i
		for j := range s.Steps {
			s.Steps[j].Completed = j < i
		}
	}
	return nil
}

// Reconcile forces the state back to a valid configuration after manual
// edits. It runs on every step mutation, not only explicit status changes:
//   - no steps left: not_started
//   - status references a step index that no longer exists: not_started
//   - status is completed but some step is not: not_started
//   - a valid step status is re-aligned to the (possibly shifted) current index
func (s *State) Reconcile() {
	if len(s.Steps) == 0 {
		s.reset()
		return
	}

	if s.CurrentStepIndex < 0 {
		s.CurrentStepIndex = 0
	}
	if s.CurrentStepIndex >= len(s.Steps) {
		s.CurrentStepIndex = len(s.Steps) - 1
	}

	switch s.Status {
	case types.ProjectStatusNotStarted:
		s.CurrentStepIndex = 0
	case types.ProjectStatusCompleted:
		for _, step := range s.Steps {
			if !step.Completed {
				s.reset()
				return
			}
		}
		s.CurrentStepIndex = len(s.Steps) - 1
	default:
		i, ok := types.ParseStepIndex(s.Status)
		if !ok || i >= len(s.Steps) {
			s.reset()
			return
		}
		if i != s.CurrentStepIndex {
			s.Status = types.StepStatus(s.CurrentStepIndex)
		}
		// Same flag derivation as SetStatus, so a shifted index leaves the
		// completion flags consistent with the realigned status.
		for j := range s.Steps {
			s.Steps[j].Completed = j < s.CurrentStepIndex
		}
	}
}

func (s *State) reset() {
	s.Status = types.ProjectStatusNotStarted
	s.CurrentStepIndex = 0
	for i := range s.Steps {
		s.Steps[i].Completed = false
	}
}
