package project

import (
	"testing"

	"github.com/lumenworks/storefront/pkg/types"

	"github.com/stretchr/testify/require"
)

func stateWithSteps(names ...string) State {
	s := NewState()
	for _, n := range names {
		s.AddStep(n)
	}
	return s
}

func TestNewStateIsNotStarted(t *testing.T) {
	s := NewState()
	require.Equal(t, types.ProjectStatusNotStarted, s.Status)
	require.Equal(t, 0, s.CurrentStepIndex)
	require.Empty(t, s.Steps)
}

func TestSetStatusStepMarksEarlierStepsCompleted(t *testing.T) {
	s := stateWithSteps("design", "build")

	require.NoError(t, s.SetStatus("step_1"))
	require.Equal(t, "step_1", s.Status)
	require.Equal(t, 1, s.CurrentStepIndex)
	require.True(t, s.Steps[0].Completed)
	require.False(t, s.Steps[1].Completed)
}

func TestRemoveStepShiftsIndexAndReconcileForcesNotStarted(t *testing.T) {
	s := stateWithSteps("design", "build")
	require.NoError(t, s.SetStatus("step_1"))

	require.NoError(t, s.RemoveStep(0))
	require.Equal(t, 0, s.CurrentStepIndex)
	require.Len(t, s.Steps, 1)
	require.Equal(t, "build", s.Steps[0].Name)

	// status still references index 1, which no longer exists
	s.Reconcile()
	require.Equal(t, types.ProjectStatusNotStarted, s.Status)
	require.Equal(t, 0, s.CurrentStepIndex)
	require.False(t, s.Steps[0].Completed)
}

func TestRemoveStepRealignsValidStepStatus(t *testing.T) {
	s := stateWithSteps("a", "b", "c")
	require.NoError(t, s.SetStatus("step_1"))

	require.NoError(t, s.RemoveStep(0))
	s.Reconcile()
	require.Equal(t, "step_0", s.Status)
	require.Equal(t, 0, s.CurrentStepIndex)
}

func TestSetStatusCompletedCompletesEverything(t *testing.T) {
	s := stateWithSteps("a", "b", "c")

	require.NoError(t, s.SetStatus(types.ProjectStatusCompleted))
	require.Equal(t, types.ProjectStatusCompleted, s.Status)
	require.Equal(t, 2, s.CurrentStepIndex)
	for _, step := range s.Steps {
		require.True(t, step.Completed)
	}
}

func TestSetStatusCompletedOnEmptyStepsForcesNotStarted(t *testing.T) {
	s := NewState()
	require.NoError(t, s.SetStatus(types.ProjectStatusCompleted))
	require.Equal(t, types.ProjectStatusNotStarted, s.Status)
}

func TestReconcileForcesNotStartedWhenStepsEmptied(t *testing.T) {
	s := stateWithSteps("only")
	require.NoError(t, s.SetStatus(types.ProjectStatusCompleted))

	require.NoError(t, s.RemoveStep(0))
	s.Reconcile()
	require.Equal(t, types.ProjectStatusNotStarted, s.Status)
	require.Equal(t, 0, s.CurrentStepIndex)
}

func TestReconcileRejectsCompletedWithIncompleteSteps(t *testing.T) {
	s := stateWithSteps("a", "b")
	require.NoError(t, s.SetStatus(types.ProjectStatusCompleted))

	// manual edit breaks the invariant
	s.Steps[1].Completed = false
	s.Reconcile()
	require.Equal(t, types.ProjectStatusNotStarted, s.Status)
}

func TestSetStatusRejectsMissingStepIndex(t *testing.T) {
	s := stateWithSteps("a")
	require.Error(t, s.SetStatus("step_3"))
	require.Error(t, s.SetStatus("bogus"))
}

func TestAddStepDoesNotChangeStatus(t *testing.T) {
	s := stateWithSteps("a", "b")
	require.NoError(t, s.SetStatus("step_1"))

	s.AddStep("c")
	s.Reconcile()
	require.Equal(t, "step_1", s.Status)
	require.Equal(t, 1, s.CurrentStepIndex)
	require.True(t, s.Steps[0].Completed)
	require.False(t, s.Steps[2].Completed)
}

func TestReconcileRealignRederivesCompletionFlags(t *testing.T) {
	s := stateWithSteps("a", "b", "c")
	require.NoError(t, s.SetStatus("step_2"))
	require.True(t, s.Steps[1].Completed)

	// An edit that moves only the current index: the status is realigned
	// and the completion flags follow it, exactly as SetStatus would set them.
	s.CurrentStepIndex = 1
	s.Reconcile()
	require.Equal(t, "step_1", s.Status)
	require.True(t, s.Steps[0].Completed)
	require.False(t, s.Steps[1].Completed)
	require.False(t, s.Steps[2].Completed)
}

func TestInvariantsHoldAcrossOperationSequences(t *testing.T) {
	s := NewState()
	ops := []func(){
		func() { s.AddStep("one") },
		func() { s.AddStep("two") },
		func() { _ = s.SetStatus("step_1") },
		func() { _ = s.RemoveStep(1) },
		func() { s.AddStep("three") },
		func() { _ = s.SetStatus(types.ProjectStatusCompleted) },
		func() { _ = s.RemoveStep(0) },
	}
	for _, op := range ops {
		op()
		s.Reconcile()

		if len(s.Steps) == 0 {
			require.Equal(t, types.ProjectStatusNotStarted, s.Status)
		}
		if s.Status == types.ProjectStatusCompleted {
			for _, step := range s.Steps {
				require.True(t, step.Completed)
			}
			require.Equal(t, len(s.Steps)-1, s.CurrentStepIndex)
		}
		if i, ok := types.ParseStepIndex(s.Status); ok {
			require.Less(t, i, len(s.Steps))
			require.Equal(t, i, s.CurrentStepIndex)
		}
	}
}
