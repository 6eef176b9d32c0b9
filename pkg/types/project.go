package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Project status values. A project is either untouched, at a concrete step
// ("step_<i>" where i indexes the ordered step list), or completed.
const (
	ProjectStatusNotStarted = "not_started"
	ProjectStatusCompleted  = "completed"
	projectStatusStepPrefix = "step_"
)

// ProjectStep is one named unit of delivery work, ordered within its project.
type ProjectStep struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// StepStatus formats the status string for step index i.
func StepStatus(i int) string {
	return fmt.Sprintf("%s%d", projectStatusStepPrefix, i)
}

// ParseStepIndex extracts i from a "step_<i>" status. The second return is
// false for not_started, completed, and anything malformed.
func ParseStepIndex(status string) (int, bool) {
	rest, ok := strings.CutPrefix(status, projectStatusStepPrefix)
	if !ok {
		return 0, false
	}
	i, err := strconv.Atoi(rest)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}
