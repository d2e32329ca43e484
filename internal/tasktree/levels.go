package tasktree

import (
	"errors"
	"fmt"

	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
)

// ErrLevelOutOfRange matches every LevelError
var ErrLevelOutOfRange = errors.New("level out of range")

// LevelError rejects a level that is not among the offered choices
type LevelError struct {
	Level int
	Max   int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("level %d is not available (choose 1..%d)", e.Level, e.Max)
}

func (e *LevelError) Is(target error) bool {
	return target == ErrLevelOutOfRange
}

// MessageKey implements i18n.Localizable
func (e *LevelError) MessageKey() (string, []any) {
	return i18n.MsgLevelOutOfRange, []any{e.Level, e.Max}
}

// LevelChoices returns the levels a new task in a project with the given
// tasks may take: 1 through the deepest existing level plus one
func LevelChoices(tasks []api.Task) []int {
	n := MaxLevel(tasks) + 1
	choices := make([]int, n)
	for i := range choices {
		choices[i] = i + 1
	}
	return choices
}

// ValidateLevel checks level against LevelChoices(tasks)
func ValidateLevel(tasks []api.Task, level int) error {
	limit := MaxLevel(tasks) + 1
	if level < 1 || level > limit {
		return &LevelError{Level: level, Max: limit}
	}
	return nil
}
