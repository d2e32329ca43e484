// Package tasktree groups a project's flat task list by level and keeps the
// expansion and selection state of the collapsible outline built from it.
package tasktree

import (
	"github.com/mark-chris/checklist/internal/api"
	"github.com/mark-chris/checklist/internal/i18n"
	"golang.org/x/text/message"
)

// Level is one group of the outline
type Level struct {
	Number int
	Tasks  []api.Task
}

// Tree is the dense grouping of tasks by level: Levels[i] holds level i+1,
// and levels without tasks are present as empty groups.
type Tree struct {
	Levels []Level
}

// MaxLevel returns the deepest level in tasks, or 0 for an empty list.
// Tasks without a level count as level 1.
func MaxLevel(tasks []api.Task) int {
	maxLevel := 0
	for _, t := range tasks {
		maxLevel = max(maxLevel, t.EffectiveLevel())
	}
	return maxLevel
}

// Group builds the dense 1..MaxLevel grouping, preserving task order
// within each level
func Group(tasks []api.Task) Tree {
	levels := make([]Level, MaxLevel(tasks))
	for i := range levels {
		levels[i].Number = i + 1
	}
	for _, t := range tasks {
		i := t.EffectiveLevel() - 1
		levels[i].Tasks = append(levels[i].Tasks, t)
	}
	return Tree{Levels: levels}
}

// Empty reports whether the tree holds no tasks
func (t Tree) Empty() bool {
	return len(t.Levels) == 0
}

// Level returns the group for level n
func (t Tree) Level(n int) (Level, bool) {
	if n < 1 || n > len(t.Levels) {
		return Level{}, false
	}
	return t.Levels[n-1], true
}

// Find returns the task with id
func (t Tree) Find(id int) (api.Task, bool) {
	for _, l := range t.Levels {
		for _, task := range l.Tasks {
			if task.ID == id {
				return task, true
			}
		}
	}
	return api.Task{}, false
}

// LevelLabel names a level: 1 is the main task level, 2 the subtask level
func LevelLabel(p *message.Printer, n int) string {
	switch n {
	case 1:
		return p.Sprintf(i18n.MsgLevelMain)
	case 2:
		return p.Sprintf(i18n.MsgLevelSub)
	default:
		return p.Sprintf(i18n.MsgLevelN, n)
	}
}
