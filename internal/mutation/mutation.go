// Package mutation runs server writes whose effects span more than one
// request or that are already reflected locally before the server answers.
package mutation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark-chris/checklist/internal/i18n"
)

// Optimistic applies a local change, performs call, and reverts the change
// when call fails. The error from call is returned unchanged.
func Optimistic(ctx context.Context, apply, revert func(), call func(context.Context) error) error {
	apply()
	if err := call(ctx); err != nil {
		revert()
		return err
	}
	return nil
}

// Value is Optimistic for a single variable: *target becomes next until
// call fails, then its previous value is restored
func Value[T any](ctx context.Context, target *T, next T, call func(context.Context) error) error {
	prev := *target
	return Optimistic(ctx,
		func() { *target = next },
		func() { *target = prev },
		call,
	)
}

// Step is one server write of a Sequence
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Sequence runs dependent writes in order. Completed steps are remembered,
// so running the sequence again after a failure resumes at the failed step.
// There is no compensation: effects of completed steps persist.
type Sequence struct {
	steps []Step
	next  int
}

// NewSequence creates a sequence of steps
func NewSequence(steps ...Step) *Sequence {
	return &Sequence{steps: steps}
}

// Run executes the remaining steps. If a step fails after earlier steps
// succeeded, the result is a *PartialFailureError. If the very first step
// fails, its error is returned as is.
func (s *Sequence) Run(ctx context.Context) error {
	for s.next < len(s.steps) {
		if err := ctx.Err(); err != nil {
			return err
		}

		step := s.steps[s.next]
		if err := step.Run(ctx); err != nil {
			if s.next == 0 {
				return err
			}
			return &PartialFailureError{
				Completed: s.Completed(),
				Failed:    step.Name,
				Err:       err,
			}
		}
		s.next++
	}
	return nil
}

// Done reports whether every step has succeeded
func (s *Sequence) Done() bool {
	return s.next == len(s.steps)
}

// Completed names the steps that have succeeded
func (s *Sequence) Completed() []string {
	names := make([]string, 0, s.next)
	for _, step := range s.steps[:s.next] {
		names = append(names, step.Name)
	}
	return names
}

// Remaining names the steps still to run
func (s *Sequence) Remaining() []string {
	names := make([]string, 0, len(s.steps)-s.next)
	for _, step := range s.steps[s.next:] {
		names = append(names, step.Name)
	}
	return names
}

// PartialFailureError reports a sequence that stopped after some steps
// already took effect
type PartialFailureError struct {
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s completed, but %s failed: %v", strings.Join(e.Completed, ", "), e.Failed, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// MessageKey implements i18n.Localizable
func (e *PartialFailureError) MessageKey() (string, []any) {
	return i18n.MsgStepFailed, []any{strings.Join(e.Completed, ", "), e.Failed, e.Err}
}
