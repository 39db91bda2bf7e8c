// Package executor runs a parsed plan step by step against the tool registry.
package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	toolx "github.com/tanpawarit/tool-enhanced-reasoning/agent/tool"
)

// UnknownToolError is returned when a step names a namespace or function the
// registry does not have.
type UnknownToolError struct {
	Index int
	Err   error
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Error in step %d: %v", e.Index, e.Err)
}

func (e *UnknownToolError) Unwrap() []error {
	return []error{contractx.ErrUnknownTool, e.Err}
}

// StepExecutionError wraps a failure raised while invoking a step.
type StepExecutionError struct {
	Index       int
	Description string
	Err         error
}

func (e *StepExecutionError) Error() string {
	return fmt.Sprintf("Error in step %d: %v", e.Index, e.Err)
}

func (e *StepExecutionError) Unwrap() []error {
	return []error{contractx.ErrStepExecution, e.Err}
}

type Result struct {
	Final     any
	Trace     []contractx.TraceEntry
	Variables *Variables
}

type Executor struct {
	registry *toolx.Registry
}

func New(registry *toolx.Registry) (*Executor, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	return &Executor{registry: registry}, nil
}

// Execute runs the plan's operations in array order. On failure the trace and
// variables collected so far are returned with the error.
func (e *Executor) Execute(ctx context.Context, plan *contractx.Plan) (Result, error) {
	res := Result{Variables: NewVariables()}
	if plan == nil || len(plan.Operations) == 0 {
		return res, fmt.Errorf("%w: plan has no operations", contractx.ErrInvalidPlan)
	}

	for i, step := range plan.Operations {
		index := step.Step
		if index <= 0 {
			index = i + 1
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("plan aborted before step %d: %w", index, err)
		}

		label := step.Label()
		log.Info().Int("step", index).Str("function", step.QualifiedName()).Msg(label)

		args := res.Variables.Substitute(step.Arguments)

		fn, err := e.registry.Resolve(step.Tool, step.Function)
		if err != nil {
			log.Error().Err(err).Int("step", index).Msg("step references an unknown tool")
			return res, &UnknownToolError{Index: index, Err: err}
		}

		out, err := invoke(fn, args)
		if err != nil {
			log.Error().Err(err).Int("step", index).Str("function", step.QualifiedName()).Msg("step failed")
			return res, &StepExecutionError{Index: index, Description: label, Err: err}
		}

		if step.StoreAs != "" {
			res.Variables.Set(step.StoreAs, out)
			log.Debug().Int("step", index).Str("variable", step.StoreAs).Msg("stored step result")
		}

		res.Trace = append(res.Trace, contractx.TraceEntry{
			Step:        index,
			Description: label,
			Function:    step.QualifiedName(),
			Arguments:   args,
			Result:      out,
		})
		res.Final = out
		log.Info().Int("step", index).Interface("result", out).Msg("step completed")
	}

	return res, nil
}

func invoke(fn toolx.Function, args []any) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out, err = nil, fmt.Errorf("panic in %s: %v", fn.Name, rec)
		}
	}()
	return fn.Invoke(args)
}
