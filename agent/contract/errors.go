package contract

import "errors"

var (
	ErrToolLoad          = errors.New("tool namespace load failed")
	ErrNotFound          = errors.New("tool not found")
	ErrNamespaceNotFound = errors.New("tool namespace not found")
	ErrFunctionNotFound  = errors.New("tool function not found")
	ErrUnknownTool       = errors.New("unknown tool")
	ErrArity             = errors.New("argument count mismatch")
	ErrMalformedPlan     = errors.New("plan is malformed")
	ErrInvalidPlan       = errors.New("plan is invalid")
	ErrStepExecution     = errors.New("step execution failed")
	ErrPlannerCall       = errors.New("planner call failed")
	ErrValidation        = errors.New("validation failed")
)

// ErrorKind is the stable name of an error category recorded in reports.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindValidation    ErrorKind = "validation"
	KindPlannerCall   ErrorKind = "planner_call"
	KindMalformedPlan ErrorKind = "malformed_plan"
	KindInvalidPlan   ErrorKind = "invalid_plan"
	KindUnknownTool   ErrorKind = "unknown_tool"
	KindArity         ErrorKind = "arity"
	KindStepExecution ErrorKind = "step_execution"
	KindInternal      ErrorKind = "internal"
)

// KindOf classifies err. Order matters: an arity mismatch is reported as its
// own kind even though it also wraps ErrStepExecution.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrPlannerCall):
		return KindPlannerCall
	case errors.Is(err, ErrMalformedPlan):
		return KindMalformedPlan
	case errors.Is(err, ErrInvalidPlan):
		return KindInvalidPlan
	case errors.Is(err, ErrUnknownTool):
		return KindUnknownTool
	case errors.Is(err, ErrArity):
		return KindArity
	case errors.Is(err, ErrStepExecution):
		return KindStepExecution
	default:
		return KindInternal
	}
}
