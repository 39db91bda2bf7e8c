package contract

import "context"

// Planner turns a prompt into plan text. It never executes anything.
type Planner interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ReportSink receives one report per handled query.
type ReportSink interface {
	Name() string
	Deliver(ctx context.Context, rep Report) error
}
