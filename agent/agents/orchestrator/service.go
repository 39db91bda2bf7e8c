package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	executorx "github.com/tanpawarit/tool-enhanced-reasoning/agent/executor"
	planx "github.com/tanpawarit/tool-enhanced-reasoning/agent/plan"
	promptx "github.com/tanpawarit/tool-enhanced-reasoning/agent/prompt"
	reportx "github.com/tanpawarit/tool-enhanced-reasoning/agent/report"
	toolx "github.com/tanpawarit/tool-enhanced-reasoning/agent/tool"
)

type Config struct {
	// PlannerTimeout bounds a single planner call. Zero means no extra bound
	// beyond the caller's context.
	PlannerTimeout time.Duration
}

type Orchestrator struct {
	planner  contractx.Planner
	prompts  *promptx.Builder
	executor *executorx.Executor
	sinks    []contractx.ReportSink

	plannerTimeout time.Duration

	now   func() time.Time
	newID func() string
}

func New(
	registry *toolx.Registry,
	planner contractx.Planner,
	cfg Config,
	sinks ...contractx.ReportSink,
) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}
	if planner == nil {
		return nil, errors.New("planner is required")
	}

	set, err := promptx.LoadPromptSet()
	if err != nil {
		return nil, err
	}
	prompts, err := promptx.NewBuilder(set, registry)
	if err != nil {
		return nil, err
	}
	executor, err := executorx.New(registry)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		planner:        planner,
		prompts:        prompts,
		executor:       executor,
		sinks:          sinks,
		plannerTimeout: cfg.PlannerTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}, nil
}

// PromptFor returns the exact prompt sent to the planner for query.
func (o *Orchestrator) PromptFor(query string) string {
	return o.prompts.Build(query)
}

// HandleQuery runs one query end to end. Failures are recorded on the
// returned report and never escape.
func (o *Orchestrator) HandleQuery(ctx context.Context, query string) (rep contractx.Report) {
	rep = contractx.Report{
		RunID:     o.newID(),
		Query:     query,
		StartedAt: o.now(),
	}
	logger := log.With().Str("run_id", rep.RunID).Logger()

	defer func() {
		if rec := recover(); rec != nil {
			o.fail(&rep, fmt.Errorf("unexpected panic: %v", rec))
		}
		rep.FinishedAt = o.now()
		if rep.Succeeded() {
			logger.Info().Str("result", reportx.FormatValue(rep.Result)).Int("steps", len(rep.Trace)).Msg("query completed")
		} else {
			logger.Error().Str("error_kind", string(rep.ErrorKind)).Msg(rep.Error)
		}
		reportx.Deliver(ctx, rep, o.sinks...)
	}()

	if err := o.run(ctx, &rep); err != nil {
		o.fail(&rep, err)
	}
	return rep
}

func (o *Orchestrator) fail(rep *contractx.Report, err error) {
	rep.Error = err.Error()
	rep.ErrorKind = contractx.KindOf(err)
	rep.Result = nil
}

func (o *Orchestrator) run(ctx context.Context, rep *contractx.Report) error {
	if strings.TrimSpace(rep.Query) == "" {
		return fmt.Errorf("%w: query must not be empty", contractx.ErrValidation)
	}

	raw, err := o.requestPlan(ctx, rep.Query)
	if err != nil {
		return err
	}
	rep.RawPlan = raw

	plan, err := planx.Parse(raw)
	if err != nil {
		return err
	}
	rep.Plan = plan
	log.Info().Str("run_id", rep.RunID).Int("operations", len(plan.Operations)).Msg("executing plan")

	res, err := o.executor.Execute(ctx, plan)
	rep.Trace = res.Trace
	rep.Variables = res.Variables.Snapshot()
	if err != nil {
		return err
	}
	rep.Result = res.Final
	return nil
}

func (o *Orchestrator) requestPlan(ctx context.Context, query string) (string, error) {
	if o.plannerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.plannerTimeout)
		defer cancel()
	}

	raw, err := o.planner.Complete(ctx, o.prompts.Build(query))
	if err != nil {
		if errors.Is(err, contractx.ErrPlannerCall) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", contractx.ErrPlannerCall, err)
	}
	return raw, nil
}
