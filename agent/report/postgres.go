package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var _ contractx.ReportSink = (*PostgresSink)(nil)

// jsonValue boxes a tool result so scalars and strings are stored as JSON.
type jsonValue struct {
	Value any `json:"value"`
}

type runRecord struct {
	bun.BaseModel `bun:"table:plan_runs,alias:r"`

	RunID      string                 `bun:"run_id,pk"`
	Query      string                 `bun:"query,notnull"`
	RawPlan    string                 `bun:"raw_plan"`
	Plan       *contractx.Plan        `bun:"plan,type:jsonb"`
	Trace      []contractx.TraceEntry `bun:"trace,type:jsonb"`
	Variables  []contractx.Variable   `bun:"variables,type:jsonb"`
	Result     jsonValue              `bun:"result,type:jsonb"`
	Error      string                 `bun:"error"`
	ErrorKind  string                 `bun:"error_kind"`
	Succeeded  bool                   `bun:"succeeded,notnull"`
	StartedAt  time.Time              `bun:"started_at,notnull"`
	FinishedAt time.Time              `bun:"finished_at,notnull"`
}

func toRecord(rep contractx.Report) *runRecord {
	trace := rep.Trace
	if trace == nil {
		trace = []contractx.TraceEntry{}
	}
	vars := rep.Variables
	if vars == nil {
		vars = []contractx.Variable{}
	}
	return &runRecord{
		RunID:      rep.RunID,
		Query:      rep.Query,
		RawPlan:    rep.RawPlan,
		Plan:       rep.Plan,
		Trace:      trace,
		Variables:  vars,
		Result:     jsonValue{Value: rep.Result},
		Error:      rep.Error,
		ErrorKind:  string(rep.ErrorKind),
		Succeeded:  rep.Succeeded(),
		StartedAt:  rep.StartedAt,
		FinishedAt: rep.FinishedAt,
	}
}

// PostgresSink appends one row per run to the plan_runs table.
type PostgresSink struct {
	db *bun.DB
}

// OpenPostgres connects with pgdriver and makes sure plan_runs exists.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	sink := &PostgresSink{db: db}
	if err := sink.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().Model((*runRecord)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("create plan_runs table: %w", err)
	}
	return nil
}

func (s *PostgresSink) Name() string {
	return "postgres"
}

func (s *PostgresSink) Deliver(ctx context.Context, rep contractx.Report) error {
	if _, err := s.db.NewInsert().Model(toRecord(rep)).Exec(ctx); err != nil {
		return fmt.Errorf("insert plan run %s: %w", rep.RunID, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}
