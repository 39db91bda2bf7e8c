package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	qstashx "github.com/tanpawarit/tool-enhanced-reasoning/pkg/qstash"
)

// Config is loaded with the REPORT prefix. Empty values disable the
// corresponding sink.
type Config struct {
	FilePath          string `split_words:"true" default:"llm_response.txt"`
	PostgresDSN       string `envconfig:"POSTGRES_DSN"`
	QStashDestination string `envconfig:"QSTASH_DESTINATION"`
	// UpstashRedis enables the run cache configured by UPSTASH_REDIS_*.
	UpstashRedis bool `envconfig:"UPSTASH_REDIS" default:"false"`
}

var (
	_ contractx.ReportSink = (*FileSink)(nil)
	_ contractx.ReportSink = (*QStashSink)(nil)
)

// FileSink overwrites a single markdown file with the latest report.
type FileSink struct {
	path string
}

func NewFileSink(path string) (*FileSink, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("report file path is required")
	}
	return &FileSink{path: path}, nil
}

func (s *FileSink) Name() string {
	return "file"
}

func (s *FileSink) Path() string {
	return s.path
}

func (s *FileSink) Deliver(_ context.Context, rep contractx.Report) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(Markdown(rep)), 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

type publisher interface {
	PublishJSON(ctx context.Context, destination string, payload any) (string, error)
}

var _ publisher = (*qstashx.Client)(nil)

// QStashSink publishes the JSON report to a webhook through QStash.
type QStashSink struct {
	client      publisher
	destination string
}

func NewQStashSink(client *qstashx.Client, destination string) (*QStashSink, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	destination = strings.TrimSpace(destination)
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashSink{client: client, destination: destination}, nil
}

func (s *QStashSink) Name() string {
	return "qstash"
}

func (s *QStashSink) Deliver(ctx context.Context, rep contractx.Report) error {
	id, err := s.client.PublishJSON(ctx, s.destination, rep)
	if err != nil {
		return err
	}
	log.Debug().Str("run_id", rep.RunID).Str("message_id", id).Msg("report published")
	return nil
}

// Deliver hands rep to every sink. Failures are logged and never stop the
// remaining sinks.
func Deliver(ctx context.Context, rep contractx.Report, sinks ...contractx.ReportSink) {
	for _, sink := range sinks {
		if sink == nil {
			continue
		}
		if err := sink.Deliver(ctx, rep); err != nil {
			log.Warn().Err(err).Str("sink", sink.Name()).Str("run_id", rep.RunID).Msg("failed to deliver report")
		}
	}
}
