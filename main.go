package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/tool-enhanced-reasoning/agent/agents/orchestrator"
	plannerx "github.com/tanpawarit/tool-enhanced-reasoning/agent/agents/planner"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	llmx "github.com/tanpawarit/tool-enhanced-reasoning/agent/llm"
	reportx "github.com/tanpawarit/tool-enhanced-reasoning/agent/report"
	toolx "github.com/tanpawarit/tool-enhanced-reasoning/agent/tool"
	configx "github.com/tanpawarit/tool-enhanced-reasoning/pkg/config"
	_ "github.com/tanpawarit/tool-enhanced-reasoning/pkg/logger/autoload"
	qstashx "github.com/tanpawarit/tool-enhanced-reasoning/pkg/qstash"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Println("🚀 Initializing Tool-Enhanced Reasoning System...")

	plannerCfg := configx.MustNew[llmx.Config]("PLANNER")
	planner, err := plannerx.New(*plannerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize planner")
	}

	reportCfg := configx.MustNew[reportx.Config]("REPORT")
	sinks, closeSinks := buildSinks(ctx, *reportCfg)
	defer closeSinks()

	registry := toolx.NewDefaultRegistry()
	if len(registry.Namespaces()) == 0 {
		log.Fatal().Msg("no tool namespaces loaded")
	}
	printTools(os.Stdout, registry)

	orchestrator, err := orchestratorx.New(registry, planner, orchestratorx.Config{
		PlannerTimeout: plannerCfg.Timeout,
	}, sinks.all...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize orchestrator")
	}

	c := console{handler: orchestrator}
	if sinks.file != nil {
		c.reportPath = sinks.file.Path()
	}
	if sinks.runs != nil {
		c.runs = sinks.runs
	}

	fmt.Println("✅ System ready!")
	interactive(ctx, c, os.Stdin, os.Stdout)
}

type reportSinks struct {
	all  []contractx.ReportSink
	file *reportx.FileSink
	runs *reportx.UpstashSink
}

func buildSinks(ctx context.Context, cfg reportx.Config) (reportSinks, func()) {
	var sinks reportSinks
	closers := []func(){}

	if strings.TrimSpace(cfg.FilePath) != "" {
		sink, err := reportx.NewFileSink(cfg.FilePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize report file")
		}
		sinks.file = sink
		sinks.all = append(sinks.all, sink)
	}

	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		sink, err := reportx.OpenPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect report database")
		}
		sinks.all = append(sinks.all, sink)
		closers = append(closers, func() { _ = sink.Close() })
	}

	if strings.TrimSpace(cfg.QStashDestination) != "" {
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		sink, err := reportx.NewQStashSink(qstashx.MustNew(*qstashCfg), cfg.QStashDestination)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize qstash sink")
		}
		sinks.all = append(sinks.all, sink)
	}

	if cfg.UpstashRedis {
		redisCfg := configx.MustNew[reportx.UpstashRedisConfig]("UPSTASH_REDIS")
		sink, err := reportx.NewUpstashSink(*redisCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize upstash run cache")
		}
		sinks.runs = sink
		sinks.all = append(sinks.all, sink)
	}

	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}

func printTools(out io.Writer, registry *toolx.Registry) {
	for _, ns := range registry.Namespaces() {
		fmt.Fprintf(out, "✅ Loaded %d functions from %s\n", len(registry.Functions(ns)), ns)
	}
}

type queryHandler interface {
	HandleQuery(ctx context.Context, query string) contractx.Report
}

type runLookup interface {
	Load(ctx context.Context, runID string) (contractx.Report, error)
}

// console is the interactive front end. runs is nil unless the run cache is
// enabled, and reportPath is empty when no report file is written.
type console struct {
	handler    queryHandler
	runs       runLookup
	reportPath string
}

const showCommand = "/show"

func interactive(ctx context.Context, c console, in io.Reader, out io.Writer) {
	fmt.Fprintln(out, "\n🎮 Interactive Mode - Type 'quit' to exit")
	if c.runs != nil {
		fmt.Fprintf(out, "Type '%s <run id>' to reopen a cached run\n", showCommand)
	}
	fmt.Fprintln(out, strings.Repeat("=", 60))

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go readLines(in, lines, done)

	for {
		fmt.Fprint(out, "\n💬 Enter your query: ")

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\n👋 Goodbye!")
			return
		case line, ok = <-lines:
		}
		if !ok || ctx.Err() != nil {
			fmt.Fprintln(out, "\n👋 Goodbye!")
			return
		}
		query := strings.TrimSpace(line)

		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "👋 Goodbye!")
			return
		case "":
			fmt.Fprintln(out, "Please enter a valid query.")
			continue
		}

		if runID, found := strings.CutPrefix(query, showCommand+" "); found && c.runs != nil {
			c.show(ctx, out, strings.TrimSpace(runID))
			continue
		}
		printReport(out, c.handler.HandleQuery(ctx, query), c.reportPath)
	}
}

// readLines feeds lines from in until EOF or until done is closed. A read that
// is blocked on a terminal stays blocked, but nothing waits on it.
func readLines(in io.Reader, lines chan<- string, done <-chan struct{}) {
	defer close(lines)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-done:
			return
		}
	}
}

func (c console) show(ctx context.Context, out io.Writer, runID string) {
	rep, err := c.runs.Load(ctx, runID)
	switch {
	case errors.Is(err, reportx.ErrReportNotFound):
		fmt.Fprintf(out, "❌ Run '%s' not found\n", runID)
	case err != nil:
		fmt.Fprintf(out, "❌ Error: %v\n", err)
	default:
		printReport(out, rep, "")
	}
}

func printReport(out io.Writer, rep contractx.Report, reportPath string) {
	fmt.Fprintf(out, "\n📝 Query: %s\n", rep.Query)
	fmt.Fprintln(out, strings.Repeat("=", 60))
	if rep.RunID != "" {
		fmt.Fprintf(out, "🆔 Run: %s\n", rep.RunID)
	}

	if !rep.Succeeded() {
		fmt.Fprintf(out, "❌ Error: %s\n", rep.Error)
		return
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "🎯 Final Result: %s\n", reportx.FormatValue(rep.Result))
	if reportPath != "" {
		fmt.Fprintf(out, "📄 Complete results saved to '%s'\n", reportPath)
	}

	if lines := reportx.Summary(rep.Trace); len(lines) > 0 {
		fmt.Fprintln(out, "\n📊 Execution Summary:")
		for _, line := range lines {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
}
