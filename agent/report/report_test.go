package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
)

func successReport() contractx.Report {
	started := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return contractx.Report{
		RunID:   "run-1",
		Query:   "What's 2 + 3 * 4?",
		RawPlan: `{"operations":[...]}`,
		Plan: &contractx.Plan{
			Reasoning: "Multiply first",
			Operations: []contractx.Step{
				{Step: 1, Tool: "math_tools", Function: "multiply", Arguments: []any{3.0, 4.0}, StoreAs: "mult_result"},
				{Step: 2, Tool: "math_tools", Function: "add", Arguments: []any{2.0, "mult_result"}, StoreAs: "final_result"},
			},
		},
		Trace: []contractx.TraceEntry{
			{Step: 1, Description: "Calculate 3 * 4", Function: "math_tools.multiply", Arguments: []any{3.0, 4.0}, Result: 12.0},
			{Step: 2, Description: "Add 2", Function: "math_tools.add", Arguments: []any{2.0, 12.0}, Result: 14.0},
		},
		Variables:  []contractx.Variable{{Name: "mult_result", Value: 12.0}, {Name: "final_result", Value: 14.0}},
		Result:     14.0,
		StartedAt:  started,
		FinishedAt: started.Add(time.Second),
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want string
	}{
		{14.0, "14"},
		{2.5, "2.5"},
		{"hello", "hello"},
		{true, "true"},
		{3, "3"},
		{nil, "None"},
		{[]int{0, 2}, "[0,2]"},
		{map[string]int{"b": 1, "a": 2}, `{"a":2,"b":1}`},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Fatalf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkdownSuccess(t *testing.T) {
	t.Parallel()

	got := Markdown(successReport())
	for _, want := range []string{
		"# Tool-Enhanced Reasoning System - Query Results\nGenerated: 2024-05-01 09:30:00\n",
		"## User Query:\nWhat's 2 + 3 * 4?\n",
		"## LLM Response (Raw JSON):\n{\"operations\":[...]}\n",
		"## Parsed Operations:\n{\n  \"reasoning\": \"Multiply first\",",
		"**Final Result:** 14\n",
		"- **Step 2:** Add 2\n  - Function: `math_tools.add`\n  - Arguments: [2,12]\n  - Result: `14`\n",
		"### Variables Stored:\n- **mult_result:** 12\n- **final_result:** 14\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("markdown missing %q\n---\n%s", want, got)
		}
	}
}

func TestMarkdownError(t *testing.T) {
	t.Parallel()

	rep := successReport()
	rep.Plan = nil
	rep.Trace = rep.Trace[:1]
	rep.Variables = rep.Variables[:1]
	rep.Error = "Error in step 2: cannot divide by zero"
	rep.ErrorKind = contractx.KindStepExecution

	got := Markdown(rep)
	for _, want := range []string{
		"# Tool-Enhanced Reasoning System - Error Report\n",
		"## Error:\nError in step 2: cannot divide by zero\n",
		"## Error Kind:\nstep_execution\n",
		"## Completed Steps:\n### Step-by-Step Execution:\n- **Step 1:** Calculate 3 * 4\n",
		"## Status:\nQuery execution failed. Please check your query and try again.\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("markdown missing %q\n---\n%s", want, got)
		}
	}
	if strings.Contains(got, "Final Result") {
		t.Fatal("error report must not contain a final result")
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	rep := successReport()
	got := Summary(rep.Trace)
	if len(got) != 2 || got[1] != "Step 2: Add 2 → 14" {
		t.Fatalf("unexpected summary: %#v", got)
	}
	if Summary(rep.Trace[:1]) != nil {
		t.Fatal("single step runs have no summary")
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "llm_response.txt")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink() error = %v", err)
	}

	if err := sink.Deliver(context.Background(), successReport()); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	failed := successReport()
	failed.Error = "planner call failed: timeout"
	if err := sink.Deliver(context.Background(), failed); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.HasPrefix(string(raw), "# Tool-Enhanced Reasoning System - Error Report") {
		t.Fatalf("expected file to hold only the latest report, got %q", string(raw)[:60])
	}
	if strings.Count(string(raw), "# Tool-Enhanced Reasoning System") != 1 {
		t.Fatal("file was appended instead of overwritten")
	}
}

type fakePublisher struct {
	destination string
	payload     any
	err         error
}

func (f *fakePublisher) PublishJSON(_ context.Context, destination string, payload any) (string, error) {
	f.destination = destination
	f.payload = payload
	return "msg-1", f.err
}

func TestQStashSinkPublishesReport(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	sink := &QStashSink{client: pub, destination: "https://example.com/runs"}

	rep := successReport()
	if err := sink.Deliver(context.Background(), rep); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	got, ok := pub.payload.(contractx.Report)
	if !ok || got.RunID != "run-1" || pub.destination != "https://example.com/runs" {
		t.Fatalf("unexpected publish: %q %#v", pub.destination, pub.payload)
	}

	if _, err := NewQStashSink(nil, "https://example.com"); err == nil {
		t.Fatal("expected error for nil client")
	}
}

type recordingSink struct {
	name      string
	err       error
	delivered []string
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Deliver(_ context.Context, rep contractx.Report) error {
	s.delivered = append(s.delivered, rep.RunID)
	return s.err
}

func TestDeliverContinuesAfterSinkFailure(t *testing.T) {
	t.Parallel()

	broken := &recordingSink{name: "broken", err: errors.New("disk full")}
	healthy := &recordingSink{name: "healthy"}

	Deliver(context.Background(), successReport(), broken, nil, healthy)

	if len(broken.delivered) != 1 || len(healthy.delivered) != 1 {
		t.Fatalf("expected every sink to be called once: %v %v", broken.delivered, healthy.delivered)
	}
}

func TestToRecord(t *testing.T) {
	t.Parallel()

	rec := toRecord(successReport())
	if rec.RunID != "run-1" || !rec.Succeeded || rec.Result.Value != 14.0 || len(rec.Trace) != 2 {
		t.Fatalf("unexpected record: %#v", rec)
	}

	failed := toRecord(contractx.Report{RunID: "run-2", Error: "boom", ErrorKind: contractx.KindPlannerCall})
	if failed.Succeeded || failed.ErrorKind != "planner_call" {
		t.Fatalf("unexpected failed record: %#v", failed)
	}
	if failed.Trace == nil || failed.Variables == nil {
		t.Fatal("empty trace and variables must be stored as empty arrays")
	}
}
