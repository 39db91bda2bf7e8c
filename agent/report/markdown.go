// Package report renders per-query run reports and delivers them to sinks.
package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
)

const timestampLayout = "2006-01-02 15:04:05"

// FormatValue renders a tool result for people: whole floats drop the
// fraction, strings are printed raw and everything else is JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(raw)
}

func formatArguments(args []any) string {
	raw, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprint(args)
	}
	return string(raw)
}

// Markdown renders the report the way it is written to the response file.
func Markdown(rep contractx.Report) string {
	if !rep.Succeeded() {
		return errorMarkdown(rep)
	}

	var b strings.Builder
	b.WriteString("# Tool-Enhanced Reasoning System - Query Results\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.StartedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "## User Query:\n%s\n\n", rep.Query)
	fmt.Fprintf(&b, "## LLM Response (Raw JSON):\n%s\n\n", rep.RawPlan)
	b.WriteString("## Parsed Operations:\n")
	b.WriteString(parsedPlan(rep.Plan))
	b.WriteString("\n\n## Execution Results:\n")
	fmt.Fprintf(&b, "**Final Result:** %s\n\n", FormatValue(rep.Result))
	writeTrace(&b, rep.Trace)
	writeVariables(&b, rep.Variables)
	return b.String()
}

func errorMarkdown(rep contractx.Report) string {
	var b strings.Builder
	b.WriteString("# Tool-Enhanced Reasoning System - Error Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", rep.StartedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "## User Query:\n%s\n\n", rep.Query)
	fmt.Fprintf(&b, "## Error:\n%s\n\n", rep.Error)
	if rep.ErrorKind != contractx.KindNone {
		fmt.Fprintf(&b, "## Error Kind:\n%s\n\n", rep.ErrorKind)
	}
	if rep.RawPlan != "" {
		fmt.Fprintf(&b, "## LLM Response (Raw JSON):\n%s\n\n", rep.RawPlan)
	}
	if len(rep.Trace) > 0 {
		b.WriteString("## Completed Steps:\n")
		writeTrace(&b, rep.Trace)
		writeVariables(&b, rep.Variables)
	}
	b.WriteString("## Status:\nQuery execution failed. Please check your query and try again.\n")
	return b.String()
}

func parsedPlan(p *contractx.Plan) string {
	if p == nil {
		return "Failed to parse JSON"
	}
	raw, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "Failed to parse JSON"
	}
	return string(raw)
}

func writeTrace(b *strings.Builder, trace []contractx.TraceEntry) {
	if len(trace) == 0 {
		return
	}
	b.WriteString("### Step-by-Step Execution:\n")
	for _, e := range trace {
		fmt.Fprintf(b, "- **Step %d:** %s\n", e.Step, e.Description)
		fmt.Fprintf(b, "  - Function: `%s`\n", e.Function)
		fmt.Fprintf(b, "  - Arguments: %s\n", formatArguments(e.Arguments))
		fmt.Fprintf(b, "  - Result: `%s`\n\n", FormatValue(e.Result))
	}
}

func writeVariables(b *strings.Builder, vars []contractx.Variable) {
	if len(vars) == 0 {
		return
	}
	b.WriteString("### Variables Stored:\n")
	for _, v := range vars {
		fmt.Fprintf(b, "- **%s:** %s\n", v.Name, FormatValue(v.Value))
	}
	b.WriteString("\n")
}

// Summary lists each executed step on one line. It is empty for single-step
// runs.
func Summary(trace []contractx.TraceEntry) []string {
	if len(trace) <= 1 {
		return nil
	}
	out := make([]string, 0, len(trace))
	for _, e := range trace {
		out = append(out, fmt.Sprintf("Step %d: %s → %s", e.Step, e.Description, FormatValue(e.Result)))
	}
	return out
}
