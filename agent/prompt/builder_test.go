package prompt

import (
	"strings"
	"testing"

	planx "github.com/tanpawarit/tool-enhanced-reasoning/agent/plan"
	toolx "github.com/tanpawarit/tool-enhanced-reasoning/agent/tool"
)

func TestLoadPromptSet(t *testing.T) {
	t.Parallel()

	set, err := LoadPromptSet()
	if err != nil {
		t.Fatalf("LoadPromptSet() error = %v", err)
	}
	if len(set.Examples) == 0 {
		t.Fatal("expected embedded examples")
	}
	if set.Examples[0].Query != "What's 2 + 3 * 4?" {
		t.Fatalf("unexpected first example: %q", set.Examples[0].Query)
	}
}

func TestEmbeddedExamplesAreValidPlans(t *testing.T) {
	t.Parallel()

	set := MustLoadPromptSet()
	for _, ex := range set.Examples {
		if _, err := planx.Parse(ex.Response); err != nil {
			t.Fatalf("example %q is not a valid plan: %v", ex.Query, err)
		}
	}
}

func TestParseExamplesRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	if _, err := parseExamples([]byte("examples:\n  - query: \"hi\"\n")); err == nil {
		t.Fatal("expected error for example without response")
	}
	if _, err := parseExamples([]byte("examples: [")); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	registry := toolx.NewDefaultRegistry()
	b, err := NewBuilder(MustLoadPromptSet(), registry)
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}

	query := `Count the "vowels" in {Hello}`
	got := b.Build(query)

	if !strings.HasPrefix(got, "You are a tool-calling planner.") {
		t.Fatalf("unexpected prompt head: %q", got[:40])
	}
	if !strings.Contains(got, "AVAILABLE TOOLS:"+registry.Describe()) {
		t.Fatal("capability listing missing from prompt")
	}
	if !strings.Contains(got, `"math_tools" and "string_tools" (NOT "MATH_TOOLS" or "STRING_TOOLS")`) {
		t.Fatal("namespace rule not rendered")
	}
	if !strings.Contains(got, "EXAMPLES:\nQuery: \"What's 2 + 3 * 4?\"\nResponse:\n{") {
		t.Fatal("few-shot example missing")
	}
	if !strings.HasSuffix(got, "\n\nUser Query: "+query+"\n\nResponse:") {
		t.Fatalf("unexpected prompt tail: %q", got[len(got)-80:])
	}
	if got != b.Build(query) {
		t.Fatal("Build() is not deterministic")
	}
}

func TestNewBuilderRequiresRegistry(t *testing.T) {
	t.Parallel()

	if _, err := NewBuilder(MustLoadPromptSet(), nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
