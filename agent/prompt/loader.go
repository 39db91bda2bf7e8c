package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

var (
	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/examples.yaml
	examplesRaw []byte
)

// Example is one few-shot query/plan pair shown to the planner.
type Example struct {
	Query    string `yaml:"query"`
	Response string `yaml:"response"`
}

type exampleFile struct {
	Examples []Example `yaml:"examples"`
}

// PromptSet holds the parsed planner template and its few-shot examples.
type PromptSet struct {
	Planner  *template.Template
	Examples []Example
}

// LoadPromptSet parses the embedded template and examples.
func LoadPromptSet() (PromptSet, error) {
	tmpl, err := template.New("planner").Parse(strings.TrimSpace(plannerRaw))
	if err != nil {
		return PromptSet{}, fmt.Errorf("parse planner template: %w", err)
	}

	examples, err := parseExamples(examplesRaw)
	if err != nil {
		return PromptSet{}, err
	}

	return PromptSet{Planner: tmpl, Examples: examples}, nil
}

func MustLoadPromptSet() PromptSet {
	set, err := LoadPromptSet()
	if err != nil {
		panic(err)
	}
	return set
}

func parseExamples(raw []byte) ([]Example, error) {
	var file exampleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse planner examples: %w", err)
	}
	out := make([]Example, 0, len(file.Examples))
	for i, ex := range file.Examples {
		ex.Query = strings.TrimSpace(ex.Query)
		ex.Response = strings.TrimSpace(ex.Response)
		if ex.Query == "" || ex.Response == "" {
			return nil, fmt.Errorf("parse planner examples: example %d is incomplete", i+1)
		}
		out = append(out, ex)
	}
	return out, nil
}

type plannerData struct {
	Tools           string
	Namespaces      string
	UpperNamespaces string
	Examples        []Example
}

// Render fills the planner template with the capability listing.
func (p PromptSet) Render(toolListing string, namespaces []string) (string, error) {
	lower := make([]string, 0, len(namespaces))
	upper := make([]string, 0, len(namespaces))
	for _, ns := range namespaces {
		lower = append(lower, `"`+ns+`"`)
		upper = append(upper, `"`+strings.ToUpper(ns)+`"`)
	}

	var buf bytes.Buffer
	err := p.Planner.Execute(&buf, plannerData{
		Tools:           toolListing,
		Namespaces:      strings.Join(lower, " and "),
		UpperNamespaces: strings.Join(upper, " or "),
		Examples:        p.Examples,
	})
	if err != nil {
		return "", fmt.Errorf("render planner prompt: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
