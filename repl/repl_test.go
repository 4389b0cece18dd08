package repl

import (
	"strings"
	"testing"
)

func TestIsBalanced(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"func main(): void {", false},
		{"func main(): void { }", true},
		{"if (x > 0) {", false},
		{"if (x > 0) { print(x); }", true},
		{"int[] xs = {1, 2, 3};", true},
		{"int[] xs = {1, 2, 3", false},
		{"}", false},
		{")", false},
	}
	for _, c := range cases {
		if got := isBalanced(c.input); got != c.want {
			t.Errorf("isBalanced(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestRunPipelineReturnsGeneratedCodeOnSuccess(t *testing.T) {
	msg := runPipeline("func main(): void { print(1); }")()
	result, ok := msg.(pipelineResultMsg)
	if !ok {
		t.Fatalf("expected pipelineResultMsg, got %T", msg)
	}
	if result.isError {
		t.Fatalf("expected success, got error output: %s", result.output)
	}
	if !strings.Contains(result.output, "GOSUB func_main") {
		t.Fatalf("expected generated TAC to call func_main, got:\n%s", result.output)
	}
	if !strings.Contains(result.output, "PRINT") {
		t.Fatalf("expected a PRINT instruction, got:\n%s", result.output)
	}
}

func TestRunPipelineReportsSyntaxErrors(t *testing.T) {
	msg := runPipeline("int x = ;")()
	result, ok := msg.(pipelineResultMsg)
	if !ok {
		t.Fatalf("expected pipelineResultMsg, got %T", msg)
	}
	if !result.isError || result.stage != ParseError {
		t.Fatalf("expected a ParseError, got %+v", result)
	}
}

func TestRunPipelineReportsSemanticErrors(t *testing.T) {
	msg := runPipeline("func main(): void { x = 1; }")()
	result, ok := msg.(pipelineResultMsg)
	if !ok {
		t.Fatalf("expected pipelineResultMsg, got %T", msg)
	}
	if !result.isError || result.stage != AnalysisError {
		t.Fatalf("expected an AnalysisError for an undeclared assignment, got %+v", result)
	}
}

func TestRunPipelineReportsGenerationErrors(t *testing.T) {
	msg := runPipeline("int[] xs = {1, 2, 3}; func main(): void { print(length(xs)); }")()
	result, ok := msg.(pipelineResultMsg)
	if !ok {
		t.Fatalf("expected pipelineResultMsg, got %T", msg)
	}
	if !result.isError || result.stage != GenError {
		t.Fatalf("expected a GenError for array features, got %+v", result)
	}
}

func TestHighlightLineProducesOutputForEachToken(t *testing.T) {
	m := initialModel(Options{NoColor: true})
	out := m.highlightLine("int x = 5;")
	want := "int x = 5 ;"
	if out != want {
		t.Fatalf("highlightLine mismatch\n got: %q\nwant: %q", out, want)
	}
}
