// Package repl implements an interactive inspector over the FIS-25
// compiler pipeline.
//
// It is the direct generalization of the teacher's lex -> parse -> eval ->
// print REPL loop to this domain's own pipeline: lex -> parse -> analyze ->
// generate -> print. Each submitted snippet runs the whole pipeline and the
// first stage that fails determines which error is shown; on success the
// emitted TAC is displayed. It uses the Charm libraries (Bubbletea, Bubbles,
// Lipgloss) for the terminal interface, exactly as the teacher's REPL does.
//
// The main entry point is Start, which runs the inspector over the given
// input and output streams.
package repl

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fis25/fisc/codegen"
	"github.com/fis25/fisc/lexer"
	"github.com/fis25/fisc/parser"
	"github.com/fis25/fisc/semant"
	"github.com/fis25/fisc/symtable"
	"github.com/fis25/fisc/token"
)

const (
	// Prompt is the default prompt for the inspector.
	Prompt = "fis> "

	// ContPrompt is the continuation prompt used in multiline input mode.
	ContPrompt = "...  "
)

// Options configures the inspector's display.
type Options struct {
	NoColor bool // Disable syntax highlighting and colored output
}

// Start runs the pipeline inspector, reading from r and writing to w, until
// the user quits.
func Start(r io.Reader, w io.Writer) {
	p := tea.NewProgram(initialModel(Options{}), tea.WithInput(r), tea.WithOutput(w))
	if _, err := p.Run(); err != nil {
		_, _ = fmt.Fprintln(w, "Error running program:", err)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575"))

	parseErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F87")).
			Bold(true)

	analysisErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FF8700")).
				Bold(true)

	genErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555")).
			Bold(true)

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	keywordStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF79C6")).
			Bold(true)

	typeKeywordStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8BE9FD"))

	identifierStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	literalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F1FA8C"))

	operatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5555"))

	delimiterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))

	stringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#50FA7B"))
)

// StageError identifies which pipeline stage rejected a snippet.
type StageError int

const (
	NoError StageError = iota
	ParseError
	AnalysisError
	GenError
)

// pipelineResultMsg carries the outcome of one asynchronous pipeline run.
type pipelineResultMsg struct {
	output  string
	isError bool
	stage   StageError
	elapsed time.Duration
}

type historyEntry struct {
	input   string
	output  string
	isError bool
	stage   StageError
	runtime time.Duration
}

type model struct {
	textInput       textinput.Model
	history         []historyEntry
	running         bool
	currentInput    string
	multilineBuffer string
	isMultiline     bool
	spinner         spinner.Model
	options         Options
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func initialModel(options Options) model {
	ti := textinput.New()
	ti.Placeholder = "Enter FIS-25 source"
	ti.Focus()
	ti.Width = 80
	ti.Prompt = promptStyle.Render(Prompt)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF79C6"))

	return model{textInput: ti, spinner: s, options: options}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// isBalanced reports whether brackets, braces, and parentheses balance in
// input, used to decide whether to keep accumulating multiline input.
func isBalanced(input string) bool {
	var stack []rune
	for _, ch := range input {
		switch ch {
		case '(', '{', '[':
			stack = append(stack, ch)
		case ')':
			if len(stack) == 0 || stack[len(stack)-1] != '(' {
				return false
			}
			stack = stack[:len(stack)-1]
		case '}':
			if len(stack) == 0 || stack[len(stack)-1] != '{' {
				return false
			}
			stack = stack[:len(stack)-1]
		case ']':
			if len(stack) == 0 || stack[len(stack)-1] != '[' {
				return false
			}
			stack = stack[:len(stack)-1]
		}
	}
	return len(stack) == 0
}

// runPipeline is a tea.Cmd that lexes, parses, analyzes, and generates code
// for input, asynchronously, posting the result as a pipelineResultMsg.
func runPipeline(input string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		l := lexer.New(input)
		p := parser.New(l)
		root := p.ParseProgram()

		if errs := p.Errors(); len(errs) != 0 {
			return pipelineResultMsg{
				output:  formatErrors("Syntax errors", errs),
				isError: true,
				stage:   ParseError,
				elapsed: time.Since(start),
			}
		}

		table := symtable.NewTable()
		if err := semant.Analyze(root, table); err != nil {
			return pipelineResultMsg{
				output:  "Semantic error:\n  " + err.Error(),
				isError: true,
				stage:   AnalysisError,
				elapsed: time.Since(start),
			}
		}

		var buf bytes.Buffer
		if err := codegen.Generate(root, table, &buf); err != nil {
			return pipelineResultMsg{
				output:  "Code generation error:\n  " + err.Error(),
				isError: true,
				stage:   GenError,
				elapsed: time.Since(start),
			}
		}

		return pipelineResultMsg{
			output:  buf.String(),
			isError: false,
			stage:   NoError,
			elapsed: time.Since(start),
		}
	}
}

func formatErrors(title string, errs []string) string {
	var s strings.Builder
	s.WriteString(title + ":\n")
	for i, msg := range errs {
		s.WriteString(fmt.Sprintf("  %d. %s\n", i+1, msg))
	}
	return s.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.running {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}

	case pipelineResultMsg:
		m.running = false
		m.history = append(m.history, historyEntry{
			input:   m.currentInput,
			output:  msg.output,
			isError: msg.isError,
			stage:   msg.stage,
			runtime: msg.elapsed,
		})
		m.currentInput = ""
		return m, nil

	case tea.KeyMsg:
		if m.running && msg.Type != tea.KeyCtrlC {
			return m, m.spinner.Tick
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyCtrlD:
			return m, tea.Quit

		case tea.KeyEnter:
			input := m.textInput.Value()
			if input == "" {
				if m.isMultiline {
					if m.multilineBuffer == "" {
						m.isMultiline = false
						return m, nil
					}
					return m.submit(m.multilineBuffer)
				}
				return m, nil
			}

			if m.isMultiline {
				m.multilineBuffer += "\n" + input
				m.textInput.SetValue("")
				if isBalanced(m.multilineBuffer) {
					return m.submit(m.multilineBuffer)
				}
				return m, nil
			}

			if !isBalanced(input) {
				m.isMultiline = true
				m.multilineBuffer = input
				m.textInput.SetValue("")
				return m, nil
			}

			return m.submit(input)
		}
	}

	if !m.running {
		m.textInput, cmd = m.textInput.Update(msg)
	}
	if m.running {
		return m, m.spinner.Tick
	}
	return m, cmd
}

// submit starts a pipeline run over input in the background, clearing any
// multiline buffer in progress.
func (m model) submit(input string) (tea.Model, tea.Cmd) {
	m.running = true
	m.currentInput = input
	m.textInput.SetValue("")
	m.isMultiline = false
	m.multilineBuffer = ""
	return m, runPipeline(input)
}

func (m model) View() string {
	var s strings.Builder

	s.WriteString(m.applyStyle(titleStyle, " FIS-25 Compiler Pipeline Inspector "))
	s.WriteString("\n\n")

	for _, entry := range m.history {
		for i, line := range strings.Split(entry.input, "\n") {
			if i == 0 {
				s.WriteString(m.applyStyle(promptStyle, Prompt))
			} else {
				s.WriteString(m.applyStyle(promptStyle, ContPrompt))
			}
			s.WriteString(m.highlightLine(line))
			s.WriteString("\n")
		}

		if entry.isError {
			s.WriteString(m.applyStyle(m.stageStyle(entry.stage), entry.output))
		} else {
			s.WriteString(m.applyStyle(resultStyle, entry.output))
		}

		if entry.runtime > 10*time.Millisecond {
			s.WriteString(m.applyStyle(historyStyle, fmt.Sprintf(" (%.2fs)", entry.runtime.Seconds())))
		}
		s.WriteString("\n")
	}

	if m.running {
		s.WriteString(m.applyStyle(promptStyle, Prompt))
		s.WriteString(m.highlightLine(m.currentInput))
		s.WriteString("\n")
		s.WriteString(m.spinner.View())
		s.WriteString(" Compiling...\n\n")
	}

	if m.isMultiline && !m.running {
		s.WriteString(m.applyStyle(historyStyle, "Current multiline input:\n"))
		s.WriteString(m.highlightLine(m.multilineBuffer))
		s.WriteString("\n")
	}

	if !m.running {
		if m.isMultiline {
			m.textInput.Prompt = m.applyStyle(promptStyle, ContPrompt)
		} else {
			m.textInput.Prompt = m.applyStyle(promptStyle, Prompt)
		}
		s.WriteString(m.textInput.View())
		s.WriteString("\n")
	}

	help := "\nEsc or Ctrl+C/D to exit"
	if m.isMultiline {
		help += " | empty line evaluates the buffer"
	} else {
		help += " | unbalanced brackets start multiline input"
	}
	s.WriteString(m.applyStyle(historyStyle, help))

	return s.String()
}

func (m model) stageStyle(stage StageError) lipgloss.Style {
	switch stage {
	case ParseError:
		return parseErrorStyle
	case AnalysisError:
		return analysisErrorStyle
	case GenError:
		return genErrorStyle
	default:
		return parseErrorStyle
	}
}

var keywordTypes = map[token.Type]bool{
	token.FUNC: true, token.RETURN: true, token.IF: true, token.ELSE: true,
	token.WHILE: true, token.FOR: true, token.TRUE: true, token.FALSE: true,
	token.PIXEL: true, token.KEY: true, token.INPUT: true, token.PRINT: true,
	token.LENGTH: true,
}

var typeKeywordTypes = map[token.Type]bool{
	token.INT_TYPE: true, token.FLOAT_TYPE: true, token.BOOL_TYPE: true,
	token.STRING_TYPE: true, token.ARRAY_TYPE: true, token.VOID_TYPE: true,
}

var operatorTypes = map[token.Type]bool{
	token.ASSIGN: true, token.PLUS: true, token.MINUS: true, token.BANG: true,
	token.ASTERISK: true, token.SLASH: true, token.PERCENT: true,
	token.LT: true, token.GT: true, token.LTE: true, token.GTE: true,
	token.EQ: true, token.NOT_EQ: true, token.AND: true, token.OR: true,
}

var delimiterTypes = map[token.Type]bool{
	token.COMMA: true, token.COLON: true, token.SEMICOLON: true,
	token.LPAREN: true, token.RPAREN: true, token.LBRACE: true, token.RBRACE: true,
	token.LBRACKET: true, token.RBRACKET: true,
}

// highlightLine tokenizes a single line of FIS-25 source and renders it
// with per-category colors, one token at a time.
func (m model) highlightLine(line string) string {
	l := lexer.New(line)
	var s strings.Builder

	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}

		switch {
		case keywordTypes[tok.Type]:
			s.WriteString(m.applyStyle(keywordStyle, tok.Literal))
		case typeKeywordTypes[tok.Type]:
			s.WriteString(m.applyStyle(typeKeywordStyle, tok.Literal))
		case tok.Type == token.IDENT:
			s.WriteString(m.applyStyle(identifierStyle, tok.Literal))
		case tok.Type == token.INT || tok.Type == token.FLOAT:
			s.WriteString(m.applyStyle(literalStyle, tok.Literal))
		case tok.Type == token.STRING:
			s.WriteString(m.applyStyle(stringStyle, "\""+tok.Literal+"\""))
		case operatorTypes[tok.Type]:
			s.WriteString(m.applyStyle(operatorStyle, tok.Literal))
		case delimiterTypes[tok.Type]:
			s.WriteString(m.applyStyle(delimiterStyle, tok.Literal))
		default:
			s.WriteString(tok.Literal)
		}
		s.WriteString(" ")
	}

	return strings.TrimRight(s.String(), " ")
}
