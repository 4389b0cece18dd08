package lexer

import (
	"testing"

	"github.com/fis25/fisc/token"
)

// TestNextToken exercises every token category the lexer must recognize:
// keywords, type keywords, operators (including the two-char ones), a float
// literal, a string literal, and a `//` comment.
func TestNextToken(t *testing.T) {
	input := `int x = 5;
float pi = 3.14;
bool flag = true && false;
string s = "hi\n";
int[] xs = {1, 2, 3};

func add(int a, int b): int {
    return a + b;
}

// a comment
func main(): void {
    if (x <= 10 || flag) {
        print(x % 2);
    }
}
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.INT_TYPE, "int"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.FLOAT_TYPE, "float"},
		{token.IDENT, "pi"},
		{token.ASSIGN, "="},
		{token.FLOAT, "3.14"},
		{token.SEMICOLON, ";"},
		{token.BOOL_TYPE, "bool"},
		{token.IDENT, "flag"},
		{token.ASSIGN, "="},
		{token.TRUE, "true"},
		{token.AND, "&&"},
		{token.FALSE, "false"},
		{token.SEMICOLON, ";"},
		{token.STRING_TYPE, "string"},
		{token.IDENT, "s"},
		{token.ASSIGN, "="},
		{token.STRING, "hi\n"},
		{token.SEMICOLON, ";"},
		{token.INT_TYPE, "int"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.IDENT, "xs"},
		{token.ASSIGN, "="},
		{token.LBRACE, "{"},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.COMMA, ","},
		{token.INT, "3"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.FUNC, "func"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.INT_TYPE, "int"},
		{token.IDENT, "a"},
		{token.COMMA, ","},
		{token.INT_TYPE, "int"},
		{token.IDENT, "b"},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.INT_TYPE, "int"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.FUNC, "func"},
		{token.IDENT, "main"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.VOID_TYPE, "void"},
		{token.LBRACE, "{"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.LTE, "<="},
		{token.INT, "10"},
		{token.OR, "||"},
		{token.IDENT, "flag"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.PRINT, "print"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.PERCENT, "%"},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

// TestUnterminatedString verifies the lexer reports an unterminated string
// literal as an illegal token instead of hanging or panicking.
func TestUnterminatedString(t *testing.T) {
	l := New(`"abc`)
	tok := l.NextToken()
	if tok.Type != token.ILLEGAL {
		t.Fatalf("expected ILLEGAL, got %q", tok.Type)
	}
}

// TestPositionTracking verifies line/column are reported for tokens across
// multiple lines.
func TestPositionTracking(t *testing.T) {
	l := New("int x;\nint y;")

	first := l.NextToken() // "int"
	if first.Line != 1 {
		t.Fatalf("expected line 1, got %d", first.Line)
	}

	for range 2 {
		l.NextToken() // x, ;, then land on the second "int"
	}
	second := l.NextToken()
	if second.Line != 2 || second.Literal != "int" {
		t.Fatalf("expected line 2 'int', got line %d literal %q", second.Line, second.Literal)
	}
}
