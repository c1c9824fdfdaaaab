package lexer

import (
	"strings"
	"testing"
)

func TestNextToken(t *testing.T) {
	input := `let five = 5;
const ten = 10.5;

function add(x, y) {
  return x + y;
}

let result = add(five, ten);
!*-/5;
5 < 10 > 5;
10 == 10;
10 === 9;
10 !== 9;
a <= b >= c;
i++; j--;
x += 1; x -= 2; x *= 3; x /= 4; x %= 5;
2 ** 8;
a && b || !c;
p ? q : r;
obj.prop;
arr[0];
"foobar"
'foo bar'
// comment
var old = null;
typeof undefined;`

	tests := []struct {
		expectedType    TokenType
		expectedLiteral string
		expectedLine    int
	}{
		{LET, "let", 1},
		{IDENT, "five", 1},
		{ASSIGN, "=", 1},
		{NUMBER, "5", 1},
		{SEMICOLON, ";", 1},
		{CONST, "const", 2},
		{IDENT, "ten", 2},
		{ASSIGN, "=", 2},
		{NUMBER, "10.5", 2},
		{SEMICOLON, ";", 2},
		{FUNCTION, "function", 4},
		{IDENT, "add", 4},
		{LPAREN, "(", 4},
		{IDENT, "x", 4},
		{COMMA, ",", 4},
		{IDENT, "y", 4},
		{RPAREN, ")", 4},
		{LBRACE, "{", 4},
		{RETURN, "return", 5},
		{IDENT, "x", 5},
		{PLUS, "+", 5},
		{IDENT, "y", 5},
		{SEMICOLON, ";", 5},
		{RBRACE, "}", 6},
		{LET, "let", 8},
		{IDENT, "result", 8},
		{ASSIGN, "=", 8},
		{IDENT, "add", 8},
		{LPAREN, "(", 8},
		{IDENT, "five", 8},
		{COMMA, ",", 8},
		{IDENT, "ten", 8},
		{RPAREN, ")", 8},
		{SEMICOLON, ";", 8},
		{BANG, "!", 9},
		{ASTERISK, "*", 9},
		{MINUS, "-", 9},
		{SLASH, "/", 9},
		{NUMBER, "5", 9},
		{SEMICOLON, ";", 9},
		{NUMBER, "5", 10},
		{LT, "<", 10},
		{NUMBER, "10", 10},
		{GT, ">", 10},
		{NUMBER, "5", 10},
		{SEMICOLON, ";", 10},
		{NUMBER, "10", 11},
		{EQ, "==", 11},
		{NUMBER, "10", 11},
		{SEMICOLON, ";", 11},
		{NUMBER, "10", 12},
		{STRICT_EQ, "===", 12},
		{NUMBER, "9", 12},
		{SEMICOLON, ";", 12},
		{NUMBER, "10", 13},
		{STRICT_NOT_EQ, "!==", 13},
		{NUMBER, "9", 13},
		{SEMICOLON, ";", 13},
		{IDENT, "a", 14},
		{LE, "<=", 14},
		{IDENT, "b", 14},
		{GE, ">=", 14},
		{IDENT, "c", 14},
		{SEMICOLON, ";", 14},
		{IDENT, "i", 15},
		{INC, "++", 15},
		{SEMICOLON, ";", 15},
		{IDENT, "j", 15},
		{DEC, "--", 15},
		{SEMICOLON, ";", 15},
		{IDENT, "x", 16},
		{PLUS_ASSIGN, "+=", 16},
		{NUMBER, "1", 16},
		{SEMICOLON, ";", 16},
		{IDENT, "x", 16},
		{MINUS_ASSIGN, "-=", 16},
		{NUMBER, "2", 16},
		{SEMICOLON, ";", 16},
		{IDENT, "x", 16},
		{ASTERISK_ASSIGN, "*=", 16},
		{NUMBER, "3", 16},
		{SEMICOLON, ";", 16},
		{IDENT, "x", 16},
		{SLASH_ASSIGN, "/=", 16},
		{NUMBER, "4", 16},
		{SEMICOLON, ";", 16},
		{IDENT, "x", 16},
		{REMAINDER_ASSIGN, "%=", 16},
		{NUMBER, "5", 16},
		{SEMICOLON, ";", 16},
		{NUMBER, "2", 17},
		{EXPONENT, "**", 17},
		{NUMBER, "8", 17},
		{SEMICOLON, ";", 17},
		{IDENT, "a", 18},
		{LOGICAL_AND, "&&", 18},
		{IDENT, "b", 18},
		{LOGICAL_OR, "||", 18},
		{BANG, "!", 18},
		{IDENT, "c", 18},
		{SEMICOLON, ";", 18},
		{IDENT, "p", 19},
		{QUESTION, "?", 19},
		{IDENT, "q", 19},
		{COLON, ":", 19},
		{IDENT, "r", 19},
		{SEMICOLON, ";", 19},
		{IDENT, "obj", 20},
		{DOT, ".", 20},
		{IDENT, "prop", 20},
		{SEMICOLON, ";", 20},
		{IDENT, "arr", 21},
		{LBRACKET, "[", 21},
		{NUMBER, "0", 21},
		{RBRACKET, "]", 21},
		{SEMICOLON, ";", 21},
		{STRING, `"foobar"`, 22},
		{STRING, `'foo bar'`, 23},
		{COMMENT, "// comment", 24},
		{VAR, "var", 25},
		{IDENT, "old", 25},
		{ASSIGN, "=", 25},
		{NULL, "null", 25},
		{SEMICOLON, ";", 25},
		{TYPEOF, "typeof", 26},
		{UNDEFINED, "undefined", 26},
		{SEMICOLON, ";", 26},
		{EOF, "", 26},
	}

	l := NewStringLexer(input)

	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - wrong token type. expected=%q, got=%q (literal %q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - wrong literal. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
		if tok.Line != tt.expectedLine {
			t.Fatalf("tests[%d] (%q) - wrong line. expected=%d, got=%d",
				i, tok.Literal, tt.expectedLine, tok.Line)
		}
	}

	if len(l.Errors()) != 0 {
		t.Errorf("expected no lexical errors, got %d", len(l.Errors()))
	}
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "0"},
		{"42", "42"},
		{"3.14", "3.14"},
		{"1e10", "1e10"},
		{"1.5e-3", "1.5e-3"},
		{"2E+8", "2E+8"},
		{"0xFF", "0xFF"},
		{"0x1a2b", "0x1a2b"},
		{"0b1010", "0b1010"},
	}

	for _, tt := range tests {
		l := NewStringLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != NUMBER {
			t.Errorf("input %q: expected NUMBER, got %q", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.expected, tok.Literal)
		}
		if next := l.NextToken(); next.Type != EOF {
			t.Errorf("input %q: trailing token %q (%q)", tt.input, next.Type, next.Literal)
		}
	}
}

func TestNumberSingleDot(t *testing.T) {
	// Only one '.' is allowed: the second starts a member access
	l := NewStringLexer("1.2.3")
	first := l.NextToken()
	if first.Type != NUMBER || first.Literal != "1.2" {
		t.Fatalf("expected NUMBER '1.2', got %q %q", first.Type, first.Literal)
	}
	if tok := l.NextToken(); tok.Type != DOT {
		t.Fatalf("expected '.', got %q", tok.Type)
	}
	if tok := l.NextToken(); tok.Type != NUMBER || tok.Literal != "3" {
		t.Fatalf("expected NUMBER '3', got %q %q", tok.Type, tok.Literal)
	}
}

func TestStringEscapes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{`"a\nb"`, "\"a\nb\""},
		{`"a\tb"`, "\"a\tb\""},
		{`"a\rb"`, "\"a\rb\""},
		{`"a\\b"`, `"a\b"`},
		{`"say \"hi\""`, `"say "hi""`},
		{`'it\'s'`, `'it's'`},
		{`"a\qb"`, `"aqb"`}, // unknown escapes pass the character through
	}

	for _, tt := range tests {
		l := NewStringLexer(tt.input)
		tok := l.NextToken()
		if tok.Type != STRING {
			t.Errorf("input %q: expected STRING, got %q", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.expected {
			t.Errorf("input %q: expected literal %q, got %q", tt.input, tt.expected, tok.Literal)
		}
	}
}

func TestUnterminatedString(t *testing.T) {
	l := NewStringLexer(`"abc`)
	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("expected EOF after unterminated string, got %q (%q)", tok.Type, tok.Literal)
	}
	errs := l.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 lexical error, got %d", len(errs))
	}
	if errs[0].Message() != "Unterminated string literal" {
		t.Errorf("wrong message: %q", errs[0].Message())
	}
}

func TestTemplateLiteral(t *testing.T) {
	input := "`hello ${name} and ${obj({a: 1})}`"
	l := NewStringLexer(input)
	tok := l.NextToken()
	if tok.Type != TEMPLATE {
		t.Fatalf("expected TEMPLATE, got %q", tok.Type)
	}
	if tok.Literal != input {
		t.Errorf("template lexeme not preserved verbatim: %q", tok.Literal)
	}
	if next := l.NextToken(); next.Type != EOF {
		t.Errorf("trailing token after template: %q", next.Type)
	}
	if len(l.Errors()) != 0 {
		t.Errorf("unexpected errors: %d", len(l.Errors()))
	}
}

func TestUnterminatedTemplate(t *testing.T) {
	l := NewStringLexer("`open ${x")
	tok := l.NextToken()
	if tok.Type != EOF {
		t.Fatalf("expected EOF, got %q", tok.Type)
	}
	if len(l.Errors()) != 1 || l.Errors()[0].Message() != "Unterminated template literal" {
		t.Fatalf("expected 'Unterminated template literal', got %v", l.Errors())
	}
}

func TestComments(t *testing.T) {
	input := "// line\n/* block\nspans lines */ x"
	l := NewStringLexer(input)

	tok := l.NextToken()
	if tok.Type != COMMENT || tok.Literal != "// line" {
		t.Fatalf("expected line comment, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != COMMENT || tok.Literal != "/* block\nspans lines */" {
		t.Fatalf("expected block comment, got %q %q", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != IDENT || tok.Line != 3 {
		t.Fatalf("expected ident on line 3, got %q on line %d", tok.Literal, tok.Line)
	}
}

func TestUnterminatedBlockComment(t *testing.T) {
	l := NewStringLexer("/* never closed")
	tok := l.NextToken()
	// The partial token is still emitted
	if tok.Type != COMMENT || tok.Literal != "/* never closed" {
		t.Fatalf("expected partial comment token, got %q %q", tok.Type, tok.Literal)
	}
	if len(l.Errors()) != 1 || l.Errors()[0].Message() != "Unterminated block comment" {
		t.Fatalf("expected 'Unterminated block comment', got %v", l.Errors())
	}
}

func TestUnexpectedCharacter(t *testing.T) {
	l := NewStringLexer("let x = @;")
	var illegal *Token
	for {
		tok := l.NextToken()
		if tok.Type == ILLEGAL {
			cp := tok
			illegal = &cp
		}
		if tok.Type == EOF {
			break
		}
	}
	if illegal == nil {
		t.Fatal("expected an ILLEGAL token")
	}
	if illegal.Literal != "@" {
		t.Errorf("expected lexeme '@', got %q", illegal.Literal)
	}
	if len(l.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(l.Errors()))
	}
	if got := l.Errors()[0].Message(); got != "Unexpected character: '@'" {
		t.Errorf("wrong message: %q", got)
	}
}

func TestMaximalMunch(t *testing.T) {
	tests := []struct {
		input string
		types []TokenType
	}{
		{">>>", []TokenType{UNSIGNED_RSHIFT}},
		{">>", []TokenType{RIGHT_SHIFT}},
		{"**=", []TokenType{EXPONENT_ASSIGN}},
		{"...", []TokenType{SPREAD}},
		{"?.", []TokenType{OPTIONAL_CHAINING}},
		{"=>", []TokenType{ARROW}},
		{"====", []TokenType{STRICT_EQ, ASSIGN}},
		{"+++", []TokenType{INC, PLUS}},
		{"&&&", []TokenType{LOGICAL_AND, BITWISE_AND}},
	}

	for _, tt := range tests {
		l := NewStringLexer(tt.input)
		for i, want := range tt.types {
			tok := l.NextToken()
			if tok.Type != want {
				t.Errorf("input %q token %d: expected %q, got %q", tt.input, i, want, tok.Type)
			}
		}
		if tok := l.NextToken(); tok.Type != EOF {
			t.Errorf("input %q: trailing token %q", tt.input, tok.Type)
		}
	}
}

func TestKeywordSet(t *testing.T) {
	// Reserved-but-unused words still lex as keywords
	for _, word := range []string{"class", "switch", "try", "yield", "async", "of", "goto", "int"} {
		l := NewStringLexer(word)
		tok := l.NextToken()
		if tok.Class() != ClassKeyword {
			t.Errorf("%q: expected keyword class, got %q", word, tok.Class())
		}
	}
	l := NewStringLexer("classy")
	if tok := l.NextToken(); tok.Type != IDENT {
		t.Errorf("expected IDENT for 'classy', got %q", tok.Type)
	}
}

func TestPositionTracking(t *testing.T) {
	input := "let a = 1;\n  a = 2;"
	l := NewStringLexer(input)

	expected := []struct {
		literal string
		line    int
		column  int
	}{
		{"let", 1, 1},
		{"a", 1, 5},
		{"=", 1, 7},
		{"1", 1, 9},
		{";", 1, 10},
		{"a", 2, 3},
		{"=", 2, 5},
		{"2", 2, 7},
		{";", 2, 8},
	}

	for i, want := range expected {
		tok := l.NextToken()
		if tok.Literal != want.literal || tok.Line != want.line || tok.Column != want.column {
			t.Errorf("token %d: expected %q at %d:%d, got %q at %d:%d",
				i, want.literal, want.line, want.column, tok.Literal, tok.Line, tok.Column)
		}
	}
}

func TestUnicodeColumns(t *testing.T) {
	// Columns count codepoints, not bytes
	l := NewStringLexer(`"ñandú" x`)
	str := l.NextToken()
	if str.Type != STRING {
		t.Fatalf("expected STRING, got %q", str.Type)
	}
	x := l.NextToken()
	if x.Column != 9 {
		t.Errorf("expected column 9 for x, got %d", x.Column)
	}
}

func TestTokenizeMonotonicity(t *testing.T) {
	input := `function fib(n) {
  if (n < 2) { return n; }
  return fib(n - 1) + fib(n - 2);
}
// trailing comment
let memo = [1, 2, 3];`

	l := NewStringLexer(input)
	tokens := l.Tokenize()

	if tokens[len(tokens)-1].Type != EOF {
		t.Fatal("token stream must end with EOF")
	}
	for i := 1; i < len(tokens); i++ {
		prev, cur := tokens[i-1], tokens[i]
		if cur.Type == EOF {
			continue
		}
		if cur.Line < prev.Line || (cur.Line == prev.Line && cur.Column < prev.Column) {
			t.Errorf("token %d (%q) position %d:%d before %d:%d", i, cur.Literal,
				cur.Line, cur.Column, prev.Line, prev.Column)
		}
		if cur.StartPos < prev.EndPos {
			t.Errorf("token %d (%q) offset %d overlaps previous end %d", i, cur.Literal,
				cur.StartPos, prev.EndPos)
		}
	}
}

func TestWhitespaceOnlySource(t *testing.T) {
	for _, input := range []string{"", "   \n\t  ", "// just a comment\n", "/* solo */"} {
		l := NewStringLexer(input)
		tokens := l.Tokenize()
		if len(l.Errors()) != 0 {
			t.Errorf("input %q: unexpected errors", input)
		}
		meaningful := 0
		for _, tok := range tokens {
			if tok.Type != COMMENT && tok.Type != EOF {
				meaningful++
			}
		}
		if meaningful != 0 {
			t.Errorf("input %q: expected no meaningful tokens, got %d", input, meaningful)
		}
		eofs := 0
		for _, tok := range tokens {
			if tok.Type == EOF {
				eofs++
			}
		}
		if eofs != 1 {
			t.Errorf("input %q: expected exactly one EOF token, got %d", input, eofs)
		}
	}
}

func TestTokenClasses(t *testing.T) {
	input := "let x = 1 + \"s\" `t` ; @ // c"
	l := NewStringLexer(input)
	want := []TokenClass{
		ClassKeyword, ClassIdentifier, ClassOperator, ClassNumber,
		ClassOperator, ClassString, ClassTemplate, ClassPunctuator,
		ClassInvalid, ClassComment, ClassEOF,
	}
	for i, wc := range want {
		tok := l.NextToken()
		if tok.Class() != wc {
			t.Errorf("token %d (%q): expected class %q, got %q", i, tok.Literal, wc, tok.Class())
		}
	}
}

func TestStringKeepsQuotes(t *testing.T) {
	l := NewStringLexer(`'abc'`)
	tok := l.NextToken()
	if !strings.HasPrefix(tok.Literal, "'") || !strings.HasSuffix(tok.Literal, "'") {
		t.Errorf("string lexeme should retain quotes: %q", tok.Literal)
	}
}
