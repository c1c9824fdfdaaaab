// Package driver sequences the three analysis stages and exposes the
// two entry points the IDE shell calls.
package driver

import (
	"fmt"

	"mirlo/pkg/analyzer"
	"mirlo/pkg/errors"
	"mirlo/pkg/lexer"
	"mirlo/pkg/parser"
	"mirlo/pkg/report"
	"mirlo/pkg/source"
)

// Finding is one diagnostic record as handed to the IDE.
type Finding struct {
	Message string
	Line    int
	Column  int
	Node    string // originating AST node kind, "" when unknown
}

// SyntaxResult is the output of the lex/parse entry point.
type SyntaxResult struct {
	LexicalReport     string
	SyntacticReport   string
	LexicalErrorCount int
	SyntaxErrorCount  int
	TokenCount        int // excluding the terminating EOF token
	Program           *parser.Program

	Tokens          []lexer.Token
	LexicalErrors   []errors.Diagnostic
	SyntacticErrors []errors.Diagnostic
}

// SemanticResult is the output of the semantic entry point.
type SemanticResult struct {
	Report       string
	ErrorCount   int
	WarningCount int
	Errors       []Finding
	Warnings     []Finding

	Scope *analyzer.Scope
}

func findingOf(d errors.Diagnostic) Finding {
	pos := d.Pos()
	f := Finding{Message: d.Message(), Line: pos.Line, Column: pos.Column}
	switch n := d.(type) {
	case *errors.SemanticError:
		f.Node = n.Node
	case *errors.SemanticWarning:
		f.Node = n.Node
	}
	return f
}

// AnalyzeSyntax runs the lexer and the parser over src and renders the
// lexical and syntactic reports. An unexpected internal failure yields
// empty reports and a single fatal error in LexicalErrors.
func AnalyzeSyntax(src *source.SourceFile) (result *SyntaxResult) {
	result = &SyntaxResult{}

	defer func() {
		if r := recover(); r != nil {
			*result = SyntaxResult{
				LexicalErrorCount: 1,
				LexicalErrors: []errors.Diagnostic{&errors.FatalError{
					Msg: fmt.Sprintf("internal failure: %v", r),
				}},
			}
		}
	}()

	// Token pass: the full stream, comments included, for the report
	lx := lexer.NewLexer(src)
	tokens := lx.Tokenize()
	result.Tokens = tokens
	result.LexicalErrors = lx.Errors()
	result.LexicalErrorCount = len(lx.Errors())
	result.TokenCount = len(tokens) - 1 // the terminating EOF token

	// Parse pass over a fresh lexer; the parser filters comments itself
	p := parser.NewParser(lexer.NewLexer(src))
	result.Program = p.ParseProgram()
	result.SyntacticErrors = p.Errors()
	result.SyntaxErrorCount = len(p.Errors())

	result.LexicalReport = report.Lexical(tokens, result.LexicalErrors)
	result.SyntacticReport = report.Syntactic(result.Program, result.SyntacticErrors)
	return result
}

// AnalyzeSemantics re-parses src with the real parser and runs the
// semantic analyzer. An unexpected internal failure yields an empty
// report and a single fatal error record.
func AnalyzeSemantics(src *source.SourceFile) (result *SemanticResult) {
	result = &SemanticResult{}

	defer func() {
		if r := recover(); r != nil {
			*result = SemanticResult{
				ErrorCount: 1,
				Errors: []Finding{{
					Message: fmt.Sprintf("internal failure: %v", r),
				}},
			}
		}
	}()

	p := parser.NewParser(lexer.NewLexer(src))
	program := p.ParseProgram()

	a := analyzer.NewAnalyzer(src)
	a.Analyze(program)

	result.Scope = a.GlobalScope()
	result.ErrorCount = len(a.Errors())
	result.WarningCount = len(a.Warnings())
	for _, d := range a.Errors() {
		result.Errors = append(result.Errors, findingOf(d))
	}
	for _, d := range a.Warnings() {
		result.Warnings = append(result.Warnings, findingOf(d))
	}
	result.Report = report.Semantic(a.GlobalScope(), a.Errors(), a.Warnings())
	return result
}

// AnalyzeSyntaxString is AnalyzeSyntax over a bare string.
func AnalyzeSyntaxString(code string) *SyntaxResult {
	return AnalyzeSyntax(source.NewEvalSource(code))
}

// AnalyzeSemanticsString is AnalyzeSemantics over a bare string.
func AnalyzeSemanticsString(code string) *SemanticResult {
	return AnalyzeSemantics(source.NewEvalSource(code))
}
