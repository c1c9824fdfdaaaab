// Package report renders the human-readable reports the IDE shell
// displays verbatim. It is a pure formatter over the outputs of the
// lexer, the parser and the analyzer.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"mirlo/pkg/analyzer"
	"mirlo/pkg/errors"
	"mirlo/pkg/lexer"
	"mirlo/pkg/parser"
)

// MaxTableRows is the default cap on token-table rows.
const MaxTableRows = 50

// tokenClassOrder fixes the statistics ordering.
var tokenClassOrder = []lexer.TokenClass{
	lexer.ClassKeyword,
	lexer.ClassIdentifier,
	lexer.ClassNumber,
	lexer.ClassString,
	lexer.ClassTemplate,
	lexer.ClassOperator,
	lexer.ClassPunctuator,
	lexer.ClassComment,
	lexer.ClassInvalid,
}

// displayWidth measures a string in terminal cells: East Asian wide and
// fullwidth runes occupy two.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			w += 2
		default:
			w++
		}
	}
	return w
}

// pad right-pads s to w display cells.
func pad(s string, w int) string {
	d := displayWidth(s)
	if d >= w {
		return s
	}
	return s + strings.Repeat(" ", w-d)
}

// sanitize flattens a lexeme for table display and trims it to max
// display cells.
func sanitize(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	if displayWidth(s) <= max {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		rw := 1
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			rw = 2
		}
		if w+rw > max-3 {
			break
		}
		b.WriteRune(r)
		w += rw
	}
	return b.String() + "..."
}

func writeDiagnosticList(out *bytes.Buffer, title string, diags []errors.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(out, "%s:\n", title)
	for i, d := range diags {
		pos := d.Pos()
		fmt.Fprintf(out, "  %d. [Línea %d, Columna %d] %s\n", i+1, pos.Line, pos.Column, d.Message())
	}
	out.WriteString("\n")
}

// Lexical renders the `=== ANÁLISIS LÉXICO ===` section: counts, the
// enumerated errors, the token table (capped) and a statistics footer.
func Lexical(tokens []lexer.Token, lexErrors []errors.Diagnostic) string {
	return LexicalCapped(tokens, lexErrors, MaxTableRows)
}

// LexicalCapped is Lexical with a configurable token-table cap.
func LexicalCapped(tokens []lexer.Token, lexErrors []errors.Diagnostic, maxRows int) string {
	var out bytes.Buffer

	// The terminating EOF token is not shown
	visible := make([]lexer.Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Type != lexer.EOF {
			visible = append(visible, t)
		}
	}

	out.WriteString("=== ANÁLISIS LÉXICO ===\n\n")
	fmt.Fprintf(&out, "Tokens reconocidos: %d\n", len(visible))
	fmt.Fprintf(&out, "Errores léxicos: %d\n\n", len(lexErrors))

	writeDiagnosticList(&out, "Errores", lexErrors)

	if len(visible) > 0 {
		out.WriteString("TABLA DE TOKENS\n")
		fmt.Fprintf(&out, "  %s %s %s %s %s\n",
			pad("#", 5), pad("TIPO", 11), pad("LEXEMA", 26), pad("LÍNEA", 6), "COLUMNA")
		shown := visible
		if len(shown) > maxRows {
			shown = shown[:maxRows]
		}
		for i, t := range shown {
			fmt.Fprintf(&out, "  %s %s %s %s %d\n",
				pad(fmt.Sprintf("%d", i+1), 5),
				pad(string(t.Class()), 11),
				pad(sanitize(t.Literal, 26), 26),
				pad(fmt.Sprintf("%d", t.Line), 6),
				t.Column)
		}
		if rest := len(visible) - len(shown); rest > 0 {
			fmt.Fprintf(&out, "  ... y %d tokens más\n", rest)
		}
		out.WriteString("\n")
	}

	counts := make(map[lexer.TokenClass]int)
	for _, t := range visible {
		counts[t.Class()]++
	}
	out.WriteString("Estadísticas:\n")
	for _, class := range tokenClassOrder {
		if counts[class] > 0 {
			fmt.Fprintf(&out, "  %s: %d\n", class, counts[class])
		}
	}

	return out.String()
}

// Syntactic renders the `=== ANÁLISIS SINTÁCTICO ===` section: counts,
// the enumerated errors, the AST tree and a statistics footer.
func Syntactic(program *parser.Program, syntaxErrors []errors.Diagnostic) string {
	var out bytes.Buffer

	out.WriteString("=== ANÁLISIS SINTÁCTICO ===\n\n")
	fmt.Fprintf(&out, "Errores sintácticos: %d\n\n", len(syntaxErrors))

	writeDiagnosticList(&out, "Errores", syntaxErrors)

	if program != nil {
		out.WriteString("ÁRBOL SINTÁCTICO\n")
		writeASTNode(&out, program, 0)
		out.WriteString("\n")

		nodes := 0
		parser.Walk(program, func(parser.Node) bool {
			nodes++
			return true
		})
		out.WriteString("Estadísticas:\n")
		fmt.Fprintf(&out, "  Sentencias: %d\n", len(program.Statements))
		fmt.Fprintf(&out, "  Nodos: %d\n", nodes)
	}

	return out.String()
}

// nodeDetail adds the discriminating attribute next to the node kind.
func nodeDetail(n parser.Node) string {
	switch node := n.(type) {
	case *parser.VariableDeclaration:
		return node.Kind
	case *parser.FunctionDeclaration:
		return node.Name.Value
	case *parser.Identifier:
		return node.Value
	case *parser.Literal:
		return node.Raw
	case *parser.TemplateLiteral:
		return sanitize(node.Raw, 26)
	case *parser.AssignmentExpression:
		return node.Operator
	case *parser.LogicalExpression:
		return node.Operator
	case *parser.BinaryExpression:
		return node.Operator
	case *parser.UnaryExpression:
		return node.Operator
	case *parser.UpdateExpression:
		return node.Operator
	}
	return ""
}

func writeASTNode(out *bytes.Buffer, n parser.Node, depth int) {
	out.WriteString(strings.Repeat("  ", depth))
	out.WriteString(parser.KindOf(n))
	if detail := nodeDetail(n); detail != "" {
		fmt.Fprintf(out, " (%s)", detail)
	}
	out.WriteString("\n")
	for _, child := range parser.Children(n) {
		writeASTNode(out, child, depth+1)
	}
}

// Semantic renders the `=== ANÁLISIS SEMÁNTICO ===` section: counts,
// the enumerated errors and warnings, the symbol table per scope and a
// statistics footer.
func Semantic(global *analyzer.Scope, semErrors, warnings []errors.Diagnostic) string {
	var out bytes.Buffer

	out.WriteString("=== ANÁLISIS SEMÁNTICO ===\n\n")
	fmt.Fprintf(&out, "Errores semánticos: %d\n", len(semErrors))
	fmt.Fprintf(&out, "Advertencias: %d\n\n", len(warnings))

	writeDiagnosticList(&out, "Errores", semErrors)
	writeDiagnosticList(&out, "Advertencias", warnings)

	if global != nil {
		out.WriteString("TABLA DE SÍMBOLOS\n")
		scopes, symbols := writeScope(&out, global, 0)
		out.WriteString("\n")
		out.WriteString("Estadísticas:\n")
		fmt.Fprintf(&out, "  Ámbitos: %d\n", scopes)
		fmt.Fprintf(&out, "  Símbolos declarados: %d\n", symbols)
	}

	return out.String()
}

func boolES(b bool) string {
	if b {
		return "sí"
	}
	return "no"
}

// writeScope renders one scope and its children; unused builtins are
// elided to keep the table focused on the program's own bindings.
// Returns (scopes rendered, user symbols counted).
func writeScope(out *bytes.Buffer, scope *analyzer.Scope, depth int) (int, int) {
	indent := strings.Repeat("  ", depth)
	label := string(scope.Kind)
	if scope.Label != "" {
		label += " (" + scope.Label + ")"
	}
	fmt.Fprintf(out, "%sámbito %s\n", indent, label)

	declared := 0
	for _, sym := range scope.Symbols() {
		if sym.Builtin && !sym.Used {
			continue
		}
		if !sym.Builtin {
			declared++
		}
		line := "-"
		if sym.Line > 0 {
			line = fmt.Sprintf("%d", sym.Line)
		}
		fmt.Fprintf(out, "%s  %s %s %s %s %s\n",
			indent,
			pad(sanitize(sym.Name, 20), 20),
			pad(string(sym.Kind), 10),
			pad(line, 6),
			pad(boolES(sym.Initialized), 13),
			boolES(sym.Used))
	}

	scopes := 1
	for _, child := range scope.Children {
		s, d := writeScope(out, child, depth+1)
		scopes += s
		declared += d
	}
	return scopes, declared
}
