package analyzer

import (
	"fmt"

	"mirlo/pkg/errors"
	"mirlo/pkg/parser"
	"mirlo/pkg/source"
)

const debugAnalyzer = false

func debugPrintf(format string, args ...interface{}) {
	if debugAnalyzer {
		fmt.Printf("[Analyzer Debug] "+format+"\n", args...)
	}
}

// functionFrame tracks per-function state during the walk.
type functionFrame struct {
	name      string
	hasReturn bool
}

// Analyzer walks an AST, maintains the scope tree and collects
// semantic diagnostics. One Analyzer instance analyzes one program.
type Analyzer struct {
	source  *source.SourceFile
	global  *Scope
	current *Scope

	errs  []errors.Diagnostic
	warns []errors.Diagnostic

	funcStack []*functionFrame
}

// NewAnalyzer creates an analyzer with a fresh global scope preloaded
// with the builtin bindings.
func NewAnalyzer(src *source.SourceFile) *Analyzer {
	global := NewScope(ScopeGlobal, nil)
	installBuiltins(global)
	return &Analyzer{
		source:  src,
		global:  global,
		current: global,
	}
}

// GlobalScope returns the root of the scope tree.
func (a *Analyzer) GlobalScope() *Scope { return a.global }

// Errors returns the semantic errors, in insertion order.
func (a *Analyzer) Errors() []errors.Diagnostic { return a.errs }

// Warnings returns the warnings, in insertion order.
func (a *Analyzer) Warnings() []errors.Diagnostic { return a.warns }

// Analyze walks the whole program. Diagnostics never abort the walk; an
// unexpected internal failure is converted into a single fatal error.
func (a *Analyzer) Analyze(program *parser.Program) {
	defer func() {
		if r := recover(); r != nil {
			a.errs = append(a.errs, &errors.FatalError{
				Msg: fmt.Sprintf("internal analyzer failure: %v", r),
			})
		}
	}()

	a.hoistFunctions(program.Statements)
	for _, stmt := range program.Statements {
		a.analyzeStatement(stmt)
	}
	a.checkUnused(a.global)
}

func (a *Analyzer) errorAt(n parser.Node, msg string) {
	pos := n.Pos()
	pos.Source = a.source
	a.errs = append(a.errs, &errors.SemanticError{Position: pos, Msg: msg, Node: parser.KindOf(n)})
}

func (a *Analyzer) warnAt(n parser.Node, msg string) {
	pos := n.Pos()
	pos.Source = a.source
	a.warns = append(a.warns, &errors.SemanticWarning{Position: pos, Msg: msg, Node: parser.KindOf(n)})
}

// --- Scope helpers ---

func (a *Analyzer) enterScope(kind ScopeKind, label string) {
	s := NewScope(kind, a.current)
	s.Label = label
	a.current = s
}

func (a *Analyzer) leaveScope() {
	a.current = a.current.Parent()
}

// --- Hoisting ---

// hoistFunctions pre-installs every immediate function declaration of a
// global or function scope before its statements are analyzed.
func (a *Analyzer) hoistFunctions(stmts []parser.Statement) {
	for _, stmt := range stmts {
		fd, ok := stmt.(*parser.FunctionDeclaration)
		if !ok {
			continue
		}
		sym := a.newFunctionSymbol(fd)
		sym.Hoisted = true
		if !a.current.Define(sym) {
			a.errorAt(fd.Name, fmt.Sprintf("Variable '%s' is already declared in this scope", fd.Name.Value))
		}
	}
}

func (a *Analyzer) newFunctionSymbol(fd *parser.FunctionDeclaration) *Symbol {
	params := make([]string, 0, len(fd.Parameters))
	for _, p := range fd.Parameters {
		params = append(params, p.Value)
	}
	pos := fd.Name.Pos()
	return &Symbol{
		Name:        fd.Name.Value,
		Kind:        SymbolFunction,
		Line:        pos.Line,
		Column:      pos.Column,
		Initialized: true,
		Params:      params,
	}
}

// --- Statements ---

func (a *Analyzer) analyzeStatement(stmt parser.Statement) {
	switch node := stmt.(type) {
	case *parser.VariableDeclaration:
		a.analyzeVariableDeclaration(node)
	case *parser.FunctionDeclaration:
		a.analyzeFunctionDeclaration(node)
	case *parser.BlockStatement:
		a.enterScope(ScopeBlock, "")
		for _, s := range node.Statements {
			a.analyzeStatement(s)
		}
		a.leaveScope()
	case *parser.ExpressionStatement:
		a.analyzeExpression(node.Expression)
	case *parser.IfStatement:
		a.analyzeExpression(node.Test)
		a.checkConditionConstant(node.Test)
		a.analyzeStatement(node.Consequent)
		if node.Alternate != nil {
			a.analyzeStatement(node.Alternate)
		}
	case *parser.WhileStatement:
		a.analyzeExpression(node.Test)
		if alwaysTruthy(node.Test) {
			a.warnAt(node.Test, "Potential infinite loop: condition is always truthy")
		} else if alwaysFalsy(node.Test) {
			a.warnAt(node.Test, "Condition is always falsy")
		}
		a.analyzeStatement(node.Body)
	case *parser.ForStatement:
		// Header declarations are scoped to the loop
		a.enterScope(ScopeBlock, "")
		if node.Init != nil {
			a.analyzeStatement(node.Init)
		}
		if node.Test != nil {
			a.analyzeExpression(node.Test)
		}
		if node.Update != nil {
			a.analyzeExpression(node.Update)
		}
		a.analyzeStatement(node.Body)
		a.leaveScope()
	case *parser.ReturnStatement:
		if len(a.funcStack) == 0 {
			a.errorAt(node, "Return statement outside of function")
		} else {
			a.funcStack[len(a.funcStack)-1].hasReturn = true
		}
		if node.Argument != nil {
			a.analyzeExpression(node.Argument)
		}
	default:
		a.warnAt(stmt, fmt.Sprintf("Unknown AST node kind: %s", parser.KindOf(stmt)))
	}
}

func (a *Analyzer) analyzeVariableDeclaration(decl *parser.VariableDeclaration) {
	kind := SymbolVariable
	if decl.Kind == "const" {
		kind = SymbolConst
	}

	for _, d := range decl.Declarations {
		name := d.Name.Value

		// The initializer is analyzed before the name is bound, so
		// `let x = x;` reports an undefined reference.
		if d.Init != nil {
			a.analyzeExpression(d.Init)
		} else if kind == SymbolConst {
			a.errorAt(d, fmt.Sprintf("Missing initializer in const declaration '%s'", name))
		}

		if existing, ok := a.current.Lookup(name); ok {
			if existing.Kind != kind {
				a.errorAt(d.Name, fmt.Sprintf("Identifier '%s' has already been declared with different kind", name))
			} else {
				a.errorAt(d.Name, fmt.Sprintf("Variable '%s' is already declared in this scope", name))
			}
			continue
		}

		pos := d.Name.Pos()
		a.current.Define(&Symbol{
			Name:        name,
			Kind:        kind,
			Line:        pos.Line,
			Column:      pos.Column,
			Initialized: d.Init != nil,
			LitClass:    a.exprClass(d.Init),
		})
	}
}

func (a *Analyzer) analyzeFunctionDeclaration(fd *parser.FunctionDeclaration) {
	name := fd.Name.Value

	// In global and function scopes the hoist pass already installed
	// the symbol (or reported the collision). Nested declarations
	// inside blocks follow the regular statement walk.
	hoistable := a.current.Kind == ScopeGlobal || a.current.Kind == ScopeFunction
	if !hoistable {
		if existing, ok := a.current.Lookup(name); ok {
			if existing.Kind != SymbolFunction {
				a.errorAt(fd.Name, fmt.Sprintf("Identifier '%s' has already been declared with different kind", name))
			} else {
				a.errorAt(fd.Name, fmt.Sprintf("Variable '%s' is already declared in this scope", name))
			}
		} else {
			a.current.Define(a.newFunctionSymbol(fd))
		}
	}

	a.funcStack = append(a.funcStack, &functionFrame{name: name})
	a.enterScope(ScopeFunction, name)

	for _, p := range fd.Parameters {
		pos := p.Pos()
		if !a.current.Define(&Symbol{
			Name:        p.Value,
			Kind:        SymbolParameter,
			Line:        pos.Line,
			Column:      pos.Column,
			Initialized: true,
		}) {
			a.errorAt(p, fmt.Sprintf("Variable '%s' is already declared in this scope", p.Value))
		}
	}

	a.hoistFunctions(fd.Body.Statements)
	for _, stmt := range fd.Body.Statements {
		a.analyzeStatement(stmt)
	}

	a.leaveScope()
	frame := a.funcStack[len(a.funcStack)-1]
	a.funcStack = a.funcStack[:len(a.funcStack)-1]
	if !frame.hasReturn && name != "main" {
		a.warnAt(fd, fmt.Sprintf("Function '%s' does not have a return statement", name))
	}
}

// --- Expressions ---

func (a *Analyzer) analyzeExpression(expr parser.Expression) {
	if expr == nil {
		return
	}

	switch node := expr.(type) {
	case *parser.Identifier:
		a.analyzeIdentifierUse(node)
	case *parser.Literal, *parser.TemplateLiteral:
		// Leaf values carry no scope effects
	case *parser.AssignmentExpression:
		a.analyzeAssignment(node)
	case *parser.ConditionalExpression:
		a.analyzeExpression(node.Test)
		a.checkConditionConstant(node.Test)
		a.analyzeExpression(node.Consequent)
		a.analyzeExpression(node.Alternate)
	case *parser.LogicalExpression:
		a.analyzeExpression(node.Left)
		a.analyzeExpression(node.Right)
	case *parser.BinaryExpression:
		a.analyzeBinary(node)
	case *parser.UnaryExpression:
		a.analyzeUnary(node)
	case *parser.UpdateExpression:
		a.analyzeUpdate(node)
	case *parser.CallExpression:
		a.analyzeCall(node)
	case *parser.MemberExpression:
		a.analyzeMember(node)
	case *parser.ArrayExpression:
		for _, el := range node.Elements {
			if el != nil {
				a.analyzeExpression(el)
			}
		}
	case *parser.ObjectExpression:
		a.analyzeObject(node)
	default:
		a.warnAt(expr, fmt.Sprintf("Unknown AST node kind: %s", parser.KindOf(expr)))
	}
}

// analyzeIdentifierUse resolves a reference, marks it used and checks
// initialization.
func (a *Analyzer) analyzeIdentifierUse(id *parser.Identifier) {
	sym, ok := a.current.Resolve(id.Value)
	if !ok {
		a.errorAt(id, fmt.Sprintf("'%s' is not defined", id.Value))
		return
	}
	sym.Used = true
	if !sym.Initialized && sym.Kind != SymbolFunction && !sym.Builtin {
		a.errorAt(id, fmt.Sprintf("Variable '%s' is used before being initialized", id.Value))
	}
}

func (a *Analyzer) analyzeAssignment(node *parser.AssignmentExpression) {
	a.analyzeExpression(node.Right)

	switch left := node.Left.(type) {
	case *parser.Identifier:
		// The left side is written, not read: it is not marked used.
		sym, ok := a.current.Resolve(left.Value)
		if !ok {
			a.errorAt(left, fmt.Sprintf("Cannot assign to undeclared variable '%s'", left.Value))
		} else if sym.Kind == SymbolConst && sym.Initialized {
			a.errorAt(left, fmt.Sprintf("Cannot assign to const variable '%s'", left.Value))
		} else {
			sym.Initialized = true
			sym.Assigned = true
			if node.Operator == "=" {
				sym.LitClass = a.exprClass(node.Right)
			}
		}
	default:
		// Member (or other) targets are analyzed without scope effects
		a.analyzeExpression(node.Left)
	}

	switch node.Operator {
	case "+=":
		a.checkAddition(node, node.Left, node.Right)
	case "-=", "*=", "/=", "%=":
		a.checkNumericOperands(node, node.Operator, node.Left, node.Right)
	}
}

func (a *Analyzer) analyzeBinary(node *parser.BinaryExpression) {
	a.analyzeExpression(node.Left)
	a.analyzeExpression(node.Right)

	switch node.Operator {
	case "==":
		a.warnAt(node, "Use '===' instead of '==' for strict comparison")
	case "!=":
		a.warnAt(node, "Use '!==' instead of '!=' for strict comparison")
	case "+":
		a.checkAddition(node, node.Left, node.Right)
	case "-", "*", "/", "%", "**":
		a.checkNumericOperands(node, node.Operator, node.Left, node.Right)
	case "<", ">", "<=", ">=":
		lc := literalClass(node.Left)
		rc := literalClass(node.Right)
		if lc != "" && rc != "" && lc != rc {
			a.warnAt(node, fmt.Sprintf("Comparing %s and %s relies on implicit type coercion", lc, rc))
		}
	}
}

func (a *Analyzer) analyzeUnary(node *parser.UnaryExpression) {
	if node.Operator == "!" {
		if inner, ok := node.Argument.(*parser.UnaryExpression); ok && inner.Operator == "!" {
			a.warnAt(node, "Double negation '!!' can be simplified")
		}
	}
	if node.Operator == "delete" {
		if id, ok := node.Argument.(*parser.Identifier); ok {
			a.warnAt(node, fmt.Sprintf("Delete of unqualified identifier '%s' in strict mode", id.Value))
		}
	}
	a.analyzeExpression(node.Argument)
}

func (a *Analyzer) analyzeUpdate(node *parser.UpdateExpression) {
	id, ok := node.Argument.(*parser.Identifier)
	if !ok {
		a.analyzeExpression(node.Argument)
		return
	}

	sym, found := a.current.Resolve(id.Value)
	if !found {
		a.errorAt(id, fmt.Sprintf("Cannot assign to undeclared variable '%s'", id.Value))
		return
	}
	if sym.Kind == SymbolConst && sym.Initialized {
		a.errorAt(id, fmt.Sprintf("Cannot assign to const variable '%s'", id.Value))
		return
	}
	// The operand is read as well as written
	sym.Used = true
	sym.Assigned = true
	sym.Initialized = true
}

func (a *Analyzer) analyzeCall(node *parser.CallExpression) {
	if id, ok := node.Callee.(*parser.Identifier); ok {
		sym, found := a.current.Resolve(id.Value)
		if !found {
			a.errorAt(id, fmt.Sprintf("'%s' is not defined", id.Value))
		} else {
			sym.Used = true
			if sym.Kind != SymbolFunction && !sym.Builtin {
				a.warnAt(id, fmt.Sprintf("'%s' is not a function", id.Value))
			}
			if sym.Kind == SymbolFunction && len(node.Arguments) != len(sym.Params) {
				a.warnAt(node, fmt.Sprintf("Function '%s' expects %d arguments, got %d",
					id.Value, len(sym.Params), len(node.Arguments)))
			}
		}
	} else {
		a.analyzeExpression(node.Callee)
	}

	for _, arg := range node.Arguments {
		a.analyzeExpression(arg)
	}
}

func (a *Analyzer) analyzeMember(node *parser.MemberExpression) {
	if obj, ok := node.Object.(*parser.Identifier); ok && obj.Value == "console" && !node.Computed {
		if prop, ok := node.Property.(*parser.Identifier); ok && !consoleMethods[prop.Value] {
			a.warnAt(node, fmt.Sprintf("Unknown console method: %s", prop.Value))
		}
	}

	a.analyzeExpression(node.Object)
	if node.Computed {
		a.analyzeExpression(node.Property)
	}
	// A non-computed property name is not an identifier reference
}

func (a *Analyzer) analyzeObject(node *parser.ObjectExpression) {
	seen := make(map[string]bool)
	for _, prop := range node.Properties {
		key := propertyKeyName(prop.Key)
		if key != "" {
			if seen[key] {
				a.warnAt(prop, fmt.Sprintf("Duplicate key '%s' in object literal", key))
			}
			seen[key] = true
		}
		a.analyzeExpression(prop.Value)
	}
}

func propertyKeyName(key parser.Expression) string {
	switch k := key.(type) {
	case *parser.Identifier:
		return k.Value
	case *parser.Literal:
		switch v := k.Value.(type) {
		case string:
			return v
		default:
			return k.Raw
		}
	}
	return ""
}

// --- Heuristics ---

// checkConditionConstant emits dead-branch warnings for if/?: tests.
func (a *Analyzer) checkConditionConstant(test parser.Expression) {
	if alwaysTruthy(test) {
		a.warnAt(test, "Condition is always truthy")
	} else if alwaysFalsy(test) {
		a.warnAt(test, "Condition is always falsy")
	}
}

// checkAddition flags string+number mixes under `+` and `+=`.
func (a *Analyzer) checkAddition(at parser.Node, left, right parser.Expression) {
	lc := a.exprClass(left)
	rc := a.exprClass(right)
	if (lc == "string" && rc == "number") || (lc == "number" && rc == "string") {
		a.warnAt(at, "Adding string and number might produce unexpected results")
	}
}

// checkNumericOperands flags string operands under numeric operators.
func (a *Analyzer) checkNumericOperands(at parser.Node, op string, left, right parser.Expression) {
	if a.exprClass(left) == "string" || a.exprClass(right) == "string" {
		a.warnAt(at, fmt.Sprintf("String operand in numeric operation '%s'", op))
	}
}

// exprClass reports the literal class of an expression: direct literal
// classes, plus classes carried on symbols from their declaration
// initializer. Resolution here does not mark the symbol used.
func (a *Analyzer) exprClass(expr parser.Expression) string {
	switch node := expr.(type) {
	case *parser.Literal:
		return literalValueClass(node.Value)
	case *parser.TemplateLiteral:
		return "string"
	case *parser.Identifier:
		if sym, ok := a.current.Resolve(node.Value); ok {
			return sym.LitClass
		}
	}
	return ""
}

// literalClass is exprClass restricted to direct literals.
func literalClass(expr parser.Expression) string {
	switch node := expr.(type) {
	case *parser.Literal:
		return literalValueClass(node.Value)
	case *parser.TemplateLiteral:
		return "string"
	}
	return ""
}

func literalValueClass(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	}
	return ""
}

// alwaysTruthy reports whether the expression is a literal that can
// never be falsy.
func alwaysTruthy(expr parser.Expression) bool {
	switch node := expr.(type) {
	case *parser.Literal:
		switch v := node.Value.(type) {
		case bool:
			return v
		case float64:
			return v != 0
		case string:
			return v != ""
		}
		return false
	case *parser.Identifier:
		return node.Value == "true"
	}
	return false
}

// alwaysFalsy reports whether the expression is a literal that can
// never be truthy.
func alwaysFalsy(expr parser.Expression) bool {
	switch node := expr.(type) {
	case *parser.Literal:
		switch v := node.Value.(type) {
		case bool:
			return !v
		case float64:
			return v == 0
		case string:
			return v == ""
		}
		return node.Value == nil
	case *parser.Identifier:
		return node.Value == "false" || node.Value == "undefined" || node.Value == "null"
	}
	return false
}

// --- Unused sweep ---

// checkUnused descends the full scope tree after the walk and reports
// declared-but-never-used bindings. Builtins and functions are exempt,
// and so are symbols that were only ever written (scenario: declared,
// later assigned, never read).
func (a *Analyzer) checkUnused(scope *Scope) {
	for _, sym := range scope.Symbols() {
		if sym.Used || sym.Builtin || sym.Kind == SymbolFunction || sym.Assigned {
			continue
		}
		pos := errors.Position{Line: sym.Line, Column: sym.Column, Source: a.source}
		a.warns = append(a.warns, &errors.SemanticWarning{
			Position: pos,
			Msg:      fmt.Sprintf("Variable '%s' is declared but never used", sym.Name),
			Node:     "Identifier",
		})
	}
	for _, child := range scope.Children {
		a.checkUnused(child)
	}
}
