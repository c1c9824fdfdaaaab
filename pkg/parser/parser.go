package parser

import (
	"fmt"
	"strconv"
	"strings"

	"mirlo/pkg/errors"
	"mirlo/pkg/lexer"
	"mirlo/pkg/source"
)

const debugParser = false

func debugPrint(format string, args ...interface{}) {
	if debugParser {
		fmt.Printf("[Parser Debug] "+format+"\n", args...)
	}
}

// Parser takes a lexer and builds an AST.
type Parser struct {
	l      *lexer.Lexer
	source *source.SourceFile // cached from lexer
	errs   []errors.Diagnostic

	curToken  lexer.Token
	peekToken lexer.Token

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression // Arg is the left side expression
)

// Precedence levels, lowest to highest. The ladder of the dialect:
// assignment < ternary < logical (&& and || together) < equality <
// relational < additive < multiplicative (including **) < prefix <
// postfix < call < member.
const (
	_ int = iota
	LOWEST
	ASSIGNMENT  // =, +=, -=, *=, /=, %=
	TERNARY     // ?:
	LOGICAL     // && and ||
	EQUALS      // ==, !=, ===, !==
	LESSGREATER // <, >, <=, >=, in, instanceof
	SUM         // + or -
	PRODUCT     // *, /, %, **
	PREFIX      // !x, -x, +x, ++x, typeof x
	POSTFIX     // x++, x--
	CALL        // f(x)
	MEMBER      // obj.prop, obj[expr]
)

var precedences = map[lexer.TokenType]int{
	lexer.ASSIGN:           ASSIGNMENT,
	lexer.PLUS_ASSIGN:      ASSIGNMENT,
	lexer.MINUS_ASSIGN:     ASSIGNMENT,
	lexer.ASTERISK_ASSIGN:  ASSIGNMENT,
	lexer.SLASH_ASSIGN:     ASSIGNMENT,
	lexer.REMAINDER_ASSIGN: ASSIGNMENT,

	lexer.QUESTION: TERNARY,

	lexer.LOGICAL_AND: LOGICAL,
	lexer.LOGICAL_OR:  LOGICAL,

	lexer.EQ:            EQUALS,
	lexer.NOT_EQ:        EQUALS,
	lexer.STRICT_EQ:     EQUALS,
	lexer.STRICT_NOT_EQ: EQUALS,

	lexer.LT:         LESSGREATER,
	lexer.GT:         LESSGREATER,
	lexer.LE:         LESSGREATER,
	lexer.GE:         LESSGREATER,
	lexer.IN:         LESSGREATER,
	lexer.INSTANCEOF: LESSGREATER,

	lexer.PLUS:  SUM,
	lexer.MINUS: SUM,

	lexer.ASTERISK:  PRODUCT,
	lexer.SLASH:     PRODUCT,
	lexer.REMAINDER: PRODUCT,
	lexer.EXPONENT:  PRODUCT,

	lexer.INC: POSTFIX,
	lexer.DEC: POSTFIX,

	lexer.LPAREN: CALL,

	lexer.DOT:      MEMBER,
	lexer.LBRACKET: MEMBER,
}

// statementStart is the synchronization set for panic-mode recovery.
var statementStart = map[lexer.TokenType]bool{
	lexer.FUNCTION: true,
	lexer.VAR:      true,
	lexer.LET:      true,
	lexer.CONST:    true,
	lexer.IF:       true,
	lexer.WHILE:    true,
	lexer.FOR:      true,
	lexer.RETURN:   true,
}

// NewParser creates a parser over the given lexer.
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		source: l.Source(),
	}

	p.prefixParseFns = make(map[lexer.TokenType]prefixParseFn)
	p.registerPrefix(lexer.IDENT, p.parseIdentifier)
	p.registerPrefix(lexer.NUMBER, p.parseNumberLiteral)
	p.registerPrefix(lexer.STRING, p.parseStringLiteral)
	p.registerPrefix(lexer.TEMPLATE, p.parseTemplateLiteral)
	p.registerPrefix(lexer.TRUE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.FALSE, p.parseBooleanLiteral)
	p.registerPrefix(lexer.NULL, p.parseNullLiteral)
	p.registerPrefix(lexer.UNDEFINED, p.parseUndefinedLiteral)
	p.registerPrefix(lexer.BANG, p.parseUnaryExpression)
	p.registerPrefix(lexer.MINUS, p.parseUnaryExpression)
	p.registerPrefix(lexer.PLUS, p.parseUnaryExpression)
	p.registerPrefix(lexer.TYPEOF, p.parseUnaryExpression)
	p.registerPrefix(lexer.VOID, p.parseUnaryExpression)
	p.registerPrefix(lexer.DELETE, p.parseUnaryExpression)
	p.registerPrefix(lexer.INC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.DEC, p.parsePrefixUpdateExpression)
	p.registerPrefix(lexer.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(lexer.LBRACKET, p.parseArrayExpression)
	p.registerPrefix(lexer.LBRACE, p.parseObjectExpression)

	p.infixParseFns = make(map[lexer.TokenType]infixParseFn)
	for _, t := range []lexer.TokenType{
		lexer.EQ, lexer.NOT_EQ, lexer.STRICT_EQ, lexer.STRICT_NOT_EQ,
		lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.IN, lexer.INSTANCEOF,
		lexer.PLUS, lexer.MINUS, lexer.ASTERISK, lexer.SLASH,
		lexer.REMAINDER, lexer.EXPONENT,
	} {
		p.registerInfix(t, p.parseBinaryExpression)
	}
	p.registerInfix(lexer.LOGICAL_AND, p.parseLogicalExpression)
	p.registerInfix(lexer.LOGICAL_OR, p.parseLogicalExpression)
	for _, t := range []lexer.TokenType{
		lexer.ASSIGN, lexer.PLUS_ASSIGN, lexer.MINUS_ASSIGN,
		lexer.ASTERISK_ASSIGN, lexer.SLASH_ASSIGN, lexer.REMAINDER_ASSIGN,
	} {
		p.registerInfix(t, p.parseAssignmentExpression)
	}
	p.registerInfix(lexer.QUESTION, p.parseConditionalExpression)
	p.registerInfix(lexer.LPAREN, p.parseCallExpression)
	p.registerInfix(lexer.DOT, p.parseMemberExpression)
	p.registerInfix(lexer.LBRACKET, p.parseComputedMemberExpression)
	p.registerInfix(lexer.INC, p.parsePostfixUpdateExpression)
	p.registerInfix(lexer.DEC, p.parsePostfixUpdateExpression)

	// Read two tokens so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(t lexer.TokenType, fn prefixParseFn) {
	p.prefixParseFns[t] = fn
}

func (p *Parser) registerInfix(t lexer.TokenType, fn infixParseFn) {
	p.infixParseFns[t] = fn
}

// Errors returns the syntax errors recorded so far, in source order.
func (p *Parser) Errors() []errors.Diagnostic {
	return p.errs
}

// nextToken advances the token window. Comment tokens never reach the
// grammar; they are filtered here.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
	for p.peekToken.Type == lexer.COMMENT {
		p.peekToken = p.l.NextToken()
	}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(tok lexer.Token, msg string) {
	p.errs = append(p.errs, &errors.SyntaxError{
		Position: errors.Position{
			Line:     tok.Line,
			Column:   tok.Column,
			StartPos: tok.StartPos,
			EndPos:   tok.EndPos,
			Source:   p.source,
		},
		Msg: msg,
	})
}

func tokenDesc(tok lexer.Token) string {
	if tok.Type == lexer.EOF {
		return "end of input"
	}
	return "'" + tok.Literal + "'"
}

// expectPeek advances when the next token matches, records an error
// otherwise.
func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.addError(p.peekToken, fmt.Sprintf("Expected next token to be '%s', got %s", t, tokenDesc(p.peekToken)))
	return false
}

// expectSemicolon consumes a terminating ';'. A missing semicolon is
// recorded but does not abort the statement: the cursor is already at a
// statement boundary, so no synchronization is needed.
func (p *Parser) expectSemicolon() {
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return
	}
	p.addError(p.peekToken, fmt.Sprintf("Expected ';' after statement, got %s", tokenDesc(p.peekToken)))
}

// synchronize implements panic-mode recovery: advance one token, then
// skip until a ';' (consumed), a statement-starting keyword, or EOF.
// The unconditional first advance guarantees forward progress.
func (p *Parser) synchronize() {
	p.nextToken()
	for !p.curTokenIs(lexer.EOF) {
		if p.curTokenIs(lexer.SEMICOLON) {
			p.nextToken()
			return
		}
		if statementStart[p.curToken.Type] {
			return
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream into a Program node.
func (p *Parser) ParseProgram() *Program {
	program := &Program{}

	for !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}

	return program
}

// --- Statements ---

// parseStatement parses one statement, leaving curToken on the
// statement's last token. Returns nil after recording an error; the
// caller synchronizes.
func (p *Parser) parseStatement() Statement {
	switch p.curToken.Type {
	case lexer.FUNCTION:
		return p.parseFunctionDeclaration()
	case lexer.VAR, lexer.LET, lexer.CONST:
		return p.parseVariableDeclaration()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.WHILE:
		return p.parseWhileStatement()
	case lexer.FOR:
		return p.parseForStatement()
	case lexer.RETURN:
		return p.parseReturnStatement()
	case lexer.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *Parser) parseVariableDeclaration() Statement {
	decl := &VariableDeclaration{Token: p.curToken, Kind: p.curToken.Literal}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil
		}
		d := &VariableDeclarator{
			Token: p.curToken,
			Name:  &Identifier{Token: p.curToken, Value: p.curToken.Literal},
		}
		if p.peekTokenIs(lexer.ASSIGN) {
			p.nextToken() // =
			p.nextToken() // first token of the initializer
			d.Init = p.parseExpression(LOWEST)
			if d.Init == nil {
				return nil
			}
		}
		decl.Declarations = append(decl.Declarations, d)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	p.expectSemicolon()
	return decl
}

func (p *Parser) parseFunctionDeclaration() Statement {
	decl := &FunctionDeclaration{Token: p.curToken}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	decl.Name = &Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	decl.Parameters = params

	if !p.expectPeek(lexer.LBRACE) {
		return nil
	}
	body, _ := p.parseBlockStatement().(*BlockStatement)
	if body == nil {
		return nil
	}
	decl.Body = body

	return decl
}

// parseFunctionParameters parses `(a, b, c)` with curToken on '('.
func (p *Parser) parseFunctionParameters() ([]*Identifier, bool) {
	params := []*Identifier{}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(lexer.IDENT) {
			return nil, false
		}
		params = append(params, &Identifier{Token: p.curToken, Value: p.curToken.Literal})

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseBlockStatement() Statement {
	block := &BlockStatement{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
			p.nextToken()
		} else {
			p.synchronize()
		}
	}

	if p.curTokenIs(lexer.EOF) {
		p.addError(p.curToken, "Expected next token to be '}', got end of input")
	}
	return block
}

func (p *Parser) parseIfStatement() Statement {
	stmt := &IfStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Consequent = p.parseStatement()
	if stmt.Consequent == nil {
		return nil
	}

	if p.peekTokenIs(lexer.ELSE) {
		p.nextToken() // else
		p.nextToken() // first token of the alternate
		stmt.Alternate = p.parseStatement()
		if stmt.Alternate == nil {
			return nil
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() Statement {
	stmt := &WhileStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}
	p.nextToken()
	stmt.Test = p.parseExpression(LOWEST)
	if stmt.Test == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

// parseForStatement parses the three-part header. The init position
// accepts a declaration or an expression statement; every part is
// optional.
func (p *Parser) parseForStatement() Statement {
	stmt := &ForStatement{Token: p.curToken}

	if !p.expectPeek(lexer.LPAREN) {
		return nil
	}

	// Init
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken() // empty init; curToken = ';'
	} else {
		p.nextToken()
		var init Statement
		switch p.curToken.Type {
		case lexer.VAR, lexer.LET, lexer.CONST:
			init = p.parseVariableDeclaration()
		default:
			init = p.parseExpressionStatement()
		}
		if init == nil {
			return nil
		}
		stmt.Init = init
	}

	// Test
	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken() // empty test; curToken = ';'
	} else {
		p.nextToken()
		stmt.Test = p.parseExpression(LOWEST)
		if stmt.Test == nil {
			return nil
		}
		if !p.expectPeek(lexer.SEMICOLON) {
			return nil
		}
	}

	// Update
	if !p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		stmt.Update = p.parseExpression(LOWEST)
		if stmt.Update == nil {
			return nil
		}
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}

	p.nextToken()
	stmt.Body = p.parseStatement()
	if stmt.Body == nil {
		return nil
	}

	return stmt
}

func (p *Parser) parseReturnStatement() Statement {
	stmt := &ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(lexer.SEMICOLON) {
		p.nextToken()
		return stmt
	}
	if p.peekTokenIs(lexer.RBRACE) || p.peekTokenIs(lexer.EOF) {
		p.expectSemicolon() // records the missing ';'
		return stmt
	}

	p.nextToken()
	stmt.Argument = p.parseExpression(LOWEST)
	if stmt.Argument == nil {
		return nil
	}

	p.expectSemicolon()
	return stmt
}

func (p *Parser) parseExpressionStatement() Statement {
	stmt := &ExpressionStatement{Token: p.curToken}

	stmt.Expression = p.parseExpression(LOWEST)
	if stmt.Expression == nil {
		return nil
	}

	p.expectSemicolon()
	return stmt
}

// --- Expressions ---

// parseExpression is the Pratt core. Expression parse functions are
// called with curToken on their first (or operator) token and leave
// curToken on their last token.
func (p *Parser) parseExpression(precedence int) Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.addError(p.curToken, fmt.Sprintf("Unexpected token: %s", tokenDesc(p.curToken)))
		// Advance one token to guarantee progress. Synchronization
		// points stay put so panic-mode recovery can resume on them.
		if !p.curTokenIs(lexer.EOF) && !p.curTokenIs(lexer.SEMICOLON) && !statementStart[p.curToken.Type] {
			p.nextToken()
		}
		return nil
	}
	left := prefix()
	if left == nil {
		return nil
	}

	for !p.peekTokenIs(lexer.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
		if left == nil {
			return nil
		}
	}

	return left
}

func (p *Parser) parseIdentifier() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseNumberLiteral() Expression {
	lit := &Literal{Token: p.curToken, Raw: p.curToken.Literal}

	lexeme := p.curToken.Literal
	var value float64
	var err error
	switch {
	case strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X"):
		var iv int64
		iv, err = strconv.ParseInt(lexeme[2:], 16, 64)
		value = float64(iv)
	case strings.HasPrefix(lexeme, "0b") || strings.HasPrefix(lexeme, "0B"):
		var iv int64
		iv, err = strconv.ParseInt(lexeme[2:], 2, 64)
		value = float64(iv)
	default:
		value, err = strconv.ParseFloat(lexeme, 64)
	}
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("Could not parse '%s' as number", lexeme))
		return nil
	}

	lit.Value = value
	return lit
}

func (p *Parser) parseStringLiteral() Expression {
	lexeme := p.curToken.Literal
	body := lexeme
	if len(lexeme) >= 2 {
		body = lexeme[1 : len(lexeme)-1]
	}
	return &Literal{Token: p.curToken, Value: body, Raw: lexeme}
}

func (p *Parser) parseTemplateLiteral() Expression {
	return &TemplateLiteral{Token: p.curToken, Raw: p.curToken.Literal}
}

func (p *Parser) parseBooleanLiteral() Expression {
	return &Literal{Token: p.curToken, Value: p.curTokenIs(lexer.TRUE), Raw: p.curToken.Literal}
}

func (p *Parser) parseNullLiteral() Expression {
	return &Literal{Token: p.curToken, Value: nil, Raw: p.curToken.Literal}
}

// parseUndefinedLiteral produces an Identifier named "undefined"; it
// resolves to the preloaded builtin symbol during analysis.
func (p *Parser) parseUndefinedLiteral() Expression {
	return &Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseUnaryExpression() Expression {
	expr := &UnaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Prefix:   true,
	}
	p.nextToken()
	expr.Argument = p.parseExpression(PREFIX)
	if expr.Argument == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePrefixUpdateExpression() Expression {
	expr := &UpdateExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Prefix:   true,
	}
	p.nextToken()
	expr.Argument = p.parseExpression(PREFIX)
	if expr.Argument == nil {
		return nil
	}
	return expr
}

func (p *Parser) parsePostfixUpdateExpression(left Expression) Expression {
	return &UpdateExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Argument: left,
		Prefix:   false,
	}
}

func (p *Parser) parseBinaryExpression(left Expression) Expression {
	expr := &BinaryExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseLogicalExpression(left Expression) Expression {
	expr := &LogicalExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	if expr.Right == nil {
		return nil
	}
	return expr
}

// parseAssignmentExpression is right-associative: the right side parses
// at one level below the operator.
func (p *Parser) parseAssignmentExpression(left Expression) Expression {
	expr := &AssignmentExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence - 1)
	if expr.Right == nil {
		return nil
	}
	return expr
}

func (p *Parser) parseConditionalExpression(test Expression) Expression {
	expr := &ConditionalExpression{Token: p.curToken, Test: test}

	p.nextToken()
	expr.Consequent = p.parseExpression(LOWEST)
	if expr.Consequent == nil {
		return nil
	}

	if !p.expectPeek(lexer.COLON) {
		return nil
	}

	p.nextToken()
	expr.Alternate = p.parseExpression(TERNARY - 1) // right-associative
	if expr.Alternate == nil {
		return nil
	}

	return expr
}

func (p *Parser) parseGroupedExpression() Expression {
	p.nextToken()
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseCallExpression(callee Expression) Expression {
	expr := &CallExpression{Token: p.curToken, Callee: callee}

	if p.peekTokenIs(lexer.RPAREN) {
		p.nextToken()
		return expr
	}

	for {
		p.nextToken()
		arg := p.parseExpression(LOWEST)
		if arg == nil {
			return nil
		}
		expr.Arguments = append(expr.Arguments, arg)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RPAREN) {
		return nil
	}
	return expr
}

func (p *Parser) parseMemberExpression(object Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: object, Computed: false}

	if !p.expectPeek(lexer.IDENT) {
		return nil
	}
	expr.Property = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
	return expr
}

func (p *Parser) parseComputedMemberExpression(object Expression) Expression {
	expr := &MemberExpression{Token: p.curToken, Object: object, Computed: true}

	p.nextToken()
	expr.Property = p.parseExpression(LOWEST)
	if expr.Property == nil {
		return nil
	}

	if !p.expectPeek(lexer.RBRACKET) {
		return nil
	}
	return expr
}

func (p *Parser) parseArrayExpression() Expression {
	arr := &ArrayExpression{Token: p.curToken}

	for {
		if p.peekTokenIs(lexer.RBRACKET) {
			// A dangling ',' before ']' is a hole
			if p.curTokenIs(lexer.COMMA) {
				arr.Elements = append(arr.Elements, nil)
			}
			p.nextToken()
			return arr
		}
		if p.peekTokenIs(lexer.COMMA) {
			// ',' with no preceding value: hole
			arr.Elements = append(arr.Elements, nil)
			p.nextToken()
			continue
		}

		p.nextToken()
		el := p.parseExpression(LOWEST)
		if el == nil {
			return nil
		}
		arr.Elements = append(arr.Elements, el)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek(lexer.RBRACKET) {
			return nil
		}
		return arr
	}
}

func (p *Parser) parseObjectExpression() Expression {
	obj := &ObjectExpression{Token: p.curToken}

	if p.peekTokenIs(lexer.RBRACE) {
		p.nextToken()
		return obj
	}

	for {
		p.nextToken() // key token
		prop := &Property{Token: p.curToken, Kind: "init"}

		switch p.curToken.Type {
		case lexer.IDENT:
			prop.Key = &Identifier{Token: p.curToken, Value: p.curToken.Literal}
		case lexer.STRING:
			prop.Key = p.parseStringLiteral()
		case lexer.NUMBER:
			prop.Key = p.parseNumberLiteral()
			if prop.Key == nil {
				return nil
			}
		default:
			p.addError(p.curToken, fmt.Sprintf("Unexpected token: %s", tokenDesc(p.curToken)))
			if !p.curTokenIs(lexer.EOF) {
				p.nextToken()
			}
			return nil
		}

		if !p.expectPeek(lexer.COLON) {
			return nil
		}
		p.nextToken()
		prop.Value = p.parseExpression(LOWEST)
		if prop.Value == nil {
			return nil
		}
		obj.Properties = append(obj.Properties, prop)

		if p.peekTokenIs(lexer.COMMA) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.expectPeek(lexer.RBRACE) {
		return nil
	}
	return obj
}
