package parser

// Children returns a node's direct children in source order. Array
// holes and absent optional children are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		out = append(out, c)
	}
	addExpr := func(e Expression) {
		if e != nil {
			out = append(out, e)
		}
	}

	switch node := n.(type) {
	case *Program:
		for _, s := range node.Statements {
			add(s)
		}
	case *VariableDeclaration:
		for _, d := range node.Declarations {
			add(d)
		}
	case *VariableDeclarator:
		add(node.Name)
		addExpr(node.Init)
	case *FunctionDeclaration:
		add(node.Name)
		for _, param := range node.Parameters {
			add(param)
		}
		add(node.Body)
	case *BlockStatement:
		for _, s := range node.Statements {
			add(s)
		}
	case *ExpressionStatement:
		addExpr(node.Expression)
	case *IfStatement:
		addExpr(node.Test)
		add(node.Consequent)
		if node.Alternate != nil {
			add(node.Alternate)
		}
	case *WhileStatement:
		addExpr(node.Test)
		add(node.Body)
	case *ForStatement:
		if node.Init != nil {
			add(node.Init)
		}
		addExpr(node.Test)
		addExpr(node.Update)
		add(node.Body)
	case *ReturnStatement:
		addExpr(node.Argument)
	case *AssignmentExpression:
		addExpr(node.Left)
		addExpr(node.Right)
	case *ConditionalExpression:
		addExpr(node.Test)
		addExpr(node.Consequent)
		addExpr(node.Alternate)
	case *LogicalExpression:
		addExpr(node.Left)
		addExpr(node.Right)
	case *BinaryExpression:
		addExpr(node.Left)
		addExpr(node.Right)
	case *UnaryExpression:
		addExpr(node.Argument)
	case *UpdateExpression:
		addExpr(node.Argument)
	case *CallExpression:
		addExpr(node.Callee)
		for _, a := range node.Arguments {
			addExpr(a)
		}
	case *MemberExpression:
		addExpr(node.Object)
		addExpr(node.Property)
	case *ArrayExpression:
		for _, e := range node.Elements {
			addExpr(e)
		}
	case *ObjectExpression:
		for _, prop := range node.Properties {
			add(prop)
		}
	case *Property:
		addExpr(node.Key)
		addExpr(node.Value)
	}

	return out
}

// Walk traverses the AST rooted at n in pre-order, calling visit for
// every node. When visit returns false the node's children are skipped.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range Children(n) {
		Walk(child, visit)
	}
}
