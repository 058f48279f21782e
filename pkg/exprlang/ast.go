package exprlang

import "github.com/forgekit/forge-engine/pkg/jsonvalue"

// UnaryOp is the operator of a unary expression.
type UnaryOp uint8

const (
	OpNegate UnaryOp = iota
	OpNot
)

// BinaryOp is the operator of a binary expression.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpAnd
	OpOr
	OpEq
	OpNotEq
	OpLt
	OpLte
	OpGt
	OpGte
)

// ExprKind discriminates the Expr sum type (spec section 3, "Expression AST").
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprVar
	ExprUnary
	ExprBinary
	ExprCall
)

// Expr is the expression AST's sum type: pure value data with no
// back-references, as spec section 9 requires.
type Expr struct {
	Kind ExprKind

	// ExprLiteral
	Literal *jsonvalue.Value

	// ExprVar
	Path []string

	// ExprUnary
	UnaryOp UnaryOp
	Operand *Expr

	// ExprBinary
	BinaryOp BinaryOp
	Left     *Expr
	Right    *Expr

	// ExprCall
	Callee string
	Args   []*Expr
}
