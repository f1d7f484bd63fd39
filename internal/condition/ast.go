package condition

// Node is an expression in a compiled condition.
type Node interface {
	eval(env *Env) (any, error)
}

// Ident is a name reference.
type Ident struct {
	Name string
	Pos  int
}

// Literal is a constant: int64, float64, string, bool or nil.
type Literal struct {
	Value any
}

// UnaryExpr is -x, +x or not x.
type UnaryExpr struct {
	Op TokenType
	X  Node
}

// BinaryExpr is an arithmetic operation.
type BinaryExpr struct {
	Op   TokenType
	X, Y Node
}

// BoolExpr is a short-circuit and/or.
type BoolExpr struct {
	Op   TokenType
	X, Y Node
}

// CompareExpr is a comparison chain: a < b <= c means
// a < b and b <= c with b evaluated once.
type CompareExpr struct {
	First    Node
	Ops      []TokenType
	Operands []Node
}

// CondExpr is Then if Test else Else.
type CondExpr struct {
	Then, Test, Else Node
}

// CallExpr is Fn(Args...).
type CallExpr struct {
	Fn   Node
	Args []Node
}

// IndexExpr is X[Index].
type IndexExpr struct {
	X, Index Node
}

// AttrExpr is X.Name.
type AttrExpr struct {
	X    Node
	Name string
}

// ListLit is [a, b, ...].
type ListLit struct {
	Elems []Node
}

// TupleLit is (a, b, ...).
type TupleLit struct {
	Elems []Node
}

// Comprehension is [Elem for Targets in Iter if Conds...]. A generator
// argument such as all(x > 0 for x in l) is evaluated the same way.
type Comprehension struct {
	Elem    Node
	Targets []string
	Iter    Node
	Conds   []Node
}
