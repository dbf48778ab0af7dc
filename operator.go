package glnode

// OperatorNode applies a unary or binary operator. B is nil for unary operators.
type OperatorNode struct {
	TempBase
	Op string
	A  Node
	B  Node
}

var binaryOps = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"&&": true, "||": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

var unaryOps = map[string]bool{"!": true, "~": true}

// comparisonMethods names the componentwise functions backends may use to compare vectors.
var comparisonMethods = map[string]string{
	"<":  "lessThan",
	">":  "greaterThan",
	"<=": "lessThanEqual",
	">=": "greaterThanEqual",
	"==": "equal",
	"!=": "notEqual",
}

// IsOperator reports whether op is a known unary or binary operator.
func IsOperator(op string) bool { return binaryOps[op] || unaryOps[op] }

// NewOperator returns an operator node applying op to its operands. More than
// two operands fold left: NewOperator("+", a, b, c) is (a + b) + c.
// It panics on an unknown operator or nil operands.
func NewOperator(op string, a Node, b ...Node) *OperatorNode {
	if a == nil {
		panic("nil operand to " + op)
	}
	if len(b) == 0 {
		if !unaryOps[op] {
			panic("operator " + op + " requires two operands")
		}
		return &OperatorNode{TempBase: NewTempBase(TypeNone), Op: op, A: a}
	}
	if !binaryOps[op] {
		panic("unknown binary operator " + op)
	}
	node := &OperatorNode{TempBase: NewTempBase(TypeNone), Op: op, A: a, B: b[0]}
	for _, next := range b {
		if next == nil {
			panic("nil operand to " + op)
		}
	}
	for _, next := range b[1:] {
		node = &OperatorNode{TempBase: NewTempBase(TypeNone), Op: op, A: node, B: next}
	}
	return node
}

func Add(a, b Node, more ...Node) *OperatorNode { return NewOperator("+", a, append([]Node{b}, more...)...) }
func Sub(a, b Node, more ...Node) *OperatorNode { return NewOperator("-", a, append([]Node{b}, more...)...) }
func Mul(a, b Node, more ...Node) *OperatorNode { return NewOperator("*", a, append([]Node{b}, more...)...) }
func Div(a, b Node, more ...Node) *OperatorNode { return NewOperator("/", a, append([]Node{b}, more...)...) }
func Mod(a, b Node) *OperatorNode               { return NewOperator("%", a, b) }
func Equal(a, b Node) *OperatorNode             { return NewOperator("==", a, b) }
func NotEqual(a, b Node) *OperatorNode          { return NewOperator("!=", a, b) }
func LessThan(a, b Node) *OperatorNode          { return NewOperator("<", a, b) }
func GreaterThan(a, b Node) *OperatorNode       { return NewOperator(">", a, b) }
func LessThanEqual(a, b Node) *OperatorNode     { return NewOperator("<=", a, b) }
func GreaterThanEqual(a, b Node) *OperatorNode  { return NewOperator(">=", a, b) }
func And(a, b Node, more ...Node) *OperatorNode { return NewOperator("&&", a, append([]Node{b}, more...)...) }
func Or(a, b Node, more ...Node) *OperatorNode  { return NewOperator("||", a, append([]Node{b}, more...)...) }
func Not(a Node) *OperatorNode                  { return NewOperator("!", a) }
func BitAnd(a, b Node) *OperatorNode            { return NewOperator("&", a, b) }
func BitOr(a, b Node) *OperatorNode             { return NewOperator("|", a, b) }
func BitXor(a, b Node) *OperatorNode            { return NewOperator("^", a, b) }
func BitNot(a Node) *OperatorNode               { return NewOperator("~", a) }
func ShiftLeft(a, b Node) *OperatorNode         { return NewOperator("<<", a, b) }
func ShiftRight(a, b Node) *OperatorNode        { return NewOperator(">>", a, b) }

func (op *OperatorNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	if err := fn(userData, "a", &op.A); err != nil {
		return err
	}
	return fn(userData, "b", &op.B)
}

func (op *OperatorNode) optionalChild(name string) bool { return name == "b" && unaryOps[op.Op] }

func (op *OperatorNode) CustomCacheKey() uint64 { return HashString(op.Op) }

func (op *OperatorNode) isComparison() bool {
	switch op.Op {
	case "<", ">", "<=", ">=":
		return true
	}
	return false
}

func (op *OperatorNode) isBitwise() bool {
	switch op.Op {
	case "~", "&", "|", "^", "<<", ">>":
		return true
	}
	return false
}

func (op *OperatorNode) isLogical() bool {
	switch op.Op {
	case "!", "==", "!=", "&&", "||":
		return true
	}
	return false
}

func (op *OperatorNode) operandTypes(b Builder) (ta, tb Type) {
	ta = op.A.NodeType(b, TypeNone)
	if op.B != nil {
		tb = op.B.NodeType(b, TypeNone)
	}
	return ta, tb
}

// NodeType implements the operator type promotion rules. Comparisons return
// bool or a bool vector as wide as the output or widest operand. Bitwise
// operators return the integer version of the left operand. Arithmetic returns
// the wider operand with matrix-vector products yielding vectors.
func (op *OperatorNode) NodeType(b Builder, output Type) Type {
	ta, tb := op.operandTypes(b)
	switch {
	case ta == TypeVoid || tb == TypeVoid:
		return TypeVoid
	case op.Op == "%":
		return ta
	case op.isBitwise():
		return ta.IntegerType()
	case op.isLogical():
		return TypeBool
	case op.isComparison():
		length := max(ta.Length(), tb.Length())
		if output != TypeNone {
			length = output.Length()
		}
		if length > 1 {
			return TypeFromLength(length, TypeBool)
		}
		return TypeBool
	}
	if ta.IsMatrix() {
		switch {
		case tb == TypeFloat || tb.IsMatrix():
			return ta
		case tb.IsVector():
			return ta.VectorFromMatrix()
		}
	} else if tb.IsMatrix() {
		switch {
		case ta == TypeFloat:
			return tb
		case ta.IsVector():
			return tb.VectorFromMatrix()
		}
	}
	if tb.Length() > ta.Length() {
		return tb
	}
	return ta
}

// coerce returns the types operands are generated with for result type typ.
func (op *OperatorNode) coerce(b Builder, typ Type) (ta, tb Type) {
	if typ == TypeVoid {
		return typ, typ
	}
	ta, tb = op.operandTypes(b)
	switch {
	case op.isComparison() || op.Op == "==" || op.Op == "!=":
		if ta.IsVector() {
			tb = ta
		} else if ta != tb {
			ta, tb = TypeFloat, TypeFloat
		}
	case op.Op == "<<" || op.Op == ">>":
		ta = typ
		tb = tb.WithComponent(TypeUint)
	case op.Op == "&&" || op.Op == "||" || op.Op == "!":
		ta, tb = TypeBool, TypeBool
	case ta.IsMatrix():
		switch {
		case tb == TypeFloat:
		case tb.IsVector():
			tb = ta.VectorFromMatrix()
		default:
			ta, tb = typ, typ
		}
	case tb.IsMatrix():
		switch {
		case ta == TypeFloat:
		case ta.IsVector():
			ta = tb.VectorFromMatrix()
		default:
			ta, tb = typ, typ
		}
	default:
		ta, tb = typ, typ
	}
	return ta, tb
}

func (op *OperatorNode) Generate(b Builder, output Type) string {
	typ := op.NodeType(b, output)
	ta, tb := op.coerce(b, typ)
	a := Code(b, op.A, ta)
	if op.B == nil {
		return b.Format("("+op.Op+a+")", typ, output)
	}
	c := Code(b, op.B, tb)
	if output == TypeVoid {
		return a + " " + op.Op + " " + c
	}
	if method, ok := comparisonMethods[op.Op]; ok && ta.IsVector() {
		cmpType := TypeFromLength(ta.Length(), TypeBool)
		if fn := b.Method(method, cmpType); fn != "" {
			return b.Format(fn+"( "+a+", "+c+" )", cmpType, output)
		}
		return b.Format("( "+a+" "+op.Op+" "+c+" )", cmpType, output)
	}
	if op.Op == "%" && !tb.IsInteger() {
		if fn := b.Method("mod", typ); fn != "" {
			return b.Format(fn+"( "+a+", "+c+" )", typ, output)
		}
	}
	if fn := b.FunctionOperator(op.Op); fn != "" {
		return b.Format(fn+"( "+a+", "+c+" )", typ, output)
	}
	return b.Format("( "+a+" "+op.Op+" "+c+" )", typ, output)
}
