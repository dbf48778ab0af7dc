package glnode

import (
	"log/slog"
	"strings"

	"github.com/chewxy/math32"
)

// Math constants available as nodes.
var (
	PI       = Float(math32.Pi)
	TwoPI    = Float(2 * math32.Pi)
	HalfPI   = Float(math32.Pi / 2)
	Epsilon  = Float(1e-6)
	Infinity = Float(math32.MaxFloat32)
)

// Math method names.
const (
	MathAbs                = "abs"
	MathAcos               = "acos"
	MathAll                = "all"
	MathAny                = "any"
	MathAsin               = "asin"
	MathAtan               = "atan"
	MathAtan2              = "atan2"
	MathCeil               = "ceil"
	MathClamp              = "clamp"
	MathCos                = "cos"
	MathCross              = "cross"
	MathDFdx               = "dFdx"
	MathDFdy               = "dFdy"
	MathDegrees            = "degrees"
	MathDifference         = "difference"
	MathDistance           = "distance"
	MathDot                = "dot"
	MathExp                = "exp"
	MathExp2               = "exp2"
	MathFaceforward        = "faceforward"
	MathFloor              = "floor"
	MathFract              = "fract"
	MathFwidth             = "fwidth"
	MathInverseSqrt        = "inversesqrt"
	MathLength             = "length"
	MathLog                = "log"
	MathLog2               = "log2"
	MathMax                = "max"
	MathMin                = "min"
	MathMix                = "mix"
	MathMod                = "mod"
	MathNegate             = "negate"
	MathNormalize          = "normalize"
	MathOneMinus           = "oneMinus"
	MathPow                = "pow"
	MathRadians            = "radians"
	MathReciprocal         = "reciprocal"
	MathReflect            = "reflect"
	MathRefract            = "refract"
	MathRound              = "round"
	MathSign               = "sign"
	MathSin                = "sin"
	MathSmoothstep         = "smoothstep"
	MathSqrt               = "sqrt"
	MathStep               = "step"
	MathTan                = "tan"
	MathTransformDirection = "transformDirection"
	MathTrunc              = "trunc"
)

var mathArity = map[string]int{
	MathAbs: 1, MathAcos: 1, MathAll: 1, MathAny: 1, MathAsin: 1, MathAtan: 1, MathCeil: 1,
	MathCos: 1, MathDFdx: 1, MathDFdy: 1, MathDegrees: 1, MathExp: 1, MathExp2: 1, MathFloor: 1,
	MathFract: 1, MathFwidth: 1, MathInverseSqrt: 1, MathLength: 1, MathLog: 1, MathLog2: 1,
	MathNegate: 1, MathNormalize: 1, MathOneMinus: 1, MathRadians: 1, MathReciprocal: 1,
	MathRound: 1, MathSign: 1, MathSin: 1, MathSqrt: 1, MathTan: 1, MathTrunc: 1,

	MathAtan2: 2, MathCross: 2, MathDifference: 2, MathDistance: 2, MathDot: 2, MathMax: 2,
	MathMin: 2, MathMod: 2, MathPow: 2, MathReflect: 2, MathStep: 2, MathTransformDirection: 2,

	MathClamp: 3, MathFaceforward: 3, MathMix: 3, MathRefract: 3, MathSmoothstep: 3,
}

// MathArity returns the argument count of a math method, or 0 if unknown.
func MathArity(method string) int { return mathArity[method] }

// MathNode applies a builtin math function to up to three operands.
type MathNode struct {
	TempBase
	Method  string
	A, B, C Node
}

// NewMath returns a node applying method to its arguments.
// It panics if method is unknown or the argument count does not match.
func NewMath(method string, args ...Node) *MathNode {
	arity, ok := mathArity[method]
	if !ok {
		panic("unknown math method " + method)
	} else if len(args) != arity {
		panic("math method " + method + " argument count mismatch")
	}
	m := &MathNode{TempBase: NewTempBase(TypeNone), Method: method}
	for i, arg := range args {
		if arg == nil {
			panic("nil argument to " + method)
		}
		switch i {
		case 0:
			m.A = arg
		case 1:
			m.B = arg
		case 2:
			m.C = arg
		}
	}
	return m
}

func Abs(x Node) *MathNode                { return NewMath(MathAbs, x) }
func Sin(x Node) *MathNode                { return NewMath(MathSin, x) }
func Cos(x Node) *MathNode                { return NewMath(MathCos, x) }
func Tan(x Node) *MathNode                { return NewMath(MathTan, x) }
func Atan(y Node) *MathNode               { return NewMath(MathAtan, y) }
func Atan2(y, x Node) *MathNode           { return NewMath(MathAtan2, y, x) }
func Sqrt(x Node) *MathNode               { return NewMath(MathSqrt, x) }
func InverseSqrt(x Node) *MathNode        { return NewMath(MathInverseSqrt, x) }
func Exp(x Node) *MathNode                { return NewMath(MathExp, x) }
func Log(x Node) *MathNode                { return NewMath(MathLog, x) }
func Floor(x Node) *MathNode              { return NewMath(MathFloor, x) }
func Ceil(x Node) *MathNode               { return NewMath(MathCeil, x) }
func Fract(x Node) *MathNode              { return NewMath(MathFract, x) }
func Sign(x Node) *MathNode               { return NewMath(MathSign, x) }
func Length(x Node) *MathNode             { return NewMath(MathLength, x) }
func Normalize(x Node) *MathNode          { return NewMath(MathNormalize, x) }
func Negate(x Node) *MathNode             { return NewMath(MathNegate, x) }
func OneMinus(x Node) *MathNode           { return NewMath(MathOneMinus, x) }
func Reciprocal(x Node) *MathNode         { return NewMath(MathReciprocal, x) }
func DFdx(x Node) *MathNode               { return NewMath(MathDFdx, x) }
func DFdy(x Node) *MathNode               { return NewMath(MathDFdy, x) }
func Fwidth(x Node) *MathNode             { return NewMath(MathFwidth, x) }
func All(x Node) *MathNode                { return NewMath(MathAll, x) }
func AnyOf(x Node) *MathNode              { return NewMath(MathAny, x) }
func Dot(a, b Node) *MathNode             { return NewMath(MathDot, a, b) }
func Cross(a, b Node) *MathNode           { return NewMath(MathCross, a, b) }
func Distance(a, b Node) *MathNode        { return NewMath(MathDistance, a, b) }
func Difference(a, b Node) *MathNode      { return NewMath(MathDifference, a, b) }
func Min(a, b Node) *MathNode             { return NewMath(MathMin, a, b) }
func Max(a, b Node) *MathNode             { return NewMath(MathMax, a, b) }
func Pow(a, b Node) *MathNode             { return NewMath(MathPow, a, b) }
func Step(edge, x Node) *MathNode         { return NewMath(MathStep, edge, x) }
func Reflect(i, n Node) *MathNode         { return NewMath(MathReflect, i, n) }
func Mix(a, b, t Node) *MathNode          { return NewMath(MathMix, a, b, t) }
func Clamp(x, lo, hi Node) *MathNode      { return NewMath(MathClamp, x, lo, hi) }
func Smoothstep(lo, hi, x Node) *MathNode { return NewMath(MathSmoothstep, lo, hi, x) }
func Refract(i, n, eta Node) *MathNode    { return NewMath(MathRefract, i, n, eta) }

// TransformDirection transforms direction dir by the upper 3x3 of matrix m and normalizes the result.
func TransformDirection(dir, m Node) *MathNode { return NewMath(MathTransformDirection, dir, m) }

// Saturate clamps x to [0, 1].
func Saturate(x Node) *MathNode { return Clamp(x, Float(0), Float(1)) }

func (m *MathNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	if err := fn(userData, "a", &m.A); err != nil {
		return err
	}
	if err := fn(userData, "b", &m.B); err != nil {
		return err
	}
	return fn(userData, "c", &m.C)
}

func (m *MathNode) optionalChild(name string) bool {
	switch name {
	case "b":
		return mathArity[m.Method] < 2
	case "c":
		return mathArity[m.Method] < 3
	}
	return false
}

func (m *MathNode) CustomCacheKey() uint64 { return HashString(m.Method) }

// InputType returns the widest non-matrix operand type.
func (m *MathNode) InputType(b Builder) Type {
	typeOf := func(n Node) (Type, int) {
		if n == nil {
			return TypeNone, 0
		}
		t := n.NodeType(b, TypeNone)
		if t.IsMatrix() {
			return t, 0
		}
		return t, t.Length()
	}
	ta, la := typeOf(m.A)
	tb, lb := typeOf(m.B)
	tc, lc := typeOf(m.C)
	switch {
	case la > lb && la > lc:
		return ta
	case lb > lc:
		return tb
	case lc > la:
		return tc
	}
	return ta
}

func (m *MathNode) NodeType(b Builder, output Type) Type {
	switch m.Method {
	case MathLength, MathDistance, MathDot:
		return TypeFloat
	case MathCross:
		return TypeVec3
	case MathAll, MathAny:
		return TypeBool
	case MathTransformDirection:
		return TypeVec3
	}
	return m.InputType(b)
}

func (m *MathNode) Generate(b Builder, output Type) string {
	typ := m.NodeType(b, TypeNone)
	in := m.InputType(b)
	scalarOr := func(n Node) Type {
		if n.NodeType(b, TypeNone).Length() == 1 {
			return TypeFloat
		}
		return in
	}
	switch m.Method {
	case MathNegate:
		return b.Format("( - "+Code(b, m.A, in)+" )", typ, output)
	case MathOneMinus:
		return b.Format("( 1.0 - "+Code(b, m.A, in)+" )", typ, output)
	case MathReciprocal:
		return b.Format("( 1.0 / "+Code(b, m.A, in)+" )", typ, output)
	case MathDifference:
		return b.Format(b.Method(MathAbs, typ)+"( "+Code(b, m.A, in)+" - "+Code(b, m.B, in)+" )", typ, output)
	case MathTransformDirection:
		dir := Code(b, m.A, TypeVec3)
		mat := Code(b, m.B, TypeMat3)
		return b.Format(b.Method(MathNormalize, TypeVec3)+"( "+mat+" * "+dir+" )", typ, output)
	}

	method := m.Method
	var params []string
	switch method {
	case MathCross:
		params = append(params, Code(b, m.A, typ), Code(b, m.B, typ))
	case MathRefract:
		params = append(params, Code(b, m.A, in), Code(b, m.B, in), Code(b, m.C, TypeFloat))
	case MathMix:
		params = append(params, Code(b, m.A, in), Code(b, m.B, in), Code(b, m.C, scalarOr(m.C)))
	default:
		for _, arg := range []Node{m.A, m.B, m.C} {
			if arg != nil {
				params = append(params, Code(b, arg, in))
			}
		}
	}
	call := b.Method(method, typ) + "( " + strings.Join(params, ", ") + " )"
	if isDerivative(method) && b.ShaderStage() != ShaderStageFragment {
		b.Logger().Warn("derivative not supported outside fragment stage",
			nodeAttr(m), slog.String("method", method), slog.String("stage", b.ShaderStage().String()))
		constType := output
		if constType == TypeNone || constType == TypeVoid {
			constType = typ
		}
		return "/*" + call + "*/ " + b.GenerateConst(constType, nil)
	}
	return b.Format(call, typ, output)
}

func isDerivative(method string) bool {
	return method == MathDFdx || method == MathDFdy || method == MathFwidth
}
