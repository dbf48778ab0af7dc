package glnode

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
)

// ConvertNode casts the value of Node to To.
type ConvertNode struct {
	Base
	Node Node
	To   Type
}

// Convert returns a node converting n to type to.
func Convert(n Node, to Type) *ConvertNode {
	if n == nil {
		panic("nil convert operand")
	}
	return &ConvertNode{Base: NewBase(to), Node: n, To: to}
}

func (c *ConvertNode) NodeType(b Builder, output Type) Type { return c.To }

func (c *ConvertNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	return fn(userData, "node", &c.Node)
}

func (c *ConvertNode) CustomCacheKey() uint64 { return uint64(c.To) }

func (c *ConvertNode) Generate(b Builder, output Type) string {
	return b.Format(Code(b, c.Node, c.To), c.To, output)
}

const swizzleComponents = "xyzw"

// SwizzleNode selects vector components of Node, i.e. "xy", "zyx" or "w".
type SwizzleNode struct {
	Base
	Node       Node
	Components string
}

// Swizzle returns a node selecting components of n. Color component names rgba
// are accepted. It panics on invalid components.
func Swizzle(n Node, components string) *SwizzleNode {
	if n == nil {
		panic("nil swizzle operand")
	}
	components, err := ParseSwizzle(components)
	if err != nil {
		panic(err)
	}
	return &SwizzleNode{Base: NewBase(TypeNone), Node: n, Components: components}
}

// ParseSwizzle validates swizzle components and returns them in xyzw form.
func ParseSwizzle(components string) (string, error) {
	if len(components) == 0 || len(components) > 4 {
		return "", errors.New("invalid swizzle " + strconv.Quote(components))
	}
	b := []byte(components)
	for i, c := range b {
		switch c {
		case 'r':
			b[i] = 'x'
		case 'g':
			b[i] = 'y'
		case 'b':
			b[i] = 'z'
		case 'a':
			b[i] = 'w'
		case 'x', 'y', 'z', 'w':
		default:
			return "", errors.New("invalid swizzle " + strconv.Quote(components))
		}
	}
	return string(b), nil
}

func (s *SwizzleNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	return fn(userData, "node", &s.Node)
}

func (s *SwizzleNode) CustomCacheKey() uint64 { return HashString(s.Components) }

// vectorLength returns the minimum vector length the swizzled node must have.
func (s *SwizzleNode) vectorLength() int {
	length := len(s.Components)
	for i := 0; i < len(s.Components); i++ {
		length = max(length, strings.IndexByte(swizzleComponents, s.Components[i])+1)
	}
	return length
}

func (s *SwizzleNode) componentType(b Builder) Type {
	c := s.Node.NodeType(b, TypeNone).ComponentType()
	if c == TypeNone {
		return TypeFloat
	}
	return c
}

func (s *SwizzleNode) NodeType(b Builder, output Type) Type {
	return TypeFromLength(len(s.Components), s.componentType(b))
}

func (s *SwizzleNode) Generate(b Builder, output Type) string {
	nodeType := s.Node.NodeType(b, TypeNone)
	if nodeType.Length() <= 1 {
		return Code(b, s.Node, output)
	}
	var vecType Type
	if s.vectorLength() >= nodeType.Length() {
		vecType = TypeFromLength(s.vectorLength(), s.componentType(b))
	}
	snippet := Code(b, s.Node, vecType)
	if len(s.Components) == nodeType.Length() && s.Components == swizzleComponents[:len(s.Components)] {
		return b.Format(snippet, vecType, output)
	}
	return b.Format(snippet+"."+s.Components, s.NodeType(b, TypeNone), output)
}

// JoinNode constructs a vector from the concatenated components of Nodes.
type JoinNode struct {
	TempBase
	Nodes []Node
}

// Join returns a node constructing a vector from the components of nodes.
func Join(nodes ...Node) *JoinNode {
	if len(nodes) == 0 {
		panic("join requires at least one operand")
	}
	for _, n := range nodes {
		if n == nil {
			panic("nil join operand")
		}
	}
	return &JoinNode{TempBase: NewTempBase(TypeNone), Nodes: nodes}
}

func (j *JoinNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	for i := range j.Nodes {
		if err := fn(userData, "nodes/"+strconv.Itoa(i), &j.Nodes[i]); err != nil {
			return err
		}
	}
	return nil
}

func (j *JoinNode) NodeType(b Builder, output Type) Type {
	if j.Type != TypeNone {
		return j.Type
	}
	length := 0
	component := TypeFloat
	for i, n := range j.Nodes {
		t := n.NodeType(b, TypeNone)
		if i == 0 && t.ComponentType() != TypeNone {
			component = t.ComponentType()
		}
		length += t.Length()
	}
	return TypeFromLength(min(length, 4), component)
}

func (j *JoinNode) Generate(b Builder, output Type) string {
	typ := j.NodeType(b, output)
	maxLength := typ.Length()
	component := typ.ComponentType()
	values := make([]string, 0, len(j.Nodes))
	length := 0
	for _, n := range j.Nodes {
		if length >= maxLength {
			b.Logger().Error("join length exceeds output type", nodeAttr(j), slog.String("type", typ.String()))
			break
		}
		inputType := n.NodeType(b, TypeNone)
		inputLength := inputType.Length()
		if length+inputLength > maxLength {
			b.Logger().Error("join length exceeds output type", nodeAttr(j), slog.String("type", typ.String()))
			inputLength = maxLength - length
			inputType = TypeFromLength(inputLength, inputType.ComponentType())
		}
		length += inputLength
		snippet := Code(b, n, inputType)
		if inputType.ComponentType() != component {
			snippet = b.Format(snippet, inputType, inputType.WithComponent(component))
		}
		values = append(values, snippet)
	}
	return b.Format(b.TypeName(typ)+"( "+strings.Join(values, ", ")+" )", typ, output)
}
