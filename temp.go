package glnode

// temporary is implemented by nodes embedding [TempBase].
type temporary interface {
	tempNode() *TempBase
}

// TempBase is embedded by expression nodes whose value should be computed once
// per shader stage. When such a node is referenced more than once in a shader
// stage its value is assigned to a local variable the first time it is
// generated and later references read the variable.
type TempBase struct {
	Base
}

// NewTempBase returns an initialized TempBase.
func NewTempBase(typ Type) TempBase { return TempBase{Base: NewBase(typ)} }

func (t *TempBase) tempNode() *TempBase { return t }

func buildTemp(b Builder, n Node, output Type) (string, bool) {
	typ := n.NodeType(b, output)
	data := b.DataFromNode(n, ShaderStageAny)
	if data.PropertyName != "" {
		return b.Format(data.PropertyName, typ, output), true
	}
	if typ == TypeNone || typ == TypeVoid || output == TypeVoid || data.UsageCount <= 1 {
		return "", false
	}
	snippet := build(b, n, typ).Snippet
	v := b.VarFromNode(n, "", typ)
	name := b.PropertyName(v, b.ShaderStage())
	b.AddLineFlowCode(name + " = " + snippet)
	data.Snippet = snippet
	data.PropertyName = name
	return b.Format(name, typ, output), true
}

// VarNode binds the value of Node to a named local variable. References to
// the VarNode read the variable.
type VarNode struct {
	Base
	Node Node
	Name string
}

// NewVar returns a node declaring a local variable initialized to n. An empty name is allocated by the builder.
func NewVar(n Node, name string) *VarNode {
	return &VarNode{Base: NewBase(TypeNone), Node: n, Name: name}
}

func (v *VarNode) NodeType(b Builder, output Type) Type {
	if v.Type != TypeNone {
		return v.Type
	}
	return v.Node.NodeType(b, TypeNone)
}

func (v *VarNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	return fn(userData, "node", &v.Node)
}

func (v *VarNode) GenerateOnce(b Builder) string {
	typ := v.NodeType(b, TypeNone)
	nv := b.VarFromNode(v, v.Name, typ)
	name := b.PropertyName(nv, b.ShaderStage())
	b.AddLineFlowCode(name + " = " + Code(b, v.Node, nv.Type))
	return name
}

func (v *VarNode) CustomCacheKey() uint64 { return HashString(v.Name) }

// AssignNode assigns Source to Target, which should generate an assignable
// expression such as a [VarNode] or [PropertyNode]. The assignment is emitted
// once per shader stage. Unless generated as a statement it reads the target.
type AssignNode struct {
	Base
	Target Node
	Source Node
}

// Assign returns a node assigning source to target.
func Assign(target, source Node) *AssignNode {
	if target == nil || source == nil {
		panic("nil assign operand")
	}
	return &AssignNode{Base: NewBase(TypeNone), Target: target, Source: source}
}

func (a *AssignNode) NodeType(b Builder, output Type) Type {
	if output == TypeVoid {
		return TypeVoid
	}
	return a.Target.NodeType(b, TypeNone)
}

func (a *AssignNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	if err := fn(userData, "target", &a.Target); err != nil {
		return err
	}
	return fn(userData, "source", &a.Source)
}

func (a *AssignNode) Generate(b Builder, output Type) string {
	typ := a.Target.NodeType(b, TypeNone)
	data := b.DataFromNode(a, ShaderStageAny)
	if !data.HasSnippet {
		target := Code(b, a.Target, TypeNone)
		source := Code(b, a.Source, typ)
		b.AddLineFlowCode(target + " = " + source)
		data.Snippet, data.HasSnippet = target, true
	}
	if output == TypeVoid {
		return ""
	}
	return b.Format(data.Snippet, typ, output)
}
