package glnode

// VaryingNode computes Node in the vertex stage and passes the interpolated
// value to later stages. Wherever it is referenced, its source subgraph is
// built only in the vertex stage and evaluated there once.
type VaryingNode struct {
	Base
	Node Node
	// Name of the varying. Varyings with equal names are the same slot.
	// An empty name allocates a unique slot.
	Name          string
	Interpolation Interpolation
	Sampling      Sampling
}

// NewVarying returns a varying passing the vertex stage value of n to the fragment stage.
func NewVarying(n Node, name string) *VaryingNode {
	if n == nil {
		panic("nil varying source")
	}
	v := &VaryingNode{Base: NewBase(TypeNone), Node: n, Name: name}
	v.Global = true
	return v
}

// SetInterpolation sets the interpolation qualifiers of the varying and returns it.
func (v *VaryingNode) SetInterpolation(interp Interpolation, sampling Sampling) *VaryingNode {
	v.Interpolation = interp
	v.Sampling = sampling
	v.NeedsUpdate()
	return v
}

func (v *VaryingNode) Hash(b Builder) string {
	if v.Name != "" {
		return "varying:" + v.Name
	}
	return ""
}

func (v *VaryingNode) NodeType(b Builder, output Type) Type {
	if v.Type != TypeNone {
		return v.Type
	}
	return v.Node.NodeType(b, TypeNone)
}

func (v *VaryingNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	return fn(userData, "node", &v.Node)
}

func (v *VaryingNode) CustomCacheKey() uint64 {
	return HashValues(HashString(v.Name), uint64(v.Interpolation), uint64(v.Sampling))
}

// SetupVarying allocates the varying slot on first call for a builder and
// returns it. The slot is marked as needing interpolation once the varying
// is used in the fragment stage.
func (v *VaryingNode) SetupVarying(b Builder) *NodeVarying {
	props := b.NodeProperties(v)
	varying := props.Varying
	if varying == nil {
		varying = b.VaryingFromNode(v, v.Name, v.NodeType(b, TypeNone), v.Interpolation, v.Sampling)
		props.Varying = varying
	}
	if !varying.NeedsInterpolation && b.ShaderStage() == ShaderStageFragment {
		varying.NeedsInterpolation = true
	}
	return varying
}

func (v *VaryingNode) Setup(b Builder) Node {
	v.SetupVarying(b)
	b.FlowNodeFromShaderStage(ShaderStageVertex, v.Node, TypeNone, "")
	return nil
}

func (v *VaryingNode) Analyze(b Builder, output Type) {
	v.SetupVarying(b)
	b.FlowNodeFromShaderStage(ShaderStageVertex, v.Node, TypeNone, "")
}

func (v *VaryingNode) GenerateOnce(b Builder) string {
	props := b.NodeProperties(v)
	varying := v.SetupVarying(b)
	if props.PropertyName == "" {
		name := b.PropertyName(varying, ShaderStageVertex)
		props.PropertyName = name
		b.FlowNodeFromShaderStage(ShaderStageVertex, v.Node, varying.Type, name)
	}
	return b.PropertyName(varying, b.ShaderStage())
}

// PropertyNode is a named program variable assigned with [Assign]. A varying
// property is an interpolated slot written in the vertex stage.
type PropertyNode struct {
	Base
	Name    string
	Varying bool
}

// NewProperty returns a shader local property of type t.
func NewProperty(t Type, name string) *PropertyNode {
	p := &PropertyNode{Base: NewBase(t), Name: name}
	p.Global = true
	return p
}

// NewVaryingProperty returns a property stored in an interpolated slot.
func NewVaryingProperty(t Type, name string) *PropertyNode {
	p := NewProperty(t, name)
	p.Varying = true
	return p
}

func (p *PropertyNode) Hash(b Builder) string {
	if p.Name != "" {
		return "property:" + p.Name
	}
	return ""
}

func (p *PropertyNode) NodeType(b Builder, output Type) Type { return p.Type }

func (p *PropertyNode) CustomCacheKey() uint64 {
	var varying uint64
	if p.Varying {
		varying = 1
	}
	return HashValues(HashString(p.Name), uint64(p.Type), varying)
}

func (p *PropertyNode) GenerateOnce(b Builder) string {
	if p.Varying {
		varying := b.VaryingFromNode(p, p.Name, p.Type, InterpolationDefault, SamplingDefault)
		varying.NeedsInterpolation = true
		return b.PropertyName(varying, b.ShaderStage())
	}
	return b.PropertyName(b.VarFromNode(p, p.Name, p.Type), b.ShaderStage())
}
