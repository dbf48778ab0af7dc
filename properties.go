package glnode

// Properties is the build-time record of a node for one builder. It is shared
// by all shader stages. Builders store it by node id.
type Properties struct {
	// Initialized is set once the node ran the setup stage for the builder.
	Initialized bool
	// OutputNode is the node returned by setup. Default generation builds it.
	OutputNode Node
	// Varying is the interpolated slot of varying nodes.
	Varying *NodeVarying
	// PropertyName is set once a node bound its value to a named slot.
	PropertyName string
	// Parents lists nodes which set this node up, for parents-tracking nodes.
	Parents []Node
	// Values holds node kind specific data.
	Values map[string]any

	names []string
	nodes []Node
}

// SetNode stores n in the named slot. Every node in a slot is built alongside
// the owner in setup and analyze. Slots keep the order they were first set in.
func (p *Properties) SetNode(name string, n Node) {
	for i := range p.names {
		if p.names[i] == name {
			p.nodes[i] = n
			return
		}
	}
	p.names = append(p.names, name)
	p.nodes = append(p.nodes, n)
}

// Node returns the node in the named slot or nil.
func (p *Properties) Node(name string) Node {
	for i := range p.names {
		if p.names[i] == name {
			return p.nodes[i]
		}
	}
	return nil
}

// Nodes appends the non-nil slot nodes in order followed by OutputNode.
func (p *Properties) Nodes(dst []Node) []Node {
	for _, n := range p.nodes {
		if n != nil {
			dst = append(dst, n)
		}
	}
	if p.OutputNode != nil {
		dst = append(dst, p.OutputNode)
	}
	return dst
}

// Value returns the named value, or nil.
func (p *Properties) Value(key string) any { return p.Values[key] }

// SetValue stores a node kind specific value.
func (p *Properties) SetValue(key string, v any) {
	if p.Values == nil {
		p.Values = make(map[string]any)
	}
	p.Values[key] = v
}

// NodeData is the per shader stage bookkeeping of a node for one builder.
type NodeData struct {
	// Stages records the build stages the node went through.
	Stages StageSet
	// UsageCount counts references during analyze.
	UsageCount int
	// Snippet memoizes single-output generation.
	Snippet    string
	HasSnippet bool
	// Generating is set while single-output generation is in progress.
	Generating bool
	// PropertyName is the temporary variable a multiply-used node was bound to.
	PropertyName string
	// OutputTypes records the output types requested by callers of parents-tracking nodes.
	OutputTypes []Type
	// Var is the local variable slot of the node in this stage.
	Var *NodeVar
	// Uniform is the uniform slot of the node.
	Uniform *NodeUniform
	// Values holds node kind specific stage data.
	Values map[string]any
}

// Slot is a named location in the generated program.
type Slot interface {
	SlotName() string
}

// NodeVar is a shader local variable.
type NodeVar struct {
	Name string
	Type Type
}

func (v *NodeVar) SlotName() string { return v.Name }

// NodeVarying is an interpolated value written in the vertex stage and read in the fragment stage.
type NodeVarying struct {
	Name          string
	Type          Type
	Interpolation Interpolation
	Sampling      Sampling
	// NeedsInterpolation is set once the varying is read in the fragment stage.
	NeedsInterpolation bool
	// Source is the node which first claimed the varying.
	Source Node
}

func (v *NodeVarying) SlotName() string { return v.Name }

// NodeUniform is a value bound by the host per draw or frame.
type NodeUniform struct {
	Name string
	Type Type
	Node Node
}

func (u *NodeUniform) SlotName() string { return u.Name }

// NodeAttribute is a per vertex geometry attribute.
type NodeAttribute struct {
	Name string
	Type Type
}

func (a *NodeAttribute) SlotName() string { return a.Name }

// NodeTexture is a sampled texture binding.
type NodeTexture struct {
	Name    string
	Texture *Texture
	Node    Node
}

func (t *NodeTexture) SlotName() string { return t.Name }

// FlowData is the result of flowing a node through a shader stage.
type FlowData struct {
	// Code holds the statements emitted while generating the node.
	Code string
	// Result is the expression or property the value was bound to.
	Result string
}
