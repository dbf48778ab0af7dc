package glbuild

import (
	"errors"

	"github.com/soypat/glnode"
)

// Program is the output of a [Builder]. Sources of stages without flows are empty.
type Program struct {
	Language Language
	Vertex   string
	Fragment string
	Compute  string

	Uniforms   []*glnode.NodeUniform
	Attributes []*glnode.NodeAttribute
	Varyings   []*glnode.NodeVarying
	Textures   []*glnode.NodeTexture

	// Nodes lists every built node in the order it first completed a build stage.
	Nodes []glnode.Node

	UpdateBeforeNodes []glnode.Node
	UpdateNodes       []glnode.Node
	UpdateAfterNodes  []glnode.Node
}

func (b *Builder) assemble() (*Program, error) {
	s := &b.slots
	p := &Program{
		Language:          b.cfg.Language,
		Uniforms:          s.uniforms,
		Attributes:        s.attributes,
		Varyings:          s.varyings,
		Textures:          s.textures,
		Nodes:             b.sequential,
		UpdateBeforeNodes: b.updateBeforeNodes,
		UpdateNodes:       b.updateNodes,
		UpdateAfterNodes:  b.updateAfterNodes,
	}
	if len(b.roots[glnode.ShaderStageCompute]) > 0 {
		p.Compute = b.backend.source(glnode.ShaderStageCompute)
	} else {
		p.Vertex = b.backend.source(glnode.ShaderStageVertex)
		p.Fragment = b.backend.source(glnode.ShaderStageFragment)
	}
	return p, nil
}

// Source returns the program source of a shader stage.
func (p *Program) Source(stage glnode.ShaderStage) string {
	switch stage {
	case glnode.ShaderStageVertex:
		return p.Vertex
	case glnode.ShaderStageFragment:
		return p.Fragment
	case glnode.ShaderStageCompute:
		return p.Compute
	}
	return ""
}

// SPIRV compiles a WGSL program stage to SPIR-V.
func (p *Program) SPIRV(stage glnode.ShaderStage) ([]byte, error) {
	if p.Language != WGSL {
		return nil, errors.New("SPIR-V output requires a WGSL program")
	}
	src := p.Source(stage)
	if src == "" {
		return nil, errors.New("no " + stage.String() + " program")
	}
	return CompileWGSL(src)
}

// UpdateBefore runs the before-render hooks of the program's nodes.
func (p *Program) UpdateBefore(f *glnode.Frame) {
	for _, n := range p.UpdateBeforeNodes {
		f.UpdateBeforeNode(n)
	}
}

// Update runs the update hooks of the program's nodes.
func (p *Program) Update(f *glnode.Frame) {
	for _, n := range p.UpdateNodes {
		f.UpdateNode(n)
	}
}

// UpdateAfter runs the after-render hooks of the program's nodes.
func (p *Program) UpdateAfter(f *glnode.Frame) {
	for _, n := range p.UpdateAfterNodes {
		f.UpdateAfterNode(n)
	}
}

// UniformValues returns the current value of each uniform by name.
func (p *Program) UniformValues() map[string]any {
	values := make(map[string]any, len(p.Uniforms))
	for _, u := range p.Uniforms {
		if un, ok := u.Node.(*glnode.UniformNode); ok {
			values[u.Name] = un.Value
		}
	}
	return values
}
