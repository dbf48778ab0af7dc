package glbuild

import (
	"log/slog"
	"strconv"

	"github.com/soypat/glnode"
)

// slots allocates the named locations of a program.
type slots struct {
	uniforms      []*glnode.NodeUniform
	uniformByID   map[uint64]*glnode.NodeUniform
	uniformByName map[string]*glnode.NodeUniform
	uniformStages map[*glnode.NodeUniform]stageMask

	varyings      []*glnode.NodeVarying
	varyingByID   map[uint64]*glnode.NodeVarying
	varyingByName map[string]*glnode.NodeVarying

	vars      [4][]*glnode.NodeVar
	varByID   [4]map[uint64]*glnode.NodeVar
	varByName [4]map[string]*glnode.NodeVar

	attributes []*glnode.NodeAttribute
	attrByName map[string]*glnode.NodeAttribute

	textures      []*glnode.NodeTexture
	textureByTex  map[*glnode.Texture]*glnode.NodeTexture
	textureStages map[*glnode.NodeTexture]stageMask

	// polyfills holds helper functions by name per shader stage in order of use.
	polyfills     [4][]string
	polyfillNames [4]map[string]bool

	nuniform, nvarying, nvar, ntexture int
}

type stageMask uint8

func (m stageMask) has(s glnode.ShaderStage) bool { return m&(1<<s) != 0 }

func newSlots() slots {
	s := slots{
		uniformByID:   make(map[uint64]*glnode.NodeUniform),
		uniformByName: make(map[string]*glnode.NodeUniform),
		uniformStages: make(map[*glnode.NodeUniform]stageMask),
		varyingByID:   make(map[uint64]*glnode.NodeVarying),
		varyingByName: make(map[string]*glnode.NodeVarying),
		attrByName:    make(map[string]*glnode.NodeAttribute),
		textureByTex:  make(map[*glnode.Texture]*glnode.NodeTexture),
		textureStages: make(map[*glnode.NodeTexture]stageMask),
	}
	for i := range s.varByID {
		s.varByID[i] = make(map[uint64]*glnode.NodeVar)
		s.varByName[i] = make(map[string]*glnode.NodeVar)
		s.polyfillNames[i] = make(map[string]bool)
	}
	return s
}

// VaryingFromNode implements [glnode.Builder]. Named varyings are shared by
// name. When two distinct nodes claim the same name the first one keeps the
// slot and a warning is logged.
func (b *Builder) VaryingFromNode(n glnode.Node, name string, t glnode.Type, interp glnode.Interpolation, sampling glnode.Sampling) *glnode.NodeVarying {
	s := &b.slots
	id := n.NodeBase().ID()
	if v := s.varyingByID[id]; v != nil {
		return v
	}
	if name != "" {
		if v := s.varyingByName[name]; v != nil {
			if v.Type != t || v.Source == nil || v.Source.NodeBase().ID() != id {
				b.log.Warn("varying name collision, first declaration wins",
					slog.String("varying", name), slog.String("type", v.Type.String()), slog.String("ignored", t.String()))
			}
			s.varyingByID[id] = v
			return v
		}
	} else {
		name = "nodeVarying" + strconv.Itoa(s.nvarying)
		s.nvarying++
	}
	if t.IsInteger() && interp != glnode.InterpolationFlat {
		interp = glnode.InterpolationFlat
	}
	v := &glnode.NodeVarying{Name: name, Type: t, Interpolation: interp, Sampling: sampling, Source: n}
	s.varyings = append(s.varyings, v)
	s.varyingByID[id] = v
	s.varyingByName[name] = v
	return v
}

// VarFromNode implements [glnode.Builder].
func (b *Builder) VarFromNode(n glnode.Node, name string, t glnode.Type) *glnode.NodeVar {
	s := &b.slots
	stage := b.shaderStage
	id := n.NodeBase().ID()
	if v := s.varByID[stage][id]; v != nil {
		return v
	}
	if name != "" {
		if v := s.varByName[stage][name]; v != nil {
			if v.Type != t {
				b.log.Warn("variable redeclared with different type", slog.String("var", name),
					slog.String("type", v.Type.String()), slog.String("ignored", t.String()))
			}
			s.varByID[stage][id] = v
			return v
		}
	} else {
		name = "nodeVar" + strconv.Itoa(s.nvar)
		s.nvar++
	}
	v := &glnode.NodeVar{Name: name, Type: t}
	s.vars[stage] = append(s.vars[stage], v)
	s.varByID[stage][id] = v
	s.varByName[stage][name] = v
	return v
}

// UniformFromNode implements [glnode.Builder].
func (b *Builder) UniformFromNode(n glnode.Node, name string, t glnode.Type) *glnode.NodeUniform {
	s := &b.slots
	id := n.NodeBase().ID()
	u := s.uniformByID[id]
	if u == nil && name != "" {
		u = s.uniformByName[name]
		if u != nil && u.Type != t {
			b.log.Warn("uniform name collision, first declaration wins", slog.String("uniform", name),
				slog.String("type", u.Type.String()), slog.String("ignored", t.String()))
		}
	}
	if u == nil {
		if name == "" {
			name = "nodeUniform" + strconv.Itoa(s.nuniform)
			s.nuniform++
		}
		u = &glnode.NodeUniform{Name: name, Type: t, Node: n}
		s.uniforms = append(s.uniforms, u)
		s.uniformByName[name] = u
	}
	s.uniformByID[id] = u
	s.uniformStages[u] |= 1 << b.shaderStage
	return u
}

// AttributeFromName implements [glnode.Builder].
func (b *Builder) AttributeFromName(name string, t glnode.Type) *glnode.NodeAttribute {
	s := &b.slots
	if a := s.attrByName[name]; a != nil {
		return a
	}
	a := &glnode.NodeAttribute{Name: name, Type: t}
	s.attributes = append(s.attributes, a)
	s.attrByName[name] = a
	return a
}

// TextureFromNode implements [glnode.Builder]. Nodes sampling the same
// texture share one binding.
func (b *Builder) TextureFromNode(n glnode.Node, tex *glnode.Texture) *glnode.NodeTexture {
	s := &b.slots
	t := s.textureByTex[tex]
	if t == nil {
		t = &glnode.NodeTexture{Name: "nodeTexture" + strconv.Itoa(s.ntexture), Texture: tex, Node: n}
		s.ntexture++
		s.textures = append(s.textures, t)
		s.textureByTex[tex] = t
	}
	s.textureStages[t] |= 1 << b.shaderStage
	return t
}

// usePolyfill records a helper function in the current shader stage.
func (b *Builder) usePolyfill(name, code string) {
	s := &b.slots
	stage := b.shaderStage
	if s.polyfillNames[stage][name] {
		return
	}
	s.polyfillNames[stage][name] = true
	s.polyfills[stage] = append(s.polyfills[stage], code)
}
