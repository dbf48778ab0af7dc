package glbuild

import (
	"strconv"
	"strings"

	"github.com/soypat/glnode"
)

// backend is the language specific half of a [Builder].
type backend interface {
	typeName(t glnode.Type) string
	method(name string, t glnode.Type) string
	functionOperator(op string) string
	propertyName(slot glnode.Slot, stage glnode.ShaderStage) string
	textureSample(stage glnode.ShaderStage, tex *glnode.NodeTexture, uv, level string) string
	// outputAssign returns the statement storing a flow root's result.
	outputAssign(stage glnode.ShaderStage, snippet string) string
	// source assembles the program of a shader stage.
	source(stage glnode.ShaderStage) string
}

type glslBackend struct {
	b *Builder
}

var glslTypes = [...]string{
	glnode.TypeVoid:    "void",
	glnode.TypeBool:    "bool",
	glnode.TypeInt:     "int",
	glnode.TypeUint:    "uint",
	glnode.TypeFloat:   "float",
	glnode.TypeBVec2:   "bvec2",
	glnode.TypeBVec3:   "bvec3",
	glnode.TypeBVec4:   "bvec4",
	glnode.TypeIVec2:   "ivec2",
	glnode.TypeIVec3:   "ivec3",
	glnode.TypeIVec4:   "ivec4",
	glnode.TypeUVec2:   "uvec2",
	glnode.TypeUVec3:   "uvec3",
	glnode.TypeUVec4:   "uvec4",
	glnode.TypeVec2:    "vec2",
	glnode.TypeVec3:    "vec3",
	glnode.TypeVec4:    "vec4",
	glnode.TypeMat2:    "mat2",
	glnode.TypeMat3:    "mat3",
	glnode.TypeMat4:    "mat4",
	glnode.TypeTexture: "sampler2D",
}

func (g *glslBackend) typeName(t glnode.Type) string {
	if int(t) < len(glslTypes) {
		return glslTypes[t]
	}
	return ""
}

func (g *glslBackend) method(name string, t glnode.Type) string {
	switch name {
	case glnode.MathAtan2:
		return "atan"
	}
	return name
}

func (g *glslBackend) functionOperator(op string) string { return "" }

func (g *glslBackend) propertyName(slot glnode.Slot, stage glnode.ShaderStage) string {
	return slot.SlotName()
}

func (g *glslBackend) textureSample(stage glnode.ShaderStage, tex *glnode.NodeTexture, uv, level string) string {
	if level == "" && stage != glnode.ShaderStageFragment {
		level = "0.0"
	}
	if level != "" {
		return "textureLod( " + tex.Name + ", " + uv + ", " + level + " )"
	}
	return "texture( " + tex.Name + ", " + uv + " )"
}

func (g *glslBackend) outputAssign(stage glnode.ShaderStage, snippet string) string {
	switch stage {
	case glnode.ShaderStageVertex:
		return "gl_Position = " + snippet
	case glnode.ShaderStageFragment:
		return "fragColor = " + snippet
	}
	return snippet
}

func glslInterpolation(v *glnode.NodeVarying) string {
	var q string
	switch v.Interpolation {
	case glnode.InterpolationFlat:
		return "flat "
	case glnode.InterpolationPerspective, glnode.InterpolationLinear:
		q = "smooth "
	}
	if v.Sampling == glnode.SamplingCentroid {
		q = "centroid " + q
	}
	return q
}

func (g *glslBackend) source(stage glnode.ShaderStage) string {
	b := g.b
	s := &b.slots
	var w strings.Builder
	if stage == glnode.ShaderStageCompute {
		w.WriteString("#version " + b.cfg.ComputeVersion + "\n")
		w.WriteString("layout(local_size_x = " + strconv.Itoa(b.cfg.WorkgroupSize) + ", local_size_y = 1, local_size_z = 1) in;\n")
	} else {
		w.WriteString("#version " + b.cfg.Version + "\n")
	}
	if b.cfg.Precision != "" {
		w.WriteString("precision " + b.cfg.Precision + " float;\n")
		w.WriteString("precision " + b.cfg.Precision + " int;\n")
	}
	w.WriteByte('\n')

	for _, u := range s.uniforms {
		if s.uniformStages[u].has(stage) {
			w.WriteString("uniform " + g.typeName(u.Type) + " " + u.Name + ";\n")
		}
	}
	for _, t := range s.textures {
		if s.textureStages[t].has(stage) {
			w.WriteString("uniform sampler2D " + t.Name + ";\n")
		}
	}
	switch stage {
	case glnode.ShaderStageVertex:
		for i, a := range s.attributes {
			w.WriteString("layout(location = " + strconv.Itoa(i) + ") in " + g.typeName(a.Type) + " " + a.Name + ";\n")
		}
		for _, v := range s.varyings {
			w.WriteString(glslInterpolation(v) + "out " + g.typeName(v.Type) + " " + v.Name + ";\n")
		}
	case glnode.ShaderStageFragment:
		for _, v := range s.varyings {
			if v.NeedsInterpolation {
				w.WriteString(glslInterpolation(v) + "in " + g.typeName(v.Type) + " " + v.Name + ";\n")
			}
		}
		w.WriteString("layout(location = 0) out vec4 fragColor;\n")
	}
	w.WriteByte('\n')

	for _, fn := range s.polyfills[stage] {
		w.WriteString(fn)
		w.WriteByte('\n')
	}
	w.WriteString("void main() {\n")
	for _, v := range s.vars[stage] {
		w.WriteString("\t" + g.typeName(v.Type) + " " + v.Name + ";\n")
	}
	w.WriteString(b.main[stage].String())
	w.WriteString("}\n")
	return w.String()
}
