package glbuild

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/naga"
	"github.com/soypat/glnode"
)

type wgslBackend struct {
	b *Builder
}

var wgslScalars = [...]string{
	glnode.TypeBool:  "bool",
	glnode.TypeInt:   "i32",
	glnode.TypeUint:  "u32",
	glnode.TypeFloat: "f32",
}

func (g *wgslBackend) typeName(t glnode.Type) string {
	switch {
	case t.IsScalar():
		return wgslScalars[t]
	case t.IsVector():
		return "vec" + strconv.Itoa(t.Length()) + "<" + wgslScalars[t.ComponentType()] + ">"
	case t == glnode.TypeMat2:
		return "mat2x2<f32>"
	case t == glnode.TypeMat3:
		return "mat3x3<f32>"
	case t == glnode.TypeMat4:
		return "mat4x4<f32>"
	case t == glnode.TypeTexture:
		return "texture_2d<f32>"
	}
	return ""
}

// uniformType is the host shareable type storing a uniform of type t.
func (g *wgslBackend) uniformType(t glnode.Type) glnode.Type {
	if t.ComponentType() == glnode.TypeBool {
		return t.WithComponent(glnode.TypeUint)
	}
	return t
}

var wgslMethods = map[string]string{
	glnode.MathInverseSqrt: "inverseSqrt",
	glnode.MathDFdx:        "dpdx",
	glnode.MathDFdy:        "dpdy",
	glnode.MathFaceforward: "faceForward",
	"lessThan":             "",
	"greaterThan":          "",
	"lessThanEqual":        "",
	"greaterThanEqual":     "",
	"equal":                "",
	"notEqual":             "",
}

func (g *wgslBackend) method(name string, t glnode.Type) string {
	if name == glnode.MathMod {
		return g.modPolyfill(t)
	}
	if m, ok := wgslMethods[name]; ok {
		return m
	}
	return name
}

// modPolyfill declares a floored modulo for t, matching GLSL mod.
func (g *wgslBackend) modPolyfill(t glnode.Type) string {
	typ := g.typeName(t)
	name := "nodeMod_" + strings.NewReplacer("<", "", ">", "").Replace(typ)
	body := "x - y * floor( x / y )"
	if t.IsInteger() {
		body = "x % y"
	}
	g.b.usePolyfill(name, "fn "+name+"( x : "+typ+", y : "+typ+" ) -> "+typ+" {\n\treturn "+body+";\n}\n")
	return name
}

func (g *wgslBackend) functionOperator(op string) string { return "" }

func (g *wgslBackend) propertyName(slot glnode.Slot, stage glnode.ShaderStage) string {
	switch s := slot.(type) {
	case *glnode.NodeUniform:
		if g.uniformType(s.Type) != s.Type {
			return g.typeName(s.Type) + "( object." + s.Name + " )"
		}
		return "object." + s.Name
	case *glnode.NodeVarying:
		if stage == glnode.ShaderStageVertex {
			return "varyings." + s.Name
		}
	}
	return slot.SlotName()
}

func (g *wgslBackend) textureSample(stage glnode.ShaderStage, tex *glnode.NodeTexture, uv, level string) string {
	if level == "" && stage != glnode.ShaderStageFragment {
		level = "0.0"
	}
	if level != "" {
		return "textureSampleLevel( " + tex.Name + ", " + tex.Name + "_sampler, " + uv + ", " + level + " )"
	}
	return "textureSample( " + tex.Name + ", " + tex.Name + "_sampler, " + uv + " )"
}

func (g *wgslBackend) outputAssign(stage glnode.ShaderStage, snippet string) string {
	switch stage {
	case glnode.ShaderStageVertex:
		return "varyings.Vertex = " + snippet
	case glnode.ShaderStageFragment:
		return "fragColor = " + snippet
	}
	if snippet == "" {
		return ""
	}
	return "_ = " + snippet
}

func wgslInterpolation(v *glnode.NodeVarying) string {
	var typ string
	switch v.Interpolation {
	case glnode.InterpolationFlat:
		return "@interpolate( flat ) "
	case glnode.InterpolationLinear:
		typ = "linear"
	case glnode.InterpolationPerspective:
		typ = "perspective"
	}
	var sampling string
	switch v.Sampling {
	case glnode.SamplingCenter:
		sampling = "center"
	case glnode.SamplingCentroid:
		sampling = "centroid"
	case glnode.SamplingSample:
		sampling = "sample"
	}
	if sampling != "" && typ == "" {
		typ = "perspective"
	}
	switch {
	case typ == "":
		return ""
	case sampling == "":
		return "@interpolate( " + typ + " ) "
	}
	return "@interpolate( " + typ + ", " + sampling + " ) "
}

func (g *wgslBackend) source(stage glnode.ShaderStage) string {
	b := g.b
	s := &b.slots
	var w strings.Builder

	usesUniforms := false
	for _, u := range s.uniforms {
		usesUniforms = usesUniforms || s.uniformStages[u].has(stage)
	}
	if usesUniforms {
		w.WriteString("struct NodeUniforms {\n")
		for _, u := range s.uniforms {
			w.WriteString("\t" + u.Name + " : " + g.typeName(g.uniformType(u.Type)) + ",\n")
		}
		w.WriteString("};\n@group( 0 ) @binding( 0 ) var<uniform> object : NodeUniforms;\n\n")
	}
	for i, t := range s.textures {
		if !s.textureStages[t].has(stage) {
			continue
		}
		w.WriteString("@group( 1 ) @binding( " + strconv.Itoa(2*i) + " ) var " + t.Name + "_sampler : sampler;\n")
		w.WriteString("@group( 1 ) @binding( " + strconv.Itoa(2*i+1) + " ) var " + t.Name + " : texture_2d<f32>;\n")
	}
	if stage == glnode.ShaderStageVertex {
		w.WriteString("struct VaryingsStruct {\n\t@builtin( position ) Vertex : vec4<f32>,\n")
		for i, v := range s.varyings {
			w.WriteString("\t@location( " + strconv.Itoa(i) + " ) " + wgslInterpolation(v) + v.Name + " : " + g.typeName(v.Type) + ",\n")
		}
		w.WriteString("};\nvar<private> varyings : VaryingsStruct;\n")
	}
	w.WriteByte('\n')
	for _, fn := range s.polyfills[stage] {
		w.WriteString(fn)
		w.WriteByte('\n')
	}

	var params []string
	switch stage {
	case glnode.ShaderStageVertex:
		for i, a := range s.attributes {
			params = append(params, "@location( "+strconv.Itoa(i)+" ) "+a.Name+" : "+g.typeName(a.Type))
		}
		w.WriteString("@vertex\nfn main( " + strings.Join(params, ", ") + " ) -> VaryingsStruct {\n")
	case glnode.ShaderStageFragment:
		for i, v := range s.varyings {
			if v.NeedsInterpolation {
				params = append(params, "@location( "+strconv.Itoa(i)+" ) "+wgslInterpolation(v)+v.Name+" : "+g.typeName(v.Type))
			}
		}
		w.WriteString("@fragment\nfn main( " + strings.Join(params, ", ") + " ) -> @location( 0 ) vec4<f32> {\n")
		w.WriteString("\tvar fragColor : vec4<f32>;\n")
	case glnode.ShaderStageCompute:
		w.WriteString("@compute @workgroup_size( " + strconv.Itoa(b.cfg.WorkgroupSize) + ", 1, 1 )\n")
		w.WriteString("fn main( @builtin( global_invocation_id ) id : vec3<u32> ) {\n")
	}
	for _, v := range s.vars[stage] {
		w.WriteString("\tvar " + v.Name + " : " + g.typeName(v.Type) + ";\n")
	}
	w.WriteString(b.main[stage].String())
	switch stage {
	case glnode.ShaderStageVertex:
		w.WriteString("\treturn varyings;\n")
	case glnode.ShaderStageFragment:
		w.WriteString("\treturn fragColor;\n")
	}
	w.WriteString("}\n")
	return w.String()
}

// CompileWGSL parses, validates and lowers WGSL source to SPIR-V.
func CompileWGSL(src string) ([]byte, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compiling wgsl: %w", err)
	}
	return spirv, nil
}

// ValidateWGSL parses WGSL source and validates the lowered module.
func ValidateWGSL(src string) error {
	ast, err := naga.Parse(src)
	if err != nil {
		return err
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return err
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return err
	}
	errs := make([]error, len(verrs))
	for i := range verrs {
		errs[i] = verrs[i]
	}
	return errors.Join(errs...)
}
