package glnode

import "errors"

// Type is the semantic result type of a node. Backends map a Type to
// their own type names, i.e: TypeVec3 is "vec3" in GLSL and "vec3<f32>" in WGSL.
type Type uint8

const (
	// TypeNone means no type was declared or no conversion is requested.
	TypeNone Type = iota
	TypeVoid
	TypeBool
	TypeInt
	TypeUint
	TypeFloat
	TypeBVec2
	TypeBVec3
	TypeBVec4
	TypeIVec2
	TypeIVec3
	TypeIVec4
	TypeUVec2
	TypeUVec3
	TypeUVec4
	TypeVec2
	TypeVec3
	TypeVec4
	TypeMat2
	TypeMat3
	TypeMat4
	// TypeTexture is an opaque sampled 2D texture handle.
	TypeTexture
	typeCount
)

var typeNames = [typeCount]string{
	TypeNone:    "",
	TypeVoid:    "void",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeUint:    "uint",
	TypeFloat:   "float",
	TypeBVec2:   "bvec2",
	TypeBVec3:   "bvec3",
	TypeBVec4:   "bvec4",
	TypeIVec2:   "ivec2",
	TypeIVec3:   "ivec3",
	TypeIVec4:   "ivec4",
	TypeUVec2:   "uvec2",
	TypeUVec3:   "uvec3",
	TypeUVec4:   "uvec4",
	TypeVec2:    "vec2",
	TypeVec3:    "vec3",
	TypeVec4:    "vec4",
	TypeMat2:    "mat2",
	TypeMat3:    "mat3",
	TypeMat4:    "mat4",
	TypeTexture: "texture",
}

// String returns the canonical (GLSL-like) name of the type.
func (t Type) String() string {
	if t >= typeCount {
		return "invalid"
	}
	return typeNames[t]
}

// ParseType parses a canonical type name as returned by [Type.String].
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeNone, nil
	}
	for i := TypeVoid; i < typeCount; i++ {
		if typeNames[i] == s {
			return i, nil
		}
	}
	return TypeNone, errors.New("unknown node type " + s)
}

// Length returns the number of scalar components of the type. Matrices
// return rows*columns, opaque and void types return 0.
func (t Type) Length() int {
	switch t {
	case TypeBool, TypeInt, TypeUint, TypeFloat:
		return 1
	case TypeBVec2, TypeIVec2, TypeUVec2, TypeVec2:
		return 2
	case TypeBVec3, TypeIVec3, TypeUVec3, TypeVec3:
		return 3
	case TypeBVec4, TypeIVec4, TypeUVec4, TypeVec4, TypeMat2:
		return 4
	case TypeMat3:
		return 9
	case TypeMat4:
		return 16
	}
	return 0
}

// IsVector reports whether t is a 2, 3 or 4 component vector of any scalar kind.
func (t Type) IsVector() bool { return t >= TypeBVec2 && t <= TypeVec4 }

// IsMatrix reports whether t is a square float matrix.
func (t Type) IsMatrix() bool { return t >= TypeMat2 && t <= TypeMat4 }

// IsScalar reports whether t is bool, int, uint or float.
func (t Type) IsScalar() bool { return t >= TypeBool && t <= TypeFloat }

// IsInteger reports whether the component type of t is int or uint.
func (t Type) IsInteger() bool {
	c := t.ComponentType()
	return c == TypeInt || c == TypeUint
}

// ComponentType returns the scalar type of t's components. Matrices have float components.
func (t Type) ComponentType() Type {
	switch {
	case t.IsScalar():
		return t
	case t >= TypeBVec2 && t <= TypeBVec4:
		return TypeBool
	case t >= TypeIVec2 && t <= TypeIVec4:
		return TypeInt
	case t >= TypeUVec2 && t <= TypeUVec4:
		return TypeUint
	case t >= TypeVec2 && t <= TypeVec4, t.IsMatrix():
		return TypeFloat
	}
	return TypeNone
}

// TypeFromLength returns the scalar or vector type with length components of kind component.
// Lengths 9 and 16 return mat3 and mat4 for float components. Returns TypeNone if there is no such type.
func TypeFromLength(length int, component Type) Type {
	switch component {
	case TypeBool, TypeInt, TypeUint, TypeFloat:
	default:
		return TypeNone
	}
	switch length {
	case 1:
		return component
	case 2, 3, 4:
		var base Type
		switch component {
		case TypeBool:
			base = TypeBVec2
		case TypeInt:
			base = TypeIVec2
		case TypeUint:
			base = TypeUVec2
		default:
			base = TypeVec2
		}
		return base + Type(length-2)
	case 9:
		if component == TypeFloat {
			return TypeMat3
		}
	case 16:
		if component == TypeFloat {
			return TypeMat4
		}
	}
	return TypeNone
}

// WithComponent returns the type with t's shape and the argument component kind.
func (t Type) WithComponent(component Type) Type {
	if t.IsMatrix() {
		return t
	}
	return TypeFromLength(t.Length(), component)
}

// IntegerType returns the integer equivalent of t. Unsigned types are kept unsigned.
func (t Type) IntegerType() Type {
	if t.ComponentType() == TypeUint {
		return t
	}
	return t.WithComponent(TypeInt)
}

// VectorFromMatrix returns the column vector type of a matrix type.
func (t Type) VectorFromMatrix() Type {
	switch t {
	case TypeMat2:
		return TypeVec2
	case TypeMat3:
		return TypeVec3
	case TypeMat4:
		return TypeVec4
	}
	return t
}

// BuildStage is one of the three sequential passes of a compile.
type BuildStage uint8

const (
	BuildStageNone BuildStage = iota
	BuildSetup
	BuildAnalyze
	BuildGenerate
)

// BuildStages lists the build stages in the order they run.
var BuildStages = [3]BuildStage{BuildSetup, BuildAnalyze, BuildGenerate}

func (s BuildStage) String() string {
	switch s {
	case BuildSetup:
		return "setup"
	case BuildAnalyze:
		return "analyze"
	case BuildGenerate:
		return "generate"
	}
	return "none"
}

// Parent returns the stage that must have run before s for any given node.
func (s BuildStage) Parent() BuildStage {
	switch s {
	case BuildAnalyze:
		return BuildSetup
	case BuildGenerate:
		return BuildAnalyze
	}
	return BuildStageNone
}

// StageSet is a bitset of build stages a node has gone through.
type StageSet uint8

func (ss StageSet) Has(s BuildStage) bool { return s != BuildStageNone && ss&(1<<s) != 0 }

func (ss *StageSet) Set(s BuildStage) {
	if s != BuildStageNone {
		*ss |= 1 << s
	}
}

// ShaderStage is the logical program stage a value is computed in.
type ShaderStage uint8

const (
	// ShaderStageAny keys stage independent node data.
	ShaderStageAny ShaderStage = iota
	ShaderStageVertex
	ShaderStageFragment
	ShaderStageCompute
	shaderStageCount
)

// ShaderStages lists the shader stages in the order the builder visits them.
var ShaderStages = [3]ShaderStage{ShaderStageVertex, ShaderStageFragment, ShaderStageCompute}

func (s ShaderStage) String() string {
	switch s {
	case ShaderStageVertex:
		return "vertex"
	case ShaderStageFragment:
		return "fragment"
	case ShaderStageCompute:
		return "compute"
	}
	return "any"
}

// UpdateType describes how often a node update hook runs.
type UpdateType uint8

const (
	UpdateNone UpdateType = iota
	// UpdateFrame runs a hook at most once per frame.
	UpdateFrame
	// UpdateRender runs a hook at most once per render call.
	UpdateRender
	// UpdateObject runs a hook for every object rendered.
	UpdateObject
)

func (u UpdateType) String() string {
	switch u {
	case UpdateFrame:
		return "frame"
	case UpdateRender:
		return "render"
	case UpdateObject:
		return "object"
	}
	return "none"
}

// Interpolation is the interpolation mode of a varying.
type Interpolation uint8

const (
	InterpolationDefault Interpolation = iota
	InterpolationPerspective
	InterpolationLinear
	InterpolationFlat
)

// Sampling is the interpolation sampling of a varying.
type Sampling uint8

const (
	SamplingDefault Sampling = iota
	SamplingCenter
	SamplingCentroid
	SamplingSample
)
