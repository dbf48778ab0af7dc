package glnode

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/google/uuid"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
)

// Vec4 is a four component float vector value.
type Vec4 [4]float32

// ValueType returns the node type of a Go value usable as constant or uniform value.
// Supported values are bool, int32, int, uint32, float32, float64, [ms2.Vec], [ms3.Vec], [Vec4],
// [ms2.Mat2], [ms3.Mat3], [ms3.Mat4] and []float32 of a valid type length.
func ValueType(v any) Type {
	switch v := v.(type) {
	case bool:
		return TypeBool
	case int, int32:
		return TypeInt
	case uint32:
		return TypeUint
	case float32, float64:
		return TypeFloat
	case ms2.Vec:
		return TypeVec2
	case ms3.Vec:
		return TypeVec3
	case Vec4:
		return TypeVec4
	case ms2.Mat2:
		return TypeMat2
	case ms3.Mat3:
		return TypeMat3
	case ms3.Mat4:
		return TypeMat4
	case []float32:
		return TypeFromLength(len(v), TypeFloat)
	}
	return TypeNone
}

// ValueComponents returns the scalar components of a value accepted by [ValueType]
// as float32. Matrices are returned in row major order. Booleans are 0 or 1.
func ValueComponents(v any) ([]float32, error) {
	switch v := v.(type) {
	case bool:
		if v {
			return []float32{1}, nil
		}
		return []float32{0}, nil
	case int:
		return []float32{float32(v)}, nil
	case int32:
		return []float32{float32(v)}, nil
	case uint32:
		return []float32{float32(v)}, nil
	case float32:
		return []float32{v}, nil
	case float64:
		return []float32{float32(v)}, nil
	case ms2.Vec:
		return []float32{v.X, v.Y}, nil
	case ms3.Vec:
		return []float32{v.X, v.Y, v.Z}, nil
	case Vec4:
		return v[:], nil
	case ms2.Mat2:
		arr := v.Array()
		return arr[:], nil
	case ms3.Mat3:
		arr := v.Array()
		return arr[:], nil
	case ms3.Mat4:
		arr := v.Array()
		return arr[:], nil
	case []float32:
		if ValueType(v) == TypeNone {
			return nil, fmt.Errorf("invalid float slice length %d", len(v))
		}
		return v, nil
	}
	return nil, fmt.Errorf("unsupported node value %T", v)
}

func valueKey(v any) uint64 {
	comps, err := ValueComponents(v)
	if err != nil {
		return 0
	}
	var buf [4]byte
	key := uint64(ValueType(v))
	for _, c := range comps {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(c))
		key = hash(buf[:], key)
	}
	return key
}

// ConstNode is a literal value inlined in generated code.
type ConstNode struct {
	Base
	Value any
}

// Const returns a literal node. It panics if v is not supported by [ValueType].
func Const(v any) *ConstNode {
	t := ValueType(v)
	if t == TypeNone {
		panic(fmt.Sprintf("unsupported constant %T", v))
	}
	return &ConstNode{Base: NewBase(t), Value: v}
}

func Float(v float32) *ConstNode       { return Const(v) }
func Int(v int32) *ConstNode           { return Const(v) }
func Uint(v uint32) *ConstNode         { return Const(v) }
func Bool(v bool) *ConstNode           { return Const(v) }
func Vec2(v ms2.Vec) *ConstNode        { return Const(v) }
func Vec3(v ms3.Vec) *ConstNode        { return Const(v) }
func Mat2(m ms2.Mat2) *ConstNode       { return Const(m) }
func Mat3(m ms3.Mat3) *ConstNode       { return Const(m) }
func Mat4(m ms3.Mat4) *ConstNode       { return Const(m) }
func Color(r, g, b float32) *ConstNode { return Const(ms3.Vec{X: r, Y: g, Z: b}) }

func Vec4Of(x, y, z, w float32) *ConstNode { return Const(Vec4{x, y, z, w}) }

// SetValue replaces the literal and flags the node as updated.
func (c *ConstNode) SetValue(v any) {
	t := ValueType(v)
	if t == TypeNone {
		panic(fmt.Sprintf("unsupported constant %T", v))
	}
	c.Value = v
	c.Type = t
	c.NeedsUpdate()
}

func (c *ConstNode) NodeType(b Builder, output Type) Type { return c.Type }

func (c *ConstNode) CustomCacheKey() uint64 { return valueKey(c.Value) }

func (c *ConstNode) GenerateOnce(b Builder) string {
	return b.GenerateConst(c.Type, c.Value)
}

// UniformNode is a host provided value declared as a uniform. Uniforms with the same name share one declaration.
type UniformNode struct {
	Base
	Name  string
	Value any
}

// NewUniform returns a uniform node of the type of value. It panics if value is not supported by [ValueType].
func NewUniform(name string, value any) *UniformNode {
	t := ValueType(value)
	if t == TypeNone {
		panic(fmt.Sprintf("unsupported uniform value %T", value))
	}
	u := &UniformNode{Base: NewBase(t), Name: name, Value: value}
	u.Global = true
	return u
}

// SetValue sets the value uploaded for the uniform. Generated code does not change.
func (u *UniformNode) SetValue(v any) { u.Value = v }

func (u *UniformNode) NodeType(b Builder, output Type) Type { return u.Type }

func (u *UniformNode) Hash(b Builder) string {
	if u.Name != "" {
		return "uniform:" + u.Name
	}
	return ""
}

func (u *UniformNode) CustomCacheKey() uint64 { return HashValues(HashString(u.Name), uint64(u.Type)) }

func (u *UniformNode) GenerateOnce(b Builder) string {
	slot := b.UniformFromNode(u, u.Name, u.Type)
	return b.PropertyName(slot, b.ShaderStage())
}

// AttributeNode reads a geometry vertex attribute. Outside the vertex stage the
// attribute is passed through a varying.
type AttributeNode struct {
	Base
	Name string
}

// Attribute returns a node reading the named geometry attribute. If typ is
// TypeNone the attribute's type in the geometry is used.
func Attribute(name string, typ Type) *AttributeNode {
	a := &AttributeNode{Base: NewBase(typ), Name: name}
	a.Global = true
	return a
}

func (a *AttributeNode) NodeType(b Builder, output Type) Type {
	if a.Type != TypeNone {
		return a.Type
	}
	if b != nil {
		if t, ok := b.GeometryAttribute(a.Name); ok {
			return t
		}
	}
	return TypeFloat
}

func (a *AttributeNode) Hash(b Builder) string {
	return "attribute:" + a.Name + ":" + a.Type.String()
}

func (a *AttributeNode) CustomCacheKey() uint64 { return HashValues(HashString(a.Name), uint64(a.Type)) }

func (a *AttributeNode) GenerateOnce(b Builder) string {
	typ := a.NodeType(b, TypeNone)
	attrType, ok := b.GeometryAttribute(a.Name)
	if !ok {
		b.Logger().Warn("vertex attribute not found on geometry", nodeAttr(a), "attribute", a.Name)
		return b.GenerateConst(typ, nil)
	}
	attr := b.AttributeFromName(a.Name, attrType)
	if b.ShaderStage() != ShaderStageFragment {
		return b.Format(b.PropertyName(attr, b.ShaderStage()), attrType, typ)
	}
	return Code(b, NewVarying(a, ""), typ)
}

// Texture is an image sampled by texture nodes.
type Texture struct {
	uuid  string
	Name  string
	Image image.Image
}

// NewTexture returns a texture with a new UUID.
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{uuid: uuid.NewString(), Name: name, Image: img}
}

// UUID returns the texture's unique identifier.
func (t *Texture) UUID() string {
	if t.uuid == "" {
		t.uuid = uuid.NewString()
	}
	return t.uuid
}

// SetUUID overwrites the texture UUID.
func (t *Texture) SetUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return err
	}
	t.uuid = id
	return nil
}

// TextureNode samples a 2D texture at UV. A nil UV samples at the geometry
// uv attribute. A nil Level samples with implicit level of detail.
type TextureNode struct {
	Base
	Texture *Texture
	UV      Node
	Level   Node
}

// NewTextureNode returns a node sampling tex at uv.
func NewTextureNode(tex *Texture, uv Node) *TextureNode {
	if tex == nil {
		panic("nil texture")
	}
	return &TextureNode{Base: NewBase(TypeVec4), Texture: tex, UV: uv}
}

func (t *TextureNode) NodeType(b Builder, output Type) Type { return TypeVec4 }

func (t *TextureNode) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	if err := fn(userData, "uv", &t.UV); err != nil {
		return err
	}
	return fn(userData, "level", &t.Level)
}

func (t *TextureNode) optionalChild(name string) bool { return true }

func (t *TextureNode) CustomCacheKey() uint64 { return HashString(t.Texture.UUID()) }

func (t *TextureNode) Setup(b Builder) Node {
	props := b.NodeProperties(t)
	uv := t.UV
	if uv == nil {
		uv = Attribute("uv", TypeVec2)
	}
	props.SetNode("uv", uv)
	if t.Level != nil {
		props.SetNode("level", t.Level)
	}
	return nil
}

func (t *TextureNode) GenerateOnce(b Builder) string {
	props := b.NodeProperties(t)
	tex := b.TextureFromNode(t, t.Texture)
	uv := Code(b, props.Node("uv"), TypeVec2)
	var level string
	if lvl := props.Node("level"); lvl != nil {
		level = Code(b, lvl, TypeFloat)
	}
	return b.TextureSample(tex, uv, level)
}
