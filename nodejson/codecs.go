package nodejson

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glnode"
)

// valueData is a serialized constant or uniform value.
type valueData struct {
	Type  string    `json:"type"`
	Value []float64 `json:"value"`
}

func encodeValue(v any) (valueData, error) {
	t := glnode.ValueType(v)
	if t == glnode.TypeNone {
		return valueData{}, fmt.Errorf("unsupported value %T", v)
	}
	vd := valueData{Type: t.String()}
	switch v := v.(type) {
	case int:
		vd.Value = []float64{float64(v)}
	case int32:
		vd.Value = []float64{float64(v)}
	case uint32:
		vd.Value = []float64{float64(v)}
	default:
		comps, err := glnode.ValueComponents(v)
		if err != nil {
			return vd, err
		}
		for _, c := range comps {
			vd.Value = append(vd.Value, float64(c))
		}
	}
	return vd, nil
}

func decodeValue(vd valueData) (any, error) {
	t, err := glnode.ParseType(vd.Type)
	if err != nil {
		return nil, err
	}
	if len(vd.Value) != t.Length() {
		return nil, fmt.Errorf("%d components for %s value", len(vd.Value), t)
	}
	f := make([]float32, len(vd.Value))
	for i, v := range vd.Value {
		f[i] = float32(v)
	}
	switch t {
	case glnode.TypeBool:
		return vd.Value[0] != 0, nil
	case glnode.TypeInt:
		return int32(vd.Value[0]), nil
	case glnode.TypeUint:
		return uint32(vd.Value[0]), nil
	case glnode.TypeFloat:
		return f[0], nil
	case glnode.TypeVec2:
		return ms2.Vec{X: f[0], Y: f[1]}, nil
	case glnode.TypeVec3:
		return ms3.Vec{X: f[0], Y: f[1], Z: f[2]}, nil
	case glnode.TypeVec4:
		return glnode.Vec4{f[0], f[1], f[2], f[3]}, nil
	case glnode.TypeMat2:
		return ms2.NewMat2(f), nil
	case glnode.TypeMat3:
		return ms3.NewMat3(f), nil
	case glnode.TypeMat4:
		return ms3.NewMat4(f), nil
	}
	return nil, fmt.Errorf("unsupported value type %s", t)
}

func decodeJSON[T any](data json.RawMessage) (T, error) {
	var v T
	if len(data) == 0 {
		return v, errors.New("missing node data")
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

func parseType(s string) (glnode.Type, error) { return glnode.ParseType(s) }

type namedData struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

type uniformData struct {
	Name  string    `json:"name"`
	Value valueData `json:"value"`
}

type varyingData struct {
	Name          string               `json:"name,omitempty"`
	Interpolation glnode.Interpolation `json:"interpolation,omitempty"`
	Sampling      glnode.Sampling      `json:"sampling,omitempty"`
}

type propertyData struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Varying bool   `json:"varying,omitempty"`
}

type methodData struct {
	Op        string `json:"op,omitempty"`
	Method    string `json:"method,omitempty"`
	Count     int    `json:"count,omitempty"`
	To        string `json:"to,omitempty"`
	Component string `json:"components,omitempty"`
}

type textureNodeData struct {
	Texture string `json:"texture"`
}

func init() {
	Register("ConstNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return encodeValue(n.(*glnode.ConstNode).Value)
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			vd, err := decodeJSON[valueData](data)
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(vd)
			if err != nil {
				return nil, err
			}
			return glnode.Const(v), nil
		},
	})
	Register("UniformNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			u := n.(*glnode.UniformNode)
			vd, err := encodeValue(u.Value)
			return uniformData{Name: u.Name, Value: vd}, err
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			ud, err := decodeJSON[uniformData](data)
			if err != nil {
				return nil, err
			}
			v, err := decodeValue(ud.Value)
			if err != nil {
				return nil, err
			}
			return glnode.NewUniform(ud.Name, v), nil
		},
	})
	Register("AttributeNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			a := n.(*glnode.AttributeNode)
			nd := namedData{Name: a.Name}
			if a.Type != glnode.TypeNone {
				nd.Type = a.Type.String()
			}
			return nd, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			nd, err := decodeJSON[namedData](data)
			if err != nil {
				return nil, err
			}
			t, err := parseType(nd.Type)
			if err != nil {
				return nil, err
			}
			return glnode.Attribute(nd.Name, t), nil
		},
	})
	Register("VaryingNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			v := n.(*glnode.VaryingNode)
			return varyingData{Name: v.Name, Interpolation: v.Interpolation, Sampling: v.Sampling}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			vd, err := decodeJSON[varyingData](data)
			if err != nil {
				return nil, err
			}
			v := &glnode.VaryingNode{Base: glnode.NewBase(glnode.TypeNone), Name: vd.Name}
			v.Global = true
			v.SetInterpolation(vd.Interpolation, vd.Sampling)
			return v, nil
		},
	})
	Register("PropertyNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			p := n.(*glnode.PropertyNode)
			return propertyData{Name: p.Name, Type: p.Type.String(), Varying: p.Varying}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			pd, err := decodeJSON[propertyData](data)
			if err != nil {
				return nil, err
			}
			t, err := parseType(pd.Type)
			if err != nil {
				return nil, err
			}
			if pd.Varying {
				return glnode.NewVaryingProperty(t, pd.Name), nil
			}
			return glnode.NewProperty(t, pd.Name), nil
		},
	})
	Register("VarNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return namedData{Name: n.(*glnode.VarNode).Name}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			nd, err := decodeJSON[namedData](data)
			if err != nil {
				return nil, err
			}
			return &glnode.VarNode{Base: glnode.NewBase(glnode.TypeNone), Name: nd.Name}, nil
		},
	})
	Register("AssignNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) { return nil, nil },
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			return &glnode.AssignNode{Base: glnode.NewBase(glnode.TypeNone)}, nil
		},
	})
	Register("OperatorNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return methodData{Op: n.(*glnode.OperatorNode).Op}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			md, err := decodeJSON[methodData](data)
			if err != nil {
				return nil, err
			}
			if !glnode.IsOperator(md.Op) {
				return nil, fmt.Errorf("unknown operator %q", md.Op)
			}
			return &glnode.OperatorNode{TempBase: glnode.NewTempBase(glnode.TypeNone), Op: md.Op}, nil
		},
	})
	Register("MathNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return methodData{Method: n.(*glnode.MathNode).Method}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			md, err := decodeJSON[methodData](data)
			if err != nil {
				return nil, err
			}
			if glnode.MathArity(md.Method) == 0 {
				return nil, fmt.Errorf("unknown math method %q", md.Method)
			}
			return &glnode.MathNode{TempBase: glnode.NewTempBase(glnode.TypeNone), Method: md.Method}, nil
		},
	})
	Register("ConvertNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return methodData{To: n.(*glnode.ConvertNode).To.String()}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			md, err := decodeJSON[methodData](data)
			if err != nil {
				return nil, err
			}
			to, err := parseType(md.To)
			if err != nil {
				return nil, err
			}
			return &glnode.ConvertNode{Base: glnode.NewBase(to), To: to}, nil
		},
	})
	Register("SwizzleNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return methodData{Component: n.(*glnode.SwizzleNode).Components}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			md, err := decodeJSON[methodData](data)
			if err != nil {
				return nil, err
			}
			components, err := glnode.ParseSwizzle(md.Component)
			if err != nil {
				return nil, err
			}
			return &glnode.SwizzleNode{Base: glnode.NewBase(glnode.TypeNone), Components: components}, nil
		},
	})
	Register("JoinNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			return methodData{Count: len(n.(*glnode.JoinNode).Nodes)}, nil
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			md, err := decodeJSON[methodData](data)
			if err != nil {
				return nil, err
			}
			if md.Count < 1 || md.Count > 16 {
				return nil, fmt.Errorf("invalid join operand count %d", md.Count)
			}
			return &glnode.JoinNode{TempBase: glnode.NewTempBase(glnode.TypeNone), Nodes: make([]glnode.Node, md.Count)}, nil
		},
	})
	Register("TextureNode", Codec{
		Encode: func(e *Encoder, n glnode.Node) (any, error) {
			id, err := e.Texture(n.(*glnode.TextureNode).Texture)
			return textureNodeData{Texture: id}, err
		},
		Decode: func(d *Decoder, data json.RawMessage) (glnode.Node, error) {
			td, err := decodeJSON[textureNodeData](data)
			if err != nil {
				return nil, err
			}
			tex, err := d.Texture(td.Texture)
			if err != nil {
				return nil, err
			}
			return &glnode.TextureNode{Base: glnode.NewBase(glnode.TypeVec4), Texture: tex}, nil
		},
	})
}
