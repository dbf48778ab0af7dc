package glbuild

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glnode"
)

const decimalDigits = 9

// AppendFloat appends v with up to 9 decimal digits trimming trailing zeros
// past the first decimal digit. Infinities are clamped to the largest finite
// float32 and NaN is written as zero since shading languages lack literals for them.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	switch {
	case math32.IsNaN(v):
		v = 0
	case math32.IsInf(v, 1):
		v = math.MaxFloat32
	case math32.IsInf(v, -1):
		v = -math.MaxFloat32
	}
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start+1 && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

// AppendFloats appends the values separated by sep.
func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

// AppendVec2 appends a vector constructor of type typename.
func AppendVec2(b []byte, typename string, v ms2.Vec) []byte {
	arr := v.Array()
	return appendConstructor(b, typename, arr[:])
}

// AppendVec3 appends a vector constructor of type typename.
func AppendVec3(b []byte, typename string, v ms3.Vec) []byte {
	arr := v.Array()
	return appendConstructor(b, typename, arr[:])
}

func AppendMat2(b []byte, typename string, m22 ms2.Mat2) []byte {
	arr := m22.Array()
	return appendMat(b, typename, 2, 2, arr[:])
}

func AppendMat3(b []byte, typename string, m33 ms3.Mat3) []byte {
	arr := m33.Array()
	return appendMat(b, typename, 3, 3, arr[:])
}

func AppendMat4(b []byte, typename string, m44 ms3.Mat4) []byte {
	arr := m44.Array()
	return appendMat(b, typename, 4, 4, arr[:])
}

// appendMat appends a matrix constructor from row major arr.
func appendMat(b []byte, typename string, row, col int, arr []float32) []byte {
	b = append(b, typename...)
	b = append(b, '(')
	for i := 0; i < row; i++ {
		for j := 0; j < col; j++ {
			v := arr[j*row+i] // Column major access, as per OpenGL standard.
			b = AppendFloat(b, '-', '.', v)
			last := i == row-1 && j == col-1
			if !last {
				b = append(b, ',')
			}
		}
	}
	return append(b, ')')
}

func appendConstructor(b []byte, typename string, comps []float32) []byte {
	b = append(b, typename...)
	b = append(b, '(')
	b = AppendFloats(b, ',', '-', '.', comps...)
	return append(b, ')')
}

func appendScalar(b []byte, component glnode.Type, v float32) []byte {
	switch component {
	case glnode.TypeBool:
		return strconv.AppendBool(b, v != 0)
	case glnode.TypeInt:
		return strconv.AppendInt(b, int64(v), 10)
	case glnode.TypeUint:
		if v < 0 {
			v = 0
		}
		b = strconv.AppendUint(b, uint64(v), 10)
		return append(b, 'u')
	}
	return AppendFloat(b, '-', '.', v)
}

// generateConst writes the literal of value as type t. A nil value writes the zero value.
func generateConst(typeName func(glnode.Type) string, t glnode.Type, value any) (string, error) {
	length := t.Length()
	if length == 0 {
		return "", fmt.Errorf("no literal for type %s", t)
	}
	if glnode.ValueType(value) == t {
		// Exact integer literals and matrix layouts.
		switch v := value.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int32:
			return strconv.FormatInt(int64(v), 10), nil
		case uint32:
			return strconv.FormatUint(uint64(v), 10) + "u", nil
		case ms2.Vec:
			return string(AppendVec2(nil, typeName(t), v)), nil
		case ms3.Vec:
			return string(AppendVec3(nil, typeName(t), v)), nil
		case ms2.Mat2:
			return string(AppendMat2(nil, typeName(t), v)), nil
		case ms3.Mat3:
			return string(AppendMat3(nil, typeName(t), v)), nil
		case ms3.Mat4:
			return string(AppendMat4(nil, typeName(t), v)), nil
		}
	}
	comps := make([]float32, length)
	if value != nil {
		vc, err := glnode.ValueComponents(value)
		if err != nil {
			return "", err
		}
		switch {
		case len(vc) == length:
			copy(comps, vc)
		case len(vc) == 1:
			for i := range comps {
				comps[i] = vc[0]
			}
		default:
			return "", fmt.Errorf("%d component value for type %s", len(vc), t)
		}
	}
	component := t.ComponentType()
	if length == 1 {
		return string(appendScalar(nil, component, comps[0])), nil
	}
	if t.IsMatrix() {
		n := 2
		if t == glnode.TypeMat3 {
			n = 3
		} else if t == glnode.TypeMat4 {
			n = 4
		}
		return string(appendMat(nil, typeName(t), n, n, comps)), nil
	}
	b := append([]byte(typeName(t)), '(')
	for i, c := range comps {
		b = appendScalar(b, component, c)
		if i != len(comps)-1 {
			b = append(b, ',')
		}
	}
	return string(append(b, ')')), nil
}

func ms3Identity() ms3.Mat4 { return ms3.ScalingMat4(ms3.Vec{X: 1, Y: 1, Z: 1}) }
