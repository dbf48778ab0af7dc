package glbuild

import (
	"math"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glnode"
)

func TestFormat(t *testing.T) {
	glsl := (&glslBackend{}).typeName
	for _, test := range []struct {
		from, to glnode.Type
		want     string
	}{
		{glnode.TypeVec3, glnode.TypeVec3, "s"},
		{glnode.TypeVec3, glnode.TypeNone, "s"},
		{glnode.TypeFloat, glnode.TypeVec3, "vec3( s )"},
		{glnode.TypeFloat, glnode.TypeInt, "int( s )"},
		{glnode.TypeInt, glnode.TypeVec2, "vec2( float( s ) )"},
		{glnode.TypeVec3, glnode.TypeVec4, "vec4( s, 1.0 )"},
		{glnode.TypeVec2, glnode.TypeVec3, "vec3( s, 0.0 )"},
		{glnode.TypeVec2, glnode.TypeVec4, "vec4( vec3( s, 0.0 ), 1.0 )"},
		{glnode.TypeVec4, glnode.TypeVec2, "s.xy"},
		{glnode.TypeVec3, glnode.TypeFloat, "s.x"},
		{glnode.TypeVec4, glnode.TypeInt, "int( s.x )"},
		{glnode.TypeIVec3, glnode.TypeVec3, "vec3( s )"},
		{glnode.TypeBVec3, glnode.TypeBool, "all( s )"},
		{glnode.TypeMat4, glnode.TypeMat3, "mat3( s[ 0 ].xyz, s[ 1 ].xyz, s[ 2 ].xyz )"},
		{glnode.TypeMat3, glnode.TypeMat2, "mat2( s[ 0 ].xy, s[ 1 ].xy )"},
		{glnode.TypeFloat, glnode.TypeMat3, "mat3( s )"},
		{glnode.TypeMat3, glnode.TypeVec3, "s"},
		{glnode.TypeTexture, glnode.TypeVec4, "s"},
	} {
		got := format(glsl, "s", test.from, test.to)
		if got != test.want {
			t.Errorf("format %s to %s: got %q, want %q", test.from, test.to, got, test.want)
		}
	}
}

func TestGenerateConst(t *testing.T) {
	glsl := (&glslBackend{}).typeName
	wgsl := (&wgslBackend{}).typeName
	for _, test := range []struct {
		typeName func(glnode.Type) string
		t        glnode.Type
		v        any
		want     string
	}{
		{glsl, glnode.TypeFloat, nil, "0.0"},
		{glsl, glnode.TypeFloat, float32(2), "2.0"},
		{glsl, glnode.TypeFloat, -1.25, "-1.25"},
		{glsl, glnode.TypeInt, int32(-3), "-3"},
		{glsl, glnode.TypeUint, uint32(4), "4u"},
		{glsl, glnode.TypeBool, true, "true"},
		{glsl, glnode.TypeBool, nil, "false"},
		{glsl, glnode.TypeVec3, ms3.Vec{X: 1, Y: 2, Z: 3}, "vec3(1.0,2.0,3.0)"},
		{glsl, glnode.TypeVec3, float32(0.5), "vec3(0.5,0.5,0.5)"},
		{glsl, glnode.TypeIVec2, nil, "ivec2(0,0)"},
		{glsl, glnode.TypeVec4, glnode.Vec4{0, 0.25, 0.5, 1}, "vec4(0.0,0.25,0.5,1.0)"},
		{glsl, glnode.TypeMat3, ms3.IdentityMat3(), "mat3(1.0,0.0,0.0,0.0,1.0,0.0,0.0,0.0,1.0)"},
		{wgsl, glnode.TypeVec2, ms2.Vec{X: 0.5, Y: 1}, "vec2<f32>(0.5,1.0)"},
		{wgsl, glnode.TypeUVec3, nil, "vec3<u32>(0u,0u,0u)"},
	} {
		got, err := generateConst(test.typeName, test.t, test.v)
		if err != nil {
			t.Errorf("generateConst %s %v: %s", test.t, test.v, err)
		} else if got != test.want {
			t.Errorf("generateConst %s %v: got %q, want %q", test.t, test.v, got, test.want)
		}
	}
	if _, err := generateConst(glsl, glnode.TypeVec3, ms2.Vec{}); err == nil {
		t.Error("expected error for mismatched component count")
	}
	if _, err := generateConst(glsl, glnode.TypeVoid, nil); err == nil {
		t.Error("expected error for void literal")
	}
}

func TestAppendFloat(t *testing.T) {
	for _, test := range []struct {
		v    float32
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{0.25, "0.25"},
		{100, "100.0"},
		{float32(math.NaN()), "0.0"},
	} {
		got := string(AppendFloat(nil, '-', '.', test.v))
		if got != test.want {
			t.Errorf("AppendFloat(%v) = %q, want %q", test.v, got, test.want)
		}
	}
	got := string(AppendFloat(nil, 'n', 'p', float32(math.Inf(-1))))
	if !strings.HasPrefix(got, "n340282346") || !strings.HasSuffix(got, "p0") {
		t.Errorf("bad clamped infinity %q", got)
	}
	got = string(AppendFloats(nil, ',', '-', '.', 1, 2, 3))
	if got != "1.0,2.0,3.0" {
		t.Errorf("AppendFloats = %q", got)
	}
}
