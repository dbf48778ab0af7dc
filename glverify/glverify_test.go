package glverify

import (
	"testing"

	"github.com/soypat/glnode/glbuild"
)

func TestCheckProgram(t *testing.T) {
	for _, test := range []struct {
		p  *glbuild.Program
		ok bool
	}{
		{nil, false},
		{&glbuild.Program{Language: glbuild.WGSL, Vertex: "v", Fragment: "f"}, false},
		{&glbuild.Program{Language: glbuild.GLSL, Vertex: "v"}, false},
		{&glbuild.Program{Language: glbuild.GLSL, Vertex: "v", Fragment: "f"}, true},
		{&glbuild.Program{Language: glbuild.GLSL, Compute: "c"}, true},
	} {
		err := checkProgram(test.p)
		if (err == nil) != test.ok {
			t.Errorf("checkProgram(%+v) = %v", test.p, err)
		}
	}
}

func TestCString(t *testing.T) {
	if cstr("") != "" {
		t.Error("empty source should stay empty")
	}
	if got := cstr("void main() {}"); got != "void main() {}\x00" {
		t.Errorf("got %q", got)
	}
}
