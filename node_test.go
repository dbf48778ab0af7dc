package glnode_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glnode"
	"pgregory.net/rapid"
)

func TestNodeIdentity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 64).Draw(t, "count")
		ids := make(map[uint64]bool, n)
		uuids := make(map[string]bool, n)
		nodes := make([]glnode.Node, n)
		for i := range nodes {
			if rapid.Bool().Draw(t, "lazy") {
				nodes[i] = &glnode.ConstNode{Value: float32(i)}
			} else {
				nodes[i] = glnode.Float(float32(i))
			}
		}
		for _, node := range nodes {
			id := node.NodeBase().ID()
			if ids[id] {
				t.Fatalf("duplicate node id %d", id)
			}
			ids[id] = true
			uuid := node.NodeBase().UUID()
			if uuids[uuid] {
				t.Fatalf("duplicate node uuid %s", uuid)
			}
			uuids[uuid] = true
		}
		for _, node := range nodes {
			nb := node.NodeBase()
			id := nb.ID()
			nb.NeedsUpdate()
			if nb.ID() != id || !ids[id] {
				t.Fatal("node id changed")
			}
		}
	})
}

func TestSetUUID(t *testing.T) {
	n := glnode.Float(1)
	if err := n.SetUUID("not-a-uuid"); err == nil {
		t.Error("expected error for invalid uuid")
	}
	const id = "2f1e6b8a-55c4-4d5e-9e0a-1b2c3d4e5f60"
	if err := n.SetUUID(id); err != nil {
		t.Fatal(err)
	}
	if n.UUID() != id {
		t.Errorf("got uuid %s", n.UUID())
	}
	if glnode.Hash(nil, n) != id {
		t.Error("default hash is not the uuid")
	}
}

func TestHashPrefixes(t *testing.T) {
	for _, test := range []struct {
		n    glnode.Node
		want string
	}{
		{glnode.NewUniform("time", float32(0)), "uniform:time"},
		{glnode.NewVarying(glnode.Float(1), "vUv"), "varying:vUv"},
		{glnode.NewProperty(glnode.TypeVec3, "albedo"), "property:albedo"},
		{glnode.Attribute("uv", glnode.TypeVec2), "attribute:uv:vec2"},
	} {
		if got := glnode.Hash(nil, test.n); got != test.want {
			t.Errorf("%s hash: got %q, want %q", glnode.TypeName(test.n), got, test.want)
		}
	}
	anon := glnode.NewVarying(glnode.Float(1), "")
	if glnode.Hash(nil, anon) != anon.UUID() {
		t.Error("unnamed varying should hash to its uuid")
	}
}

func TestValidate(t *testing.T) {
	if err := glnode.Validate(glnode.Add(glnode.Float(1), glnode.Float(2))); err != nil {
		t.Error(err)
	}
	if err := glnode.Validate(glnode.Not(glnode.Bool(true))); err != nil {
		t.Errorf("unary operator: %s", err)
	}
	bad := &glnode.MathNode{TempBase: glnode.NewTempBase(glnode.TypeNone), Method: glnode.MathMix, A: glnode.Float(1)}
	err := glnode.Validate(bad)
	if err == nil || !strings.Contains(err.Error(), "MathNode.b") || !strings.Contains(err.Error(), "MathNode.c") {
		t.Errorf("expected nil child errors, got %v", err)
	}
	loop := glnode.Add(glnode.Float(1), glnode.Float(2))
	loop.B = glnode.Sin(loop)
	if err := glnode.Validate(loop); err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}
	shared := glnode.Float(1)
	if err := glnode.Validate(glnode.Add(shared, shared)); err != nil {
		t.Errorf("shared child is not a cycle: %s", err)
	}
}

func TestTraverse(t *testing.T) {
	x := glnode.NewUniform("x", float32(1))
	root := glnode.Mix(x, glnode.Float(0), glnode.Sin(x))
	var visited []string
	glnode.Traverse(root, func(n glnode.Node) { visited = append(visited, glnode.TypeName(n)) })
	want := "MathNode,UniformNode,ConstNode,MathNode,UniformNode"
	if got := strings.Join(visited, ","); got != want {
		t.Errorf("got traversal %s, want %s", got, want)
	}
	if len(glnode.Children(root)) != 3 {
		t.Error("want 3 children")
	}
}

func TestTraverseCycle(t *testing.T) {
	loop := glnode.Add(glnode.Float(1), glnode.Float(2))
	sin := glnode.Sin(loop)
	loop.B = sin
	var visited []string
	glnode.Traverse(loop, func(n glnode.Node) { visited = append(visited, glnode.TypeName(n)) })
	want := "OperatorNode,ConstNode,MathNode"
	if got := strings.Join(visited, ","); got != want {
		t.Errorf("got traversal %s, want %s", got, want)
	}
}

func TestJoinEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic joining no operands")
		}
	}()
	glnode.Join()
}

func TestLazyBaseConcurrent(t *testing.T) {
	n := &glnode.ConstNode{Value: float32(1)}
	const workers = 8
	ids := make([]uint64, workers)
	uuids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = n.ID()
			uuids[i] = n.UUID()
		}(i)
	}
	wg.Wait()
	for i := 1; i < workers; i++ {
		if ids[i] != ids[0] || uuids[i] != uuids[0] {
			t.Fatalf("lazy initialization raced: ids %v, uuids %v", ids, uuids)
		}
	}
	if ids[0] == 0 || uuids[0] == "" {
		t.Error("node not initialized")
	}
	lazy := &glnode.ConstNode{Value: float32(2)}
	const id = "2f1e6b8a-55c4-4d5e-9e0a-1b2c3d4e5f61"
	if err := lazy.SetUUID(id); err != nil {
		t.Fatal(err)
	}
	if lazy.UUID() != id || lazy.ID() == 0 {
		t.Errorf("SetUUID on zero node lost: %s %d", lazy.UUID(), lazy.ID())
	}
}

func TestDispose(t *testing.T) {
	n := glnode.Float(1)
	calls := 0
	n.OnDispose(func() { calls++ })
	n.OnDispose(func() { calls++ })
	glnode.Add(n, glnode.Float(2)).Dispose()
	if calls != 0 {
		t.Error("dispose cascaded to child")
	}
	n.Dispose()
	if calls != 2 {
		t.Errorf("want 2 dispose notifications, got %d", calls)
	}
}

func TestOperatorNodeType(t *testing.T) {
	vec3 := glnode.Vec3(ms3.Vec{X: 1, Y: 2, Z: 3})
	vec4 := glnode.Vec4Of(1, 2, 3, 4)
	mat3 := glnode.Mat3(ms3.IdentityMat3())
	for _, test := range []struct {
		name   string
		n      glnode.Node
		output glnode.Type
		want   glnode.Type
	}{
		{"add vec3 float", glnode.Add(vec3, glnode.Float(1)), glnode.TypeNone, glnode.TypeVec3},
		{"add float vec3", glnode.Add(glnode.Float(1), vec3), glnode.TypeNone, glnode.TypeVec3},
		{"less vec4", glnode.LessThan(vec4, vec4), glnode.TypeBVec4, glnode.TypeBVec4},
		{"less float", glnode.LessThan(glnode.Float(1), glnode.Float(2)), glnode.TypeNone, glnode.TypeBool},
		{"bitand int", glnode.BitAnd(glnode.Int(1), glnode.Int(3)), glnode.TypeNone, glnode.TypeInt},
		{"bitand float", glnode.BitAnd(vec3, vec3), glnode.TypeNone, glnode.TypeIVec3},
		{"and bool", glnode.And(glnode.Bool(true), glnode.Bool(false)), glnode.TypeNone, glnode.TypeBool},
		{"mat vec", glnode.Mul(mat3, vec3), glnode.TypeNone, glnode.TypeVec3},
		{"vec mat", glnode.Mul(vec3, mat3), glnode.TypeNone, glnode.TypeVec3},
		{"mat scale", glnode.Mul(mat3, glnode.Float(2)), glnode.TypeNone, glnode.TypeMat3},
		{"mod", glnode.Mod(vec3, glnode.Float(2)), glnode.TypeNone, glnode.TypeVec3},
		{"dot", glnode.Dot(vec3, vec3), glnode.TypeNone, glnode.TypeFloat},
		{"cross", glnode.Cross(vec3, vec3), glnode.TypeNone, glnode.TypeVec3},
		{"mix", glnode.Mix(vec4, vec4, glnode.Float(0.5)), glnode.TypeNone, glnode.TypeVec4},
		{"swizzle", glnode.Swizzle(vec4, "zyx"), glnode.TypeNone, glnode.TypeVec3},
		{"join", glnode.Join(vec3, glnode.Float(1)), glnode.TypeNone, glnode.TypeVec4},
		{"convert", glnode.Convert(vec3, glnode.TypeIVec3), glnode.TypeNone, glnode.TypeIVec3},
	} {
		if got := test.n.NodeType(nil, test.output); got != test.want {
			t.Errorf("%s: got %s, want %s", test.name, got, test.want)
		}
	}
}

func TestParseHelpers(t *testing.T) {
	if got, err := glnode.ParseSwizzle("rgb"); err != nil || got != "xyz" {
		t.Errorf("ParseSwizzle(rgb) = %q, %v", got, err)
	}
	for _, bad := range []string{"", "xyzwx", "xq"} {
		if _, err := glnode.ParseSwizzle(bad); err == nil {
			t.Errorf("ParseSwizzle(%q) expected error", bad)
		}
	}
	if !glnode.IsOperator("<<") || !glnode.IsOperator("!") || glnode.IsOperator("**") {
		t.Error("IsOperator misclassified")
	}
	if glnode.MathArity(glnode.MathClamp) != 3 || glnode.MathArity("nope") != 0 {
		t.Error("unexpected math arity")
	}
	for typ := glnode.TypeVoid; typ <= glnode.TypeTexture; typ++ {
		got, err := glnode.ParseType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseType(%s) = %s, %v", typ, got, err)
		}
	}
}
