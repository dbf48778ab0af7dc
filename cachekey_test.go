package glnode_test

import (
	"testing"

	"github.com/soypat/glnode"
	"pgregory.net/rapid"
)

// stackGraph builds an expression from a postfix program. Operations missing
// operands push a leaf instead. Leaves are returned in creation order.
func stackGraph(ops []int, values []float32) (glnode.Node, []*glnode.ConstNode) {
	var stack []glnode.Node
	var leaves []*glnode.ConstNode
	vi := 0
	push := func() {
		c := glnode.Float(values[vi%len(values)])
		vi++
		leaves = append(leaves, c)
		stack = append(stack, c)
	}
	pop := func() glnode.Node {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return n
	}
	for _, op := range ops {
		switch {
		case op == 0:
			push()
		case op == 1 && len(stack) >= 1:
			stack = append(stack, glnode.Sin(pop()))
		case op >= 2 && len(stack) >= 2:
			b, a := pop(), pop()
			switch op {
			case 2:
				stack = append(stack, glnode.Add(a, b))
			case 3:
				stack = append(stack, glnode.Mul(a, b))
			default:
				stack = append(stack, glnode.Max(a, b))
			}
		default:
			push()
		}
	}
	root := pop()
	for len(stack) > 0 {
		root = glnode.Add(pop(), root)
	}
	return root, leaves
}

func drawProgram(t *rapid.T) ([]int, []float32) {
	ops := rapid.SliceOfN(rapid.IntRange(0, 4), 1, 24).Draw(t, "ops")
	values := rapid.SliceOfN(rapid.Float32Range(-10, 10), 1, 8).Draw(t, "values")
	return ops, values
}

func TestCacheKeyStructural(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ops, values := drawProgram(t)
		g1, _ := stackGraph(ops, values)
		g2, _ := stackGraph(ops, values)
		k1, k2 := glnode.CacheKey(g1, false), glnode.CacheKey(g2, false)
		if k1 != k2 {
			t.Fatalf("equal graphs with distinct keys %x != %x", k1, k2)
		}
		if glnode.CacheKey(g1, false) != k1 || glnode.CacheKey(g1, true) != k1 {
			t.Fatal("cache key not stable across calls")
		}
	})
}

func TestCacheKeyLeafMutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ops, values := drawProgram(t)
		graph, leaves := stackGraph(ops, values)
		// Root must not be a leaf for the leaf mutation to leave its version untouched.
		root := glnode.Sin(graph)
		before := glnode.CacheKey(root, false)

		leaf := leaves[rapid.IntRange(0, len(leaves)-1).Draw(t, "leaf")]
		leaf.SetValue(leaf.Value.(float32) + 1)
		if glnode.CacheKey(root, false) != before {
			t.Fatal("memoized root key changed without root version bump")
		}
		if glnode.CacheKey(root, true) == before {
			t.Fatal("forced root key did not change after leaf mutation")
		}
	})
}

// countingNode counts how often its custom cache key is computed.
type countingNode struct {
	glnode.Base
	Node  glnode.Node
	calls int
}

func (c *countingNode) NodeType(b glnode.Builder, output glnode.Type) glnode.Type {
	return c.Node.NodeType(b, output)
}

func (c *countingNode) ForEachChild(userData any, fn func(userData any, name string, child *glnode.Node) error) error {
	return fn(userData, "node", &c.Node)
}

func (c *countingNode) CustomCacheKey() uint64 {
	c.calls++
	return 42
}

func TestCacheKeyMemoized(t *testing.T) {
	c := &countingNode{Node: glnode.Float(1)}
	root := glnode.Add(c, glnode.Float(2))
	key := glnode.CacheKey(root, false)
	for i := 0; i < 3; i++ {
		if glnode.CacheKey(root, false) != key {
			t.Fatal("cache key changed")
		}
	}
	if c.calls != 1 {
		t.Errorf("want one key computation, got %d", c.calls)
	}
	c.NeedsUpdate()
	glnode.CacheKey(c, false)
	if c.calls != 2 {
		t.Errorf("version bump did not recompute key, %d computations", c.calls)
	}
	glnode.CacheKey(root, true)
	if c.calls != 3 {
		t.Errorf("forced key did not recompute children, %d computations", c.calls)
	}
}

func TestCacheKeyDistinguishesStructure(t *testing.T) {
	a, b := glnode.Float(1), glnode.Float(2)
	keys := map[uint64]string{}
	for name, n := range map[string]glnode.Node{
		"add":     glnode.Add(a, b),
		"sub":     glnode.Sub(a, b),
		"swapped": glnode.Add(b, a),
		"sin":     glnode.Sin(a),
		"cos":     glnode.Cos(a),
		"swizzle": glnode.Swizzle(glnode.Vec4Of(1, 2, 3, 4), "xy"),
		"yx":      glnode.Swizzle(glnode.Vec4Of(1, 2, 3, 4), "yx"),
		"uniform": glnode.NewUniform("a", float32(1)),
		"varying": glnode.NewVarying(a, "a"),
	} {
		key := glnode.CacheKey(n, false)
		if other, ok := keys[key]; ok {
			t.Errorf("%s and %s share cache key %x", name, other, key)
		}
		keys[key] = name
	}
}
