package glnode_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/soypat/glnode"
	"github.com/soypat/glnode/glbuild"
)

func newBuilder(t *testing.T) (*glbuild.Builder, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	cfg := glbuild.DefaultConfig(glbuild.GLSL)
	cfg.Logger = slog.New(slog.NewTextHandler(&logs, nil))
	b, err := glbuild.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return b, &logs
}

func compile(t *testing.T, b *glbuild.Builder, fragment glnode.Node) *glbuild.Program {
	t.Helper()
	b.AddFlow(glnode.ShaderStageFragment, fragment)
	prog, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

// probe records the build stages it goes through. Probes with the same
// non-empty key share a hash.
type probe struct {
	glnode.Base
	Node   glnode.Node
	key    string
	events []string
}

func newProbe(key string, n glnode.Node) *probe {
	return &probe{Base: glnode.NewBase(glnode.TypeNone), Node: n, key: key}
}

func (p *probe) NodeType(b glnode.Builder, output glnode.Type) glnode.Type {
	return p.Node.NodeType(b, output)
}

func (p *probe) ForEachChild(userData any, fn func(userData any, name string, child *glnode.Node) error) error {
	return fn(userData, "node", &p.Node)
}

func (p *probe) Hash(b glnode.Builder) string {
	if p.key != "" {
		return "probe:" + p.key
	}
	return p.UUID()
}

func (p *probe) Setup(b glnode.Builder) glnode.Node {
	p.events = append(p.events, "setup")
	return glnode.DefaultSetup(b, p)
}

func (p *probe) Analyze(b glnode.Builder, output glnode.Type) {
	p.events = append(p.events, "analyze")
	glnode.DefaultAnalyze(b, p, output)
}

func (p *probe) Generate(b glnode.Builder, output glnode.Type) string {
	p.events = append(p.events, "generate")
	return glnode.Code(b, p.Node, output)
}

func TestSharedHashDelegates(t *testing.T) {
	first := newProbe("x", glnode.Float(1))
	second := newProbe("x", glnode.Float(1))
	b, logs := newBuilder(t)
	prog := compile(t, b, glnode.Add(first, second))

	if len(second.events) != 0 {
		t.Errorf("shared node was built: %v", second.events)
	}
	if len(first.events) == 0 || first.events[0] != "setup" {
		t.Errorf("first node not set up: %v", first.events)
	}
	if !strings.Contains(prog.Fragment, "( 1.0 + 1.0 )") {
		t.Errorf("unexpected fragment:\n%s", prog.Fragment)
	}
	if glnode.Shared(b, second) != first {
		t.Error("Shared did not resolve the registered node")
	}
	if strings.Contains(logs.String(), "collision") {
		t.Errorf("unexpected collision warning: %s", logs)
	}
}

func TestSharedHashCollision(t *testing.T) {
	first := newProbe("x", glnode.Float(1))
	second := newProbe("x", glnode.Float(2))
	b, logs := newBuilder(t)
	compile(t, b, glnode.Add(first, second))
	if !strings.Contains(logs.String(), "node hash collision") {
		t.Errorf("expected collision warning, got: %s", logs)
	}
}

// lazyNode creates its child while generating, so the child first enters
// the build in the generate stage.
type lazyNode struct {
	glnode.Base
	child *probe
}

func (l *lazyNode) NodeType(b glnode.Builder, output glnode.Type) glnode.Type { return glnode.TypeFloat }

func (l *lazyNode) Generate(b glnode.Builder, output glnode.Type) string {
	if l.child == nil {
		l.child = newProbe("", glnode.Float(3))
	}
	return glnode.Code(b, l.child, output)
}

func TestStageCatchUp(t *testing.T) {
	lazy := &lazyNode{Base: glnode.NewBase(glnode.TypeFloat)}
	b, _ := newBuilder(t)
	prog := compile(t, b, lazy)
	if lazy.child == nil {
		t.Fatal("lazy node not generated")
	}
	got := strings.Join(lazy.child.events, ",")
	if got != "setup,analyze,generate" {
		t.Errorf("want stages caught up in order, got %s", got)
	}
	if !b.NodeProperties(lazy.child).Initialized {
		t.Error("caught up node not initialized")
	}
	if !strings.Contains(prog.Fragment, "vec4( 3.0 )") {
		t.Errorf("unexpected fragment:\n%s", prog.Fragment)
	}
}

// loopNode generates itself.
type loopNode struct {
	glnode.Base
}

func (l *loopNode) NodeType(b glnode.Builder, output glnode.Type) glnode.Type { return glnode.TypeFloat }

func (l *loopNode) GenerateOnce(b glnode.Builder) string {
	return "( 1.0 + " + glnode.Code(b, l, glnode.TypeFloat) + " )"
}

func TestRecursionTerminates(t *testing.T) {
	b, logs := newBuilder(t)
	prog := compile(t, b, &loopNode{Base: glnode.NewBase(glnode.TypeFloat)})
	if !strings.Contains(prog.Fragment, glnode.RecursionPlaceholder) {
		t.Errorf("missing recursion placeholder:\n%s", prog.Fragment)
	}
	if !strings.Contains(logs.String(), "recursion detected") {
		t.Errorf("missing recursion warning: %s", logs)
	}
}

func TestEndToEnd(t *testing.T) {
	uA := glnode.NewUniform("uniformA", float32(1))
	uB := glnode.NewUniform("uniformB", float32(3))
	root := glnode.Mul(glnode.Add(uA, uB), glnode.Float(2))
	b, _ := newBuilder(t)
	prog := compile(t, b, root)
	if !strings.Contains(prog.Fragment, "( ( uniformA + uniformB ) * 2.0 )") {
		t.Errorf("unexpected fragment:\n%s", prog.Fragment)
	}
	if typ := root.NodeType(b, glnode.TypeNone); typ != glnode.TypeFloat {
		t.Errorf("want float root, got %s", typ)
	}
	if len(prog.Nodes) == 0 || prog.Nodes[len(prog.Nodes)-1] == nil {
		t.Error("no build order recorded")
	}
}

func TestDerivativeOutsideFragment(t *testing.T) {
	b, logs := newBuilder(t)
	b.AddFlow(glnode.ShaderStageVertex, glnode.DFdx(glnode.Vec4Of(1, 2, 3, 1)))
	prog := compile(t, b, glnode.Vec4Of(1, 1, 1, 1))
	if !strings.Contains(prog.Vertex, "/*dFdx(") || !strings.Contains(prog.Vertex, "vec4(0.0,0.0,0.0,0.0)") {
		t.Errorf("derivative not replaced in vertex stage:\n%s", prog.Vertex)
	}
	if !strings.Contains(logs.String(), "derivative not supported outside fragment stage") {
		t.Errorf("missing derivative warning: %s", logs)
	}
}

func TestSameGraphTwoBuilders(t *testing.T) {
	normal := glnode.NewVarying(glnode.Attribute("normal", glnode.TypeVec3), "vNormal")
	root := glnode.Join(glnode.Normalize(normal), glnode.Float(1))
	b1, _ := newBuilder(t)
	b2, _ := newBuilder(t)
	p1 := compile(t, b1, root)
	p2 := compile(t, b2, root)
	if p1.Fragment != p2.Fragment || p1.Vertex != p2.Vertex {
		t.Error("compiling the same graph twice gave different programs")
	}
	if b1.NodeProperties(normal) == b2.NodeProperties(normal) {
		t.Error("builders share node properties")
	}
}
