package glnode

import (
	"log/slog"
	"strconv"
)

// RecursionPlaceholder is the snippet substituted when a node's single-output
// generation re-enters itself.
const RecursionPlaceholder = "/* Recursion detected. */"

// Result is the outcome of building a node. Setup populates Node with the
// node's output node, generate populates Snippet and analyze populates nothing.
type Result struct {
	Node    Node
	Snippet string
}

// Build runs the builder's current build stage on n. output is the type the
// caller expects the generated snippet in, or TypeNone for the node's own type.
//
// A node registered under the same hash in b takes n's place. Build stages a
// node has not gone through in the current shader stage are caught up first,
// so a node first reached during generate is set up and analyzed before
// generating. Build never fails: detected recursion and empty snippets are
// logged and replaced with placeholder code.
func Build(b Builder, n Node, output Type) Result {
	if n == nil {
		return Result{}
	}
	if ref := Shared(b, n); ref != n {
		if b.BuildStage() == BuildSetup {
			checkCollision(b, n, ref)
		}
		n = ref
	}
	if b.BuildStage() == BuildGenerate {
		if _, ok := n.(temporary); ok {
			if snippet, ok := buildTemp(b, n, output); ok {
				return Result{Snippet: snippet}
			}
		}
	}
	return build(b, n, output)
}

// Code builds n in the current stage and returns the generated snippet.
func Code(b Builder, n Node, output Type) string {
	return Build(b, n, output).Snippet
}

func build(b Builder, n Node, output Type) (result Result) {
	stage := b.BuildStage()
	data := b.DataFromNode(n, ShaderStageAny)
	data.Stages.Set(stage)
	if parent := stage.Parent(); parent != BuildStageNone && !data.Stages.Has(parent) {
		b.SetBuildStage(parent)
		build(b, n, TypeNone)
		b.SetBuildStage(stage)
	}

	b.AddNode(n)
	b.AddChain(n)
	switch stage {
	case BuildSetup:
		result.Node = setup(b, n)
	case BuildAnalyze:
		if a, ok := n.(Analyzer); ok {
			a.Analyze(b, output)
		} else {
			DefaultAnalyze(b, n, output)
		}
	case BuildGenerate:
		result.Snippet = generate(b, n, output)
	}
	b.RemoveChain(n)
	b.AddSequentialNode(n)
	return result
}

func setup(b Builder, n Node) Node {
	props := b.NodeProperties(n)
	if props.Initialized {
		return props.OutputNode
	}
	props.Initialized = true
	var out Node
	if s, ok := n.(Setupper); ok {
		out = s.Setup(b)
	} else {
		out = DefaultSetup(b, n)
	}
	if out != nil {
		props.OutputNode = out
	}
	for _, child := range props.Nodes(nil) {
		if child.NodeBase().Parents {
			cp := b.NodeProperties(child)
			cp.Parents = append(cp.Parents, n)
		}
		Build(b, child, TypeNone)
	}
	return props.OutputNode
}

func generate(b Builder, n Node, output Type) (snippet string) {
	switch g := n.(type) {
	case OnceGenerator:
		typ := n.NodeType(b, TypeNone)
		data := b.DataFromNode(n, ShaderStageAny)
		snippet = data.Snippet
		if !data.HasSnippet {
			if !data.Generating {
				data.Generating = true
				snippet = g.GenerateOnce(b)
				data.Generating = false
				data.Snippet, data.HasSnippet = snippet, true
			} else {
				b.Logger().Warn("recursion detected", nodeAttr(n), slog.String("stage", b.ShaderStage().String()))
				snippet = RecursionPlaceholder
			}
		}
		snippet = b.Format(snippet, typ, output)
	case Generator:
		snippet = g.Generate(b, output)
	default:
		snippet = DefaultGenerate(b, n, output)
	}
	if snippet == "" && output != TypeNone && output != TypeVoid {
		b.Logger().Error("invalid generated code", nodeAttr(n), slog.String("expected", output.String()))
		snippet = b.GenerateConst(output, nil)
	}
	return snippet
}

// DefaultSetup registers the children of n in its properties as node0, node1...
// and returns the current output node.
func DefaultSetup(b Builder, n Node) Node {
	props := b.NodeProperties(n)
	i := 0
	n.ForEachChild(nil, func(_ any, _ string, child *Node) error {
		if *child != nil {
			props.SetNode("node"+strconv.Itoa(i), *child)
			i++
		}
		return nil
	})
	return props.OutputNode
}

// DefaultAnalyze increases the usage count of n and analyzes the nodes in its
// properties the first time n is used in the current shader stage.
func DefaultAnalyze(b Builder, n Node, output Type) {
	count := b.IncreaseUsage(n)
	if n.NodeBase().Parents {
		data := b.DataFromNode(n, ShaderStageAny)
		data.OutputTypes = append(data.OutputTypes, output)
	}
	if count != 1 {
		return
	}
	for _, child := range b.NodeProperties(n).Nodes(nil) {
		Build(b, child, TypeNone)
	}
}

// DefaultGenerate builds the output node of n, if any.
func DefaultGenerate(b Builder, n Node, output Type) string {
	out := b.NodeProperties(n).OutputNode
	if out == nil {
		return ""
	}
	return Code(b, out, output)
}

// DefaultNodeType returns the type of n's output node if set up, else the declared type.
func DefaultNodeType(b Builder, n Node) Type {
	if b != nil {
		if out := b.NodeProperties(n).OutputNode; out != nil {
			return out.NodeType(b, TypeNone)
		}
	}
	return n.NodeBase().Type
}

func checkCollision(b Builder, n, ref Node) {
	if typeName(n) == typeName(ref) && CacheKey(n, false) == CacheKey(ref, false) {
		return
	}
	b.Logger().Warn("node hash collision, first registered node wins",
		slog.String("hash", Hash(b, n)), nodeAttr(ref), slog.Group("ignored", slog.String("type", typeName(n)), slog.Uint64("id", n.NodeBase().ID())))
}
