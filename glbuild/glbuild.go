// Package glbuild compiles glnode graphs into GLSL or WGSL shader programs.
package glbuild

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soypat/glnode"
)

// Language is a shader source language a [Builder] generates.
type Language uint8

const (
	GLSL Language = iota
	WGSL
)

func (l Language) String() string {
	switch l {
	case GLSL:
		return "glsl"
	case WGSL:
		return "wgsl"
	}
	return "unknown"
}

// ParseLanguage parses "glsl" or "wgsl".
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(s) {
	case "glsl":
		return GLSL, nil
	case "wgsl":
		return WGSL, nil
	}
	return 0, fmt.Errorf("unknown shader language %q", s)
}

// Config configures a [Builder].
type Config struct {
	Language Language
	// Version is the GLSL version of vertex and fragment programs, i.e: "300 es".
	Version string
	// ComputeVersion is the GLSL version of compute programs.
	ComputeVersion string
	// Precision is the GLSL float and int precision qualifier.
	Precision string
	// Attributes maps geometry vertex attribute names to their types.
	Attributes map[string]glnode.Type
	// WorkgroupSize is the compute local size in X.
	WorkgroupSize int
	// Logger receives build diagnostics. If nil [glnode.Logger] is used.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration for a mesh with position, normal and uv attributes.
func DefaultConfig(lang Language) Config {
	return Config{
		Language:       lang,
		Version:        "300 es",
		ComputeVersion: "430",
		Precision:      "highp",
		Attributes: map[string]glnode.Type{
			"position": glnode.TypeVec3,
			"normal":   glnode.TypeVec3,
			"uv":       glnode.TypeVec2,
		},
		WorkgroupSize: 32,
	}
}

// Validate checks the configuration.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Language > WGSL {
		errs = append(errs, errors.New("invalid language"))
	}
	if cfg.WorkgroupSize < 1 {
		errs = append(errs, errors.New("zero or negative workgroup size"))
	}
	if cfg.Language == GLSL && (cfg.Version == "" || cfg.ComputeVersion == "") {
		errs = append(errs, errors.New("empty GLSL version"))
	}
	for name, t := range cfg.Attributes {
		if name == "" || t.Length() == 0 || t.IsMatrix() {
			errs = append(errs, fmt.Errorf("invalid attribute %q of type %s", name, t))
		}
	}
	return errors.Join(errs...)
}

type dataKey struct {
	id    uint64
	stage glnode.ShaderStage
}

type flowRoot struct {
	node   glnode.Node
	output glnode.Type
}

// Builder holds the state of a single compile of a node graph. It implements
// [glnode.Builder]. A Builder must not be reused after [Builder.Build].
type Builder struct {
	cfg     Config
	backend backend
	log     *slog.Logger
	built   bool

	buildStage  glnode.BuildStage
	shaderStage glnode.ShaderStage

	props  map[uint64]*glnode.Properties
	data   map[dataKey]*glnode.NodeData
	hashes map[string]glnode.Node

	chain      []glnode.Node
	sequential []glnode.Node
	inSequence map[uint64]bool

	roots [4][]flowRoot
	// main holds the statements of each shader stage's entry point.
	main [4]strings.Builder
	// flows is the stack of code buffers nodes append lines to.
	flows []*strings.Builder

	slots slots

	updateNodes, updateBeforeNodes, updateAfterNodes []glnode.Node
	updateSeen                                       [3]map[uint64]bool
}

var _ glnode.Builder = (*Builder)(nil)

// New returns a Builder generating code in the configured language.
func New(cfg Config) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = glnode.Logger()
	}
	b := &Builder{
		cfg:        cfg,
		log:        log,
		props:      make(map[uint64]*glnode.Properties),
		data:       make(map[dataKey]*glnode.NodeData),
		hashes:     make(map[string]glnode.Node),
		inSequence: make(map[uint64]bool),
		slots:      newSlots(),
	}
	for i := range b.updateSeen {
		b.updateSeen[i] = make(map[uint64]bool)
	}
	switch cfg.Language {
	case WGSL:
		b.backend = &wgslBackend{b: b}
	default:
		b.backend = &glslBackend{b: b}
	}
	return b, nil
}

// AddFlow registers n as a root of the shader stage. Vertex roots generate the
// clip space position and fragment roots the output color, both as vec4.
// Compute roots are generated as statements.
func (b *Builder) AddFlow(stage glnode.ShaderStage, n glnode.Node) {
	output := glnode.TypeVec4
	if stage == glnode.ShaderStageCompute {
		output = glnode.TypeVoid
	}
	b.roots[stage] = append(b.roots[stage], flowRoot{node: n, output: output})
}

// Build runs the setup, analyze and generate passes over the registered flow
// roots and assembles the resulting program. A fragment flow without a vertex
// flow is given the [DefaultVertex] flow.
func (b *Builder) Build() (*Program, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true
	var errs []error
	nroots := 0
	for _, stage := range glnode.ShaderStages {
		for _, root := range b.roots[stage] {
			nroots++
			if root.node == nil {
				errs = append(errs, fmt.Errorf("nil %s flow root", stage))
			} else if err := glnode.Validate(root.node); err != nil {
				errs = append(errs, fmt.Errorf("%s flow %T: %w", stage, root.node, err))
			}
		}
	}
	if nroots == 0 {
		errs = append(errs, errors.New("no flow roots"))
	}
	if len(b.roots[glnode.ShaderStageCompute]) > 0 && nroots != len(b.roots[glnode.ShaderStageCompute]) {
		errs = append(errs, errors.New("compute flows cannot be mixed with vertex or fragment flows"))
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if len(b.roots[glnode.ShaderStageFragment]) > 0 && len(b.roots[glnode.ShaderStageVertex]) == 0 {
		b.AddFlow(glnode.ShaderStageVertex, DefaultVertex())
	}

	for _, buildStage := range glnode.BuildStages {
		b.buildStage = buildStage
		for _, stage := range glnode.ShaderStages {
			b.shaderStage = stage
			for _, root := range b.roots[stage] {
				if buildStage == glnode.BuildGenerate {
					b.flowRoot(stage, root)
				} else {
					glnode.Build(b, root.node, glnode.TypeNone)
				}
			}
		}
	}
	b.buildStage = glnode.BuildStageNone
	b.shaderStage = glnode.ShaderStageAny
	return b.assemble()
}

func (b *Builder) flowRoot(stage glnode.ShaderStage, root flowRoot) {
	fd := b.flowChildNode(root.node, root.output)
	main := &b.main[stage]
	main.WriteString(fd.Code)
	if line := b.backend.outputAssign(stage, fd.Result); line != "" {
		main.WriteString("\t" + line + ";\n")
	}
}

func (b *Builder) flowChildNode(n glnode.Node, output glnode.Type) *glnode.FlowData {
	buf := new(strings.Builder)
	b.flows = append(b.flows, buf)
	result := glnode.Code(b, n, output)
	b.flows = b.flows[:len(b.flows)-1]
	return &glnode.FlowData{Code: buf.String(), Result: result}
}

// FlowNodeFromShaderStage implements [glnode.Builder].
func (b *Builder) FlowNodeFromShaderStage(stage glnode.ShaderStage, n glnode.Node, output glnode.Type, propertyName string) *glnode.FlowData {
	prev := b.shaderStage
	b.shaderStage = stage
	defer func() { b.shaderStage = prev }()
	if b.buildStage != glnode.BuildGenerate {
		glnode.Build(b, n, glnode.TypeNone)
		return &glnode.FlowData{}
	}
	fd := b.flowChildNode(n, output)
	if propertyName != "" {
		fd.Code += "\t" + propertyName + " = " + fd.Result + ";\n"
	}
	b.main[stage].WriteString(fd.Code)
	return fd
}

// AddLineFlowCode implements [glnode.Builder].
func (b *Builder) AddLineFlowCode(code string) {
	line := "\t" + code + ";\n"
	if len(b.flows) == 0 {
		b.main[b.shaderStage].WriteString(line)
		return
	}
	b.flows[len(b.flows)-1].WriteString(line)
}

func (b *Builder) Logger() *slog.Logger { return b.log }

func (b *Builder) BuildStage() glnode.BuildStage       { return b.buildStage }
func (b *Builder) SetBuildStage(s glnode.BuildStage)   { b.buildStage = s }
func (b *Builder) ShaderStage() glnode.ShaderStage     { return b.shaderStage }
func (b *Builder) SetShaderStage(s glnode.ShaderStage) { b.shaderStage = s }

// NodeProperties implements [glnode.Builder].
func (b *Builder) NodeProperties(n glnode.Node) *glnode.Properties {
	id := n.NodeBase().ID()
	p := b.props[id]
	if p == nil {
		p = new(glnode.Properties)
		b.props[id] = p
	}
	return p
}

// DataFromNode implements [glnode.Builder].
func (b *Builder) DataFromNode(n glnode.Node, stage glnode.ShaderStage) *glnode.NodeData {
	if stage == glnode.ShaderStageAny {
		stage = b.shaderStage
	}
	key := dataKey{id: n.NodeBase().ID(), stage: stage}
	d := b.data[key]
	if d == nil {
		d = new(glnode.NodeData)
		b.data[key] = d
	}
	return d
}

// IncreaseUsage implements [glnode.Builder].
func (b *Builder) IncreaseUsage(n glnode.Node) int {
	d := b.DataFromNode(n, glnode.ShaderStageAny)
	d.UsageCount++
	return d.UsageCount
}

// NodeFromHash implements [glnode.Builder].
func (b *Builder) NodeFromHash(hash string) glnode.Node { return b.hashes[hash] }

// AddNode implements [glnode.Builder].
func (b *Builder) AddNode(n glnode.Node) {
	hash := glnode.Hash(b, n)
	if _, ok := b.hashes[hash]; !ok {
		b.hashes[hash] = n
	}
	nb := n.NodeBase()
	id := nb.ID()
	if nb.UpdateBeforeType != glnode.UpdateNone && !b.updateSeen[0][id] {
		b.updateSeen[0][id] = true
		b.updateBeforeNodes = append(b.updateBeforeNodes, n)
	}
	if nb.UpdateType != glnode.UpdateNone && !b.updateSeen[1][id] {
		b.updateSeen[1][id] = true
		b.updateNodes = append(b.updateNodes, n)
	}
	if nb.UpdateAfterType != glnode.UpdateNone && !b.updateSeen[2][id] {
		b.updateSeen[2][id] = true
		b.updateAfterNodes = append(b.updateAfterNodes, n)
	}
}

// AddChain implements [glnode.Builder].
func (b *Builder) AddChain(n glnode.Node) { b.chain = append(b.chain, n) }

// RemoveChain implements [glnode.Builder].
func (b *Builder) RemoveChain(n glnode.Node) {
	last := len(b.chain) - 1
	if last < 0 || b.chain[last] != n {
		b.log.Error("invalid node chaining", slog.String("node", glnode.TypeName(n)))
		return
	}
	b.chain = b.chain[:last]
}

// Chain returns the nodes currently being built, outermost first.
func (b *Builder) Chain() []glnode.Node { return b.chain }

// AddSequentialNode implements [glnode.Builder].
func (b *Builder) AddSequentialNode(n glnode.Node) {
	id := n.NodeBase().ID()
	if !b.inSequence[id] {
		b.inSequence[id] = true
		b.sequential = append(b.sequential, n)
	}
}

// GeometryAttribute implements [glnode.Builder].
func (b *Builder) GeometryAttribute(name string) (glnode.Type, bool) {
	t, ok := b.cfg.Attributes[name]
	return t, ok
}

func (b *Builder) TypeName(t glnode.Type) string            { return b.backend.typeName(t) }
func (b *Builder) Method(name string, t glnode.Type) string { return b.backend.method(name, t) }
func (b *Builder) FunctionOperator(op string) string        { return b.backend.functionOperator(op) }

// Format implements [glnode.Builder].
func (b *Builder) Format(snippet string, from, to glnode.Type) string {
	return format(b.backend.typeName, snippet, from, to)
}

// GenerateConst implements [glnode.Builder].
func (b *Builder) GenerateConst(t glnode.Type, value any) string {
	s, err := generateConst(b.backend.typeName, t, value)
	if err != nil {
		b.log.Error("invalid constant", slog.String("type", t.String()), slog.String("err", err.Error()))
		s, _ = generateConst(b.backend.typeName, t, nil)
	}
	return s
}

// PropertyName implements [glnode.Builder].
func (b *Builder) PropertyName(slot glnode.Slot, stage glnode.ShaderStage) string {
	if stage == glnode.ShaderStageAny {
		stage = b.shaderStage
	}
	return b.backend.propertyName(slot, stage)
}

// TextureSample implements [glnode.Builder].
func (b *Builder) TextureSample(tex *glnode.NodeTexture, uv, level string) string {
	return b.backend.textureSample(b.shaderStage, tex, uv, level)
}

// DefaultVertex returns the vertex flow transforming the position attribute
// by the modelViewProjection uniform.
func DefaultVertex() glnode.Node {
	mvp := glnode.NewUniform("modelViewProjection", ms3Identity())
	position := glnode.Attribute("position", glnode.TypeVec3)
	return glnode.Mul(mvp, glnode.Join(position, glnode.Float(1)))
}
