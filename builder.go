package glnode

import "log/slog"

// Builder is the per-compile context nodes are built in. It tracks the current
// build and shader stage, owns all builder scoped node state and formats
// generated code for a backend. See glbuild for the implementation.
type Builder interface {
	// NodeProperties returns the properties of n. The same record is
	// returned for every call during one compile.
	NodeProperties(n Node) *Properties
	// DataFromNode returns the bookkeeping record of n for a shader stage.
	// ShaderStageAny returns the current shader stage's record.
	DataFromNode(n Node, stage ShaderStage) *NodeData
	// IncreaseUsage increments and returns the usage count of n in the current shader stage.
	IncreaseUsage(n Node) int

	BuildStage() BuildStage
	SetBuildStage(BuildStage)
	ShaderStage() ShaderStage
	SetShaderStage(ShaderStage)

	// NodeFromHash returns the node registered under hash or nil.
	NodeFromHash(hash string) Node
	// AddNode registers n under its hash if no other node is registered and
	// records its update hooks.
	AddNode(n Node)
	// AddChain pushes n onto the chain of nodes being built.
	AddChain(n Node)
	// RemoveChain pops n from the build chain.
	RemoveChain(n Node)
	// AddSequentialNode records n in global build order.
	AddSequentialNode(n Node)

	// Format coerces the snippet of type from to type to.
	Format(snippet string, from, to Type) string
	// GenerateConst returns a literal of type t. A nil value returns the zero value of t.
	GenerateConst(t Type, value any) string
	// TypeName returns the backend spelling of t.
	TypeName(t Type) string
	// Method returns the backend function name for a named method at type t.
	// An empty result for an operator method means infix emission is used.
	Method(name string, t Type) string
	// FunctionOperator returns the backend function implementing op, if any.
	FunctionOperator(op string) string

	// VaryingFromNode allocates or returns the varying slot of n. An empty name
	// allocates a unique name.
	VaryingFromNode(n Node, name string, t Type, interp Interpolation, sampling Sampling) *NodeVarying
	// VarFromNode allocates or returns the local variable of n in the current shader stage.
	VarFromNode(n Node, name string, t Type) *NodeVar
	// UniformFromNode allocates or returns the uniform slot of n.
	UniformFromNode(n Node, name string, t Type) *NodeUniform
	// AttributeFromName declares a geometry attribute and returns it.
	AttributeFromName(name string, t Type) *NodeAttribute
	// GeometryAttribute reports the type of a geometry attribute and if it exists.
	GeometryAttribute(name string) (Type, bool)
	// TextureFromNode allocates or returns the texture binding of n.
	TextureFromNode(n Node, tex *Texture) *NodeTexture
	// TextureSample returns a texture lookup expression appropriate for the current shader stage.
	TextureSample(tex *NodeTexture, uv, level string) string
	// PropertyName resolves a slot to its identifier in a shader stage.
	PropertyName(slot Slot, stage ShaderStage) string

	// FlowNodeFromShaderStage builds n in the generate stage as if in the argument
	// shader stage and appends the resulting code to that stage's flow. If
	// propertyName is set the result is assigned to it.
	FlowNodeFromShaderStage(stage ShaderStage, n Node, output Type, propertyName string) *FlowData
	// AddLineFlowCode appends a statement to the current shader stage's flow.
	AddLineFlowCode(code string)

	Logger() *slog.Logger
}
