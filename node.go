// Package glnode implements a node based shader graph. Nodes are composed into
// expression graphs which a [Builder] compiles into shader source in three
// sequential passes: setup, analyze and generate. See [Build].
package glnode

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Node is a vertex in the shader graph. Concrete nodes embed [Base] and may
// implement any of the optional interfaces [Setupper], [Analyzer], [Generator],
// [OnceGenerator], [Hasher] and [CacheKeyer] to take part in the build protocol.
type Node interface {
	// NodeBase returns the identity and bookkeeping state shared by all nodes.
	NodeBase() *Base
	// NodeType resolves the result type of the node. output is the type
	// requested by the caller or TypeNone.
	NodeType(b Builder, output Type) Type
	// ForEachChild iterates over the node's direct children in declaration order.
	// Single children are named after their field, array elements are named
	// "field/index" and map entries "field/key". Nil children are passed too
	// so that decoders may set them.
	ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error
}

// Setupper is implemented by nodes that override the setup stage. The returned
// node, if not nil, is stored as the node's output node.
type Setupper interface {
	Setup(b Builder) Node
}

// Analyzer is implemented by nodes that override the analyze stage.
type Analyzer interface {
	Analyze(b Builder, output Type)
}

// Generator is implemented by nodes whose generated code depends on the requested output type.
// Generate is called every time the node is built in the generate stage.
type Generator interface {
	Generate(b Builder, output Type) string
}

// OnceGenerator is implemented by nodes that generate a single reusable snippet
// regardless of requested output type. The snippet is memoized per builder and
// shader stage and coerced to the requested type by [Builder.Format].
type OnceGenerator interface {
	GenerateOnce(b Builder) string
}

// Hasher overrides the default node hash used for sharing. Nodes with equal
// hashes built by the same builder compile once.
type Hasher interface {
	Hash(b Builder) string
}

// CacheKeyer folds scalar state that affects generated code into the node's cache key.
type CacheKeyer interface {
	CustomCacheKey() uint64
}

var lastNodeID atomic.Uint64

// lazyMu guards initialization of zero valued [Base].
var lazyMu sync.Mutex

// Base holds the state common to all nodes. It must be initialized with [NewBase]
// or lazily on first use of [Base.ID]. Base must not be copied after first use.
type Base struct {
	id   uint64
	uuid string
	// Type is the declared node type. Polymorphic nodes leave it as TypeNone.
	Type Type
	// Global nodes are declared exactly once per program regardless of reference count.
	Global bool
	// Parents enables parent tracking: parents register themselves in the
	// node's properties during setup and output requests are recorded during analyze.
	Parents bool

	UpdateType       UpdateType
	UpdateBeforeType UpdateType
	UpdateAfterType  UpdateType

	version         uint64
	cacheKey        uint64
	cacheKeyVersion uint64
	cacheKeyValid   bool

	update, updateBefore, updateAfter func(f *Frame) bool
	onDispose                         []func()
}

// NewBase returns an initialized Base with a fresh id and UUID.
func NewBase(typ Type) Base {
	return Base{
		id:   lastNodeID.Add(1),
		uuid: uuid.NewString(),
		Type: typ,
	}
}

// NodeBase implements [Node].
func (nb *Base) NodeBase() *Base { return nb }

// ID returns the process unique sequential identifier of the node. It never changes.
// A zero Base is initialized on first call and is safe for concurrent use.
func (nb *Base) ID() uint64 {
	if id := atomic.LoadUint64(&nb.id); id != 0 {
		return id
	}
	lazyMu.Lock()
	defer lazyMu.Unlock()
	if nb.id == 0 {
		if nb.uuid == "" {
			nb.uuid = uuid.NewString()
		}
		// id is published last so a non-zero id implies uuid is set.
		atomic.StoreUint64(&nb.id, lastNodeID.Add(1))
	}
	return nb.id
}

// UUID returns the random unique identifier of the node, the default sharing hash.
func (nb *Base) UUID() string {
	nb.ID()
	return nb.uuid
}

// SetUUID overwrites the node UUID. Used by decoders restoring a serialized graph.
func (nb *Base) SetUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return err
	}
	nb.ID()
	nb.uuid = id
	return nil
}

// Version returns the number of times the node was flagged with [Base.NeedsUpdate].
func (nb *Base) Version() uint64 { return nb.version }

// NeedsUpdate signals the node's externally visible value changed meaning.
// The node's memoized cache key is recomputed on next request.
func (nb *Base) NeedsUpdate() { nb.version++ }

// ForEachChild is the default no-children implementation of [Node].
func (nb *Base) ForEachChild(userData any, fn func(userData any, name string, child *Node) error) error {
	return nil
}

// OnUpdate stores fn as the node's update hook and sets its update type.
// fn returning false leaves the node eligible to update again in the same frame or render.
func (nb *Base) OnUpdate(fn func(f *Frame) bool, kind UpdateType) {
	nb.update = fn
	nb.UpdateType = kind
}

// OnUpdateBefore stores fn as the hook run before rendering.
func (nb *Base) OnUpdateBefore(fn func(f *Frame) bool, kind UpdateType) {
	nb.updateBefore = fn
	nb.UpdateBeforeType = kind
}

// OnUpdateAfter stores fn as the hook run after rendering.
func (nb *Base) OnUpdateAfter(fn func(f *Frame) bool, kind UpdateType) {
	nb.updateAfter = fn
	nb.UpdateAfterType = kind
}

// OnDispose registers fn to be called by [Base.Dispose].
func (nb *Base) OnDispose(fn func()) {
	nb.onDispose = append(nb.onDispose, fn)
}

// Dispose notifies dispose listeners. It does not cascade to children.
func (nb *Base) Dispose() {
	for _, fn := range nb.onDispose {
		fn()
	}
}

// Hash returns the sharing hash of n: its [Hasher] override or its UUID.
func Hash(b Builder, n Node) string {
	if h, ok := n.(Hasher); ok {
		if s := h.Hash(b); s != "" {
			return s
		}
	}
	return n.NodeBase().UUID()
}

// Shared returns the node registered in b under n's hash, or n itself.
func Shared(b Builder, n Node) Node {
	if ref := b.NodeFromHash(Hash(b, n)); ref != nil {
		return ref
	}
	return n
}

// Children returns the non-nil direct children of n.
func Children(n Node) []Node {
	var children []Node
	n.ForEachChild(nil, func(_ any, _ string, child *Node) error {
		if *child != nil {
			children = append(children, *child)
		}
		return nil
	})
	return children
}

// Traverse calls fn for n and every descendant in depth first pre-order.
// A node reachable through several paths is visited once per path.
// Edges closing a cycle are not followed.
func Traverse(n Node, fn func(Node)) {
	traverse(n, fn, make(map[Node]bool))
}

func traverse(n Node, fn func(Node), path map[Node]bool) {
	if n == nil || path[n] {
		return
	}
	fn(n)
	path[n] = true
	n.ForEachChild(nil, func(_ any, _ string, child *Node) error {
		traverse(*child, fn, path)
		return nil
	})
	delete(path, n)
}

var errNilChild = errors.New("nil child")

// Validate checks the graph rooted at n for nil children and reference cycles.
func Validate(n Node) error {
	if n == nil {
		return errors.New("nil node")
	}
	var errs []error
	visiting := make(map[uint64]bool)
	var visit func(n Node)
	visit = func(n Node) {
		id := n.NodeBase().ID()
		if done, seen := visiting[id]; seen {
			if !done {
				errs = append(errs, errors.New("cycle through "+typeName(n)+" "+strconv.FormatUint(id, 10)))
			}
			return
		}
		visiting[id] = false
		n.ForEachChild(nil, func(_ any, name string, child *Node) error {
			if *child == nil {
				if !optionalChild(n, name) {
					errs = append(errs, errors.New(typeName(n)+"."+name+": "+errNilChild.Error()))
				}
				return nil
			}
			visit(*child)
			return nil
		})
		visiting[id] = true
	}
	visit(n)
	return errors.Join(errs...)
}

// optionalChild reports whether a nil child is allowed, i.e. unary operators.
func optionalChild(n Node, name string) bool {
	o, ok := n.(interface{ optionalChild(name string) bool })
	return ok && o.optionalChild(name)
}

// TypeName returns the Go type name of the node, i.e. "OperatorNode".
func TypeName(n Node) string { return typeName(n) }

func typeName(n Node) string {
	tp := reflect.TypeOf(n)
	if tp == nil {
		return "<nil>"
	}
	if tp.Kind() == reflect.Pointer {
		tp = tp.Elem()
	}
	return tp.Name()
}
