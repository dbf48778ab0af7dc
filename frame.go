package glnode

import (
	"log/slog"
	"time"
)

// Frame dispatches node update hooks while rendering. A hook of kind
// [UpdateFrame] runs at most once per frame and one of kind [UpdateRender]
// at most once per render call. [UpdateObject] hooks run on every call.
// A hook returning false is not recorded as run.
type Frame struct {
	// Time is the elapsed time in seconds accumulated by Update.
	Time float32
	// DeltaTime is the time in seconds between the last two calls to Update.
	DeltaTime float32
	FrameID   uint64
	RenderID  uint64
	// Object is the value currently being rendered, set by the caller.
	Object any

	lastTime time.Time
	// per hook kind: before, update, after.
	frameMap  [3]map[uint64]uint64
	renderMap [3]map[uint64]uint64
	log       *slog.Logger
}

const (
	hookBefore = iota
	hookUpdate
	hookAfter
)

// NewFrame returns a frame ready to dispatch update hooks. A nil logger uses [Logger].
func NewFrame(log *slog.Logger) *Frame {
	if log == nil {
		log = Logger()
	}
	f := &Frame{log: log}
	for i := range f.frameMap {
		f.frameMap[i] = make(map[uint64]uint64)
		f.renderMap[i] = make(map[uint64]uint64)
	}
	return f
}

// Update starts a new frame measuring time with the wall clock.
func (f *Frame) Update() {
	now := time.Now()
	var dt time.Duration
	if !f.lastTime.IsZero() {
		dt = now.Sub(f.lastTime)
	}
	f.lastTime = now
	f.Step(float32(dt.Seconds()))
}

// Step starts a new frame advancing time by dt seconds.
func (f *Frame) Step(dt float32) {
	f.DeltaTime = dt
	f.Time += dt
	f.FrameID++
}

// BeginRender starts a new render call within the current frame.
func (f *Frame) BeginRender() { f.RenderID++ }

// UpdateBeforeNode runs the before-render hook of n.
func (f *Frame) UpdateBeforeNode(n Node) {
	nb := n.NodeBase()
	f.dispatch(n, hookBefore, nb.UpdateBeforeType, nb.updateBefore)
}

// UpdateNode runs the update hook of n.
func (f *Frame) UpdateNode(n Node) {
	nb := n.NodeBase()
	f.dispatch(n, hookUpdate, nb.UpdateType, nb.update)
}

// UpdateAfterNode runs the after-render hook of n.
func (f *Frame) UpdateAfterNode(n Node) {
	nb := n.NodeBase()
	f.dispatch(n, hookAfter, nb.UpdateAfterType, nb.updateAfter)
}

func (f *Frame) dispatch(n Node, hook int, kind UpdateType, fn func(*Frame) bool) {
	if kind == UpdateNone {
		return
	}
	if fn == nil {
		f.log.Warn("abstract update hook invoked", nodeAttr(n), slog.String("kind", kind.String()))
		return
	}
	id := n.NodeBase().ID()
	switch kind {
	case UpdateFrame:
		if last, ok := f.frameMap[hook][id]; ok && last == f.FrameID {
			return
		}
		if fn(f) {
			f.frameMap[hook][id] = f.FrameID
		}
	case UpdateRender:
		if last, ok := f.renderMap[hook][id]; ok && last == f.RenderID {
			return
		}
		if fn(f) {
			f.renderMap[hook][id] = f.RenderID
		}
	case UpdateObject:
		fn(f)
	}
}
