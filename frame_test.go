package glnode_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/soypat/glnode"
)

func TestFrameDispatch(t *testing.T) {
	f := glnode.NewFrame(nil)
	perFrame := glnode.NewUniform("time", float32(0))
	perFrame.OnUpdate(func(f *glnode.Frame) bool {
		perFrame.SetValue(f.Time)
		return true
	}, glnode.UpdateFrame)
	var renders, objects, retries int
	perRender := glnode.Float(0)
	perRender.OnUpdateBefore(func(*glnode.Frame) bool { renders++; return true }, glnode.UpdateRender)
	perObject := glnode.Float(0)
	perObject.OnUpdateAfter(func(*glnode.Frame) bool { objects++; return true }, glnode.UpdateObject)
	failing := glnode.Float(0)
	failing.OnUpdate(func(*glnode.Frame) bool { retries++; return false }, glnode.UpdateFrame)

	f.Step(0.5)
	for r := 0; r < 2; r++ {
		f.BeginRender()
		for obj := 0; obj < 3; obj++ {
			f.UpdateNode(perFrame)
			f.UpdateNode(failing)
			f.UpdateBeforeNode(perRender)
			f.UpdateAfterNode(perObject)
		}
	}
	if perFrame.Value != float32(0.5) {
		t.Errorf("frame update not run, value %v", perFrame.Value)
	}
	perFrame.SetValue(float32(-1))
	f.UpdateNode(perFrame)
	if perFrame.Value != float32(-1) {
		t.Error("frame update ran twice in one frame")
	}
	f.Step(0.25)
	f.UpdateNode(perFrame)
	if perFrame.Value != float32(0.75) {
		t.Errorf("frame update not run on new frame, value %v", perFrame.Value)
	}
	if renders != 2 {
		t.Errorf("want 2 render updates, got %d", renders)
	}
	if objects != 6 {
		t.Errorf("want 6 object updates, got %d", objects)
	}
	if retries != 6 {
		t.Errorf("failed frame update should retry, got %d calls", retries)
	}
}

func TestFrameAbstractHook(t *testing.T) {
	var logs bytes.Buffer
	f := glnode.NewFrame(slog.New(slog.NewTextHandler(&logs, nil)))
	n := glnode.Float(1)
	n.UpdateType = glnode.UpdateObject
	f.UpdateNode(n)
	if !strings.Contains(logs.String(), "abstract update hook invoked") {
		t.Errorf("missing warning: %s", logs.String())
	}
}

func TestProgramUpdateLists(t *testing.T) {
	time := glnode.NewUniform("time", float32(0))
	time.OnUpdate(func(f *glnode.Frame) bool {
		time.SetValue(f.Time)
		return true
	}, glnode.UpdateFrame)
	b, _ := newBuilder(t)
	prog := compile(t, b, glnode.Add(glnode.Sin(time), glnode.Cos(time)))
	if len(prog.UpdateNodes) != 1 || prog.UpdateNodes[0] != time {
		t.Fatalf("want time as only update node, got %d", len(prog.UpdateNodes))
	}
	f := glnode.NewFrame(nil)
	f.Step(2)
	prog.Update(f)
	if prog.UniformValues()["time"] != float32(2) {
		t.Errorf("uniform not updated: %v", prog.UniformValues()["time"])
	}
}
