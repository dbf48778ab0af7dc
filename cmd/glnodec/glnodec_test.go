package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/glnode"
	"github.com/soypat/glnode/glbuild"
	"github.com/soypat/glnode/nodejson"
)

func writeGraph(t *testing.T, dir, name string, root glnode.Node) string {
	t.Helper()
	data, err := nodejson.Marshal(root)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func colorGraph() glnode.Node {
	tint := glnode.NewUniform("tint", glnode.Vec4{1, 0, 0, 1})
	return glnode.Mul(tint, glnode.Sin(glnode.NewUniform("time", float32(0))))
}

func TestCompileStdout(t *testing.T) {
	dir := t.TempDir()
	frag := writeGraph(t, dir, "color.json", colorGraph())
	out, err := execute(t, "compile", "--fragment", frag)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"// vertex.glsl\n",
		"// fragment.glsl\n",
		"gl_Position = ( modelViewProjection * vec4( position, 1.0 ) );",
		"fragColor = ( tint * vec4( sin( time ) ) );",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCompileOutDirWGSL(t *testing.T) {
	dir := t.TempDir()
	frag := writeGraph(t, dir, "color.json", colorGraph())
	outDir := filepath.Join(dir, "out")
	if _, err := execute(t, "compile", "-f", frag, "--backend", "wgsl", "-o", outDir); err != nil {
		t.Fatal(err)
	}
	src, err := os.ReadFile(filepath.Join(outDir, "fragment.wgsl"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(src), "@fragment") {
		t.Errorf("unexpected fragment program:\n%s", src)
	}
	if _, err := os.Stat(filepath.Join(outDir, "vertex.wgsl")); err != nil {
		t.Error(err)
	}
}

func TestCompileConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "cfg.yaml")
	const cfgYAML = "language: glsl\nversion: 330 core\nprecision: mediump\nattributes:\n  position: vec3\n  color: vec4\n"
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	frag := writeGraph(t, dir, "color.json", glnode.Attribute("color", glnode.TypeNone))
	out, err := execute(t, "compile", "-f", frag, "-c", cfgPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"#version 330 core\n", "precision mediump float;", "in vec4 color;"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBuilderConfig(t *testing.T) {
	fc := fileConfig{Language: "glsl", WorkgroupSize: 64, Attributes: map[string]string{"uv": "vec2"}}
	cfg, err := fc.builderConfig("WGSL")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Language != glbuild.WGSL {
		t.Error("flag language did not override file")
	}
	if cfg.WorkgroupSize != 64 || len(cfg.Attributes) != 1 || cfg.Attributes["uv"] != glnode.TypeVec2 {
		t.Errorf("unexpected config %+v", cfg)
	}
	fc.Attributes["bad"] = "vec9"
	if _, err := fc.builderConfig(""); err == nil {
		t.Error("expected error for unknown attribute type")
	}
}

func TestCompileErrors(t *testing.T) {
	dir := t.TempDir()
	frag := writeGraph(t, dir, "color.json", colorGraph())
	for _, args := range [][]string{
		{"compile"},
		{"compile", "-f", filepath.Join(dir, "missing.json")},
		{"compile", "-f", frag, "--backend", "hlsl"},
		{"compile", "-f", frag, "--spirv"},
		{"compile", "-f", frag, "--compute", frag},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestInspect(t *testing.T) {
	x := glnode.NewUniform("x", float32(1))
	root := glnode.Add(glnode.Mul(x, x), glnode.Float(1))
	path := writeGraph(t, t.TempDir(), "graph.json", root)
	out, err := execute(t, "inspect", path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{root.NodeBase().UUID(), "OperatorNode  2", "UniformNode   1", "ConstNode     1", "nodes"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
