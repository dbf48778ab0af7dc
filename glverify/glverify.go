// Package glverify compiles generated GLSL programs with the host OpenGL
// driver. It requires CGo and a display capable of creating an OpenGL 4.6
// core context, which accepts "#version 300 es" sources.
package glverify

import (
	"errors"

	"github.com/soypat/glnode/glbuild"
)

var errNotGLSL = errors.New("only GLSL programs can be verified with OpenGL")

func checkProgram(p *glbuild.Program) error {
	switch {
	case p == nil:
		return errors.New("nil program")
	case p.Language != glbuild.GLSL:
		return errNotGLSL
	case p.Compute == "" && (p.Vertex == "" || p.Fragment == ""):
		return errors.New("program has no complete stage set")
	}
	return nil
}

// cstr returns a NUL terminated copy of src as required by the GL bindings.
func cstr(src string) string {
	if src == "" {
		return ""
	}
	return src + "\x00"
}
