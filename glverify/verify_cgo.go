//go:build !tinygo && cgo

package glverify

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/glgl/v4.6-core/glgl"
	"github.com/soypat/glnode/glbuild"
)

// Context is a hidden 1x1 window with a current OpenGL context. It must be
// created and used from the main OS thread, see [runtime.LockOSThread].
type Context struct {
	window *glfw.Window
}

// NewContext initializes GLFW and OpenGL. Call [Context.Close] to release them.
func NewContext() (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False)
	window, err := glfw.CreateWindow(1, 1, "glnode", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating GLFW window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	return &Context{window: window}, nil
}

// Version returns the OpenGL version string of the driver.
func (c *Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

// Verify compiles and links the program's stages, returning the driver's
// info log on failure.
func (c *Context) Verify(p *glbuild.Program) error {
	if err := checkProgram(p); err != nil {
		return err
	}
	src := glgl.ShaderSource{Compute: cstr(p.Compute)}
	if p.Compute == "" {
		src = glgl.ShaderSource{Vertex: cstr(p.Vertex), Fragment: cstr(p.Fragment)}
	}
	prog, err := glgl.CompileProgram(src)
	if err != nil {
		return err
	}
	prog.Delete()
	return glgl.Err()
}

// Close destroys the window and terminates GLFW.
func (c *Context) Close() {
	c.window.Destroy()
	glfw.Terminate()
}
