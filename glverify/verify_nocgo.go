//go:build tinygo || !cgo

package glverify

import (
	"errors"

	"github.com/soypat/glnode/glbuild"
)

var errNoCGO = errors.New("OpenGL verification requires CGo and is not supported on TinyGo")

// Context is unavailable without CGo.
type Context struct{}

func NewContext() (*Context, error) { return nil, errNoCGO }

func (c *Context) Version() string { return "" }

func (c *Context) Verify(p *glbuild.Program) error {
	if err := checkProgram(p); err != nil {
		return err
	}
	return errNoCGO
}

func (c *Context) Close() {}
