//go:build gldebug

package main

import (
	"fmt"

	gl "github.com/go-gl/gl/v3.1/gles2"
)

// checkGL drains the GL error state and logs anything pending,
// tagged with the call site that asked. Debug builds only; release
// builds compile this away entirely.
func checkGL(context string) {
	for {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			return
		}
		logger.Error("GL error", "context", context, "code", fmt.Sprintf("0x%04x", code))
	}
}
