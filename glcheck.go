//go:build !gldebug

package main

// checkGL is compiled out unless the gldebug build tag is set.
func checkGL(string) {}
