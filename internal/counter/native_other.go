//go:build !linux && !darwin

package counter

// No native attribute support; probing falls through to the CLI tools
func newNativeBackend() Backend {
	return nil
}
