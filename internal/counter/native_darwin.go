package counter

import "golang.org/x/sys/unix"

// errNoAttr is what getxattr returns for a missing attribute
const errNoAttr = unix.ENOATTR

// attrName is the key unchanged; macOS has no attribute namespaces
func attrName(key string) string {
	return key
}
