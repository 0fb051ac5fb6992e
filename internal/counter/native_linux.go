package counter

import "golang.org/x/sys/unix"

// errNoAttr is what getxattr returns for a missing attribute
const errNoAttr = unix.ENODATA

// attrName places key in the user namespace, the only one unprivileged processes may write
func attrName(key string) string {
	return userAttr(key)
}
