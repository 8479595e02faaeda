//go:build linux

package keyboard

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// readKeymapFD copies the serialized keymap out of the read-only shared
// memory region behind fd and closes the descriptor. The compositor may
// keep the region mapped elsewhere, so the mapping is private and
// unmapped as soon as the bytes are copied out.
func readKeymapFD(fd int, size uint32) ([]byte, error) {
	defer unix.Close(fd)

	if size == 0 {
		return nil, fmt.Errorf("zero-length keymap")
	}
	m, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("map keymap fd: %w", err)
	}
	defer unix.Munmap(m)

	data := make([]byte, len(m))
	copy(data, m)
	return data, nil
}

func closeKeymapFD(fd int) {
	unix.Close(fd)
}
