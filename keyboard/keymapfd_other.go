//go:build !linux

package keyboard

import (
	"fmt"
	"io"
	"os"
)

// readKeymapFD reads the serialized keymap from fd without mapping it,
// for platforms where the display protocol is bridged rather than
// native. Takes ownership of the descriptor.
func readKeymapFD(fd int, size uint32) ([]byte, error) {
	f := os.NewFile(uintptr(fd), "keymap")
	if f == nil {
		return nil, fmt.Errorf("invalid keymap fd %d", fd)
	}
	defer f.Close()

	if size == 0 {
		return nil, fmt.Errorf("zero-length keymap")
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, int64(size)), data); err != nil {
		return nil, fmt.Errorf("read keymap fd: %w", err)
	}
	return data, nil
}

func closeKeymapFD(fd int) {
	if f := os.NewFile(uintptr(fd), "keymap"); f != nil {
		f.Close()
	}
}
