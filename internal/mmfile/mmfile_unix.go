//go:build unix

package mmfile

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// Map maps the file at path read-only and returns its contents. The
// returned slice is valid until cleanup is called; cleanup is idempotent.
func Map(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close() // safe before return; mapping keeps pages alive

	info, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	size := info.Size()
	if size == 0 {
		return []byte{}, func() error { return nil }, nil
	}
	if size > int64(^uint(0)>>1) {
		return nil, nil, fmt.Errorf("mmfile: file too large to map (%d bytes)", size)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmfile: mmap %s: %w", path, err)
	}
	// Decoding walks the file front to back once.
	_ = unix.Madvise(data, unix.MADV_SEQUENTIAL)

	var once sync.Once
	cleanup := func() error {
		var err error
		once.Do(func() {
			err = unix.Munmap(data)
			if errors.Is(err, unix.EINVAL) {
				err = nil
			}
		})
		return err
	}
	return data, cleanup, nil
}
