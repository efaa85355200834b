//go:build unix

package region

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

func mapAnon(size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	unmap := func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// already unmapped
			return nil
		}
		return err
	}
	return data, unmap, nil
}
