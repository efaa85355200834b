//go:build !unix

package region

import (
	mmap "github.com/edsrzf/mmap-go"
)

func mapAnon(size int) ([]byte, func() error, error) {
	m, err := mmap.MapRegion(nil, size, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Unmap, nil
}
