//go:build !unix

package mmfile

import "os"

// Map reads the file at path into memory. cleanup is a no-op kept for
// symmetry with the mapped variant.
func Map(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return data, func() error { return nil }, nil
}
