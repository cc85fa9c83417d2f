// Package loader reads a raw guest binary image from disk. Unlike the
// teacher's ELF loader, this core's image format is unstructured: the
// whole file is copied verbatim to the image base, with no segment
// headers or entry point to parse (the boot stub supplies the jump).
package loader

import (
	"fmt"
	"os"
)

// ImageBase is the physical address the raw binary is copied to.
const ImageBase uint32 = 0x80000000

// Image is a loaded raw binary, ready to be installed into a Machine's
// physical memory.
type Image struct {
	Base uint32
	Data []byte
}

// Load reads path as a raw binary image.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading image %q: %w", path, err)
	}
	return &Image{Base: ImageBase, Data: data}, nil
}

// Size reports the image's byte length.
func (img *Image) Size() int {
	return len(img.Data)
}
