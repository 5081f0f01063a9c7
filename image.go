package addressscanner

import (
	"bytes"
	"debug/pe"
	"fmt"
	"os"
)

// ImageFile returns a locator backed by an executable on disk. PE images
// are laid out the way the loader maps them, with every section at its
// relative virtual address and the region based at the preferred image
// base, so signatures and offsets carry over to the running process.
// Other files are loaded verbatim at address 0. The file is read again on
// every call.
func ImageFile(path string) Locator {
	return LocatorFunc(func() (Region, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Region{}, fmt.Errorf("failed to read image %s: %w", path, err)
		}

		f, err := pe.NewFile(bytes.NewReader(raw))
		if err != nil {
			return NewRegion(0, raw), nil
		}
		defer f.Close()

		return layoutImage(f, raw)
	})
}

// ImageFileAt returns a locator that loads the file verbatim at base.
func ImageFileAt(path string, base Address) Locator {
	return LocatorFunc(func() (Region, error) {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Region{}, fmt.Errorf("failed to read image %s: %w", path, err)
		}
		return NewRegion(base, raw), nil
	})
}

func layoutImage(f *pe.File, raw []byte) (Region, error) {
	var imageBase uint64
	var sizeOfImage, sizeOfHeaders uint32

	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		imageBase = uint64(oh.ImageBase)
		sizeOfImage = oh.SizeOfImage
		sizeOfHeaders = oh.SizeOfHeaders
	case *pe.OptionalHeader64:
		imageBase = oh.ImageBase
		sizeOfImage = oh.SizeOfImage
		sizeOfHeaders = oh.SizeOfHeaders
	default:
		return Region{}, fmt.Errorf("PE image has no optional header")
	}

	image := make([]byte, sizeOfImage)
	copy(image, raw[:min(int(sizeOfHeaders), len(raw), len(image))])

	for _, section := range f.Sections {
		data, err := section.Data()
		if err != nil {
			return Region{}, fmt.Errorf("failed to read section %s: %w", section.Name, err)
		}

		if section.VirtualSize > 0 && int(section.VirtualSize) < len(data) {
			data = data[:section.VirtualSize]
		}
		start := int(section.VirtualAddress)
		if start >= len(image) {
			return Region{}, fmt.Errorf("section %s at 0x%X lies outside the image", section.Name, start)
		}
		copy(image[start:], data)
	}

	return NewRegion(Address(imageBase), image), nil
}
