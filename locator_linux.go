package addressscanner

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

func readMappings(pid string) ([]mapping, string, error) {
	exe, err := os.Readlink("/proc/" + pid + "/exe")
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve executable: %w", err)
	}

	f, err := os.Open("/proc/" + pid + "/maps")
	if err != nil {
		return nil, "", fmt.Errorf("failed to open memory maps: %w", err)
	}
	defer f.Close()

	mappings, err := parseMaps(f)
	if err != nil {
		return nil, "", err
	}
	return mappings, exe, nil
}

func locateCurrentModule() (Region, error) {
	mappings, exe, err := readMappings("self")
	if err != nil {
		return Region{}, err
	}

	start, end, err := moduleSpan(mappings, exe)
	if err != nil {
		return Region{}, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(start))), int(end-start))
	return NewRegion(start, data), nil
}

func snapshotProcessModule(pid uint32) (Region, error) {
	mappings, exe, err := readMappings(fmt.Sprint(pid))
	if err != nil {
		return Region{}, err
	}

	start, end, err := moduleSpan(mappings, exe)
	if err != nil {
		return Region{}, err
	}

	buffer := make([]byte, end-start)
	n, err := readProcessMemory(int(pid), start, buffer)
	if err != nil && n == 0 {
		return Region{}, fmt.Errorf("failed to read module memory: %w", err)
	}

	return NewRegion(start, buffer[:n]), nil
}

// readProcessMemory copies len(buffer) bytes at addr of another process
// with process_vm_readv, looping over short reads.
func readProcessMemory(pid int, addr Address, buffer []byte) (int, error) {
	read := 0
	for read < len(buffer) {
		local := []unix.Iovec{{Base: &buffer[read]}}
		local[0].SetLen(len(buffer) - read)
		remote := []unix.RemoteIovec{{
			Base: uintptr(addr) + uintptr(read),
			Len:  len(buffer) - read,
		}}

		n, err := unix.ProcessVMReadv(pid, local, remote, 0)
		if err != nil {
			return read, err
		}
		if n == 0 {
			break
		}
		read += n
	}
	return read, nil
}
