package addressscanner

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// primaryModuleInfo returns the base and image size of the first module
// of the process, which is the executable itself.
func primaryModuleInfo(process windows.Handle) (windows.ModuleInfo, error) {
	var modules [1024]windows.Handle
	var needed uint32

	err := windows.EnumProcessModules(process, &modules[0],
		uint32(len(modules))*uint32(unsafe.Sizeof(modules[0])), &needed)
	if err != nil {
		return windows.ModuleInfo{}, fmt.Errorf("failed to enumerate modules: %w", err)
	}

	if needed/uint32(unsafe.Sizeof(modules[0])) == 0 {
		return windows.ModuleInfo{}, errNoModules
	}

	var info windows.ModuleInfo
	err = windows.GetModuleInformation(process, modules[0], &info, uint32(unsafe.Sizeof(info)))
	if err != nil {
		return windows.ModuleInfo{}, fmt.Errorf("failed to get module information: %w", err)
	}
	if info.SizeOfImage == 0 {
		return windows.ModuleInfo{}, fmt.Errorf("module at 0x%X reports an empty image", info.BaseOfDll)
	}

	return info, nil
}

func locateCurrentModule() (Region, error) {
	info, err := primaryModuleInfo(windows.CurrentProcess())
	if err != nil {
		return Region{}, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(info.BaseOfDll)), int(info.SizeOfImage))
	return NewRegion(Address(info.BaseOfDll), data), nil
}

func snapshotProcessModule(pid uint32) (Region, error) {
	hProcess, err := windows.OpenProcess(
		windows.PROCESS_VM_READ|windows.PROCESS_QUERY_INFORMATION,
		false,
		pid,
	)
	if err != nil {
		return Region{}, fmt.Errorf("failed to open process: %w", err)
	}
	defer windows.CloseHandle(hProcess)

	info, err := primaryModuleInfo(hProcess)
	if err != nil {
		return Region{}, err
	}

	buffer := make([]byte, info.SizeOfImage)
	var bytesRead uintptr
	err = windows.ReadProcessMemory(hProcess, info.BaseOfDll, &buffer[0],
		uintptr(len(buffer)), &bytesRead)
	if err != nil && bytesRead == 0 {
		return Region{}, fmt.Errorf("failed to read module memory: %w", err)
	}

	return NewRegion(Address(info.BaseOfDll), buffer[:bytesRead]), nil
}
