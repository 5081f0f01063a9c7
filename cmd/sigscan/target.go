package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/zhuweiyou/addressscanner"
)

// targetFlags selects the memory a command scans.
type targetFlags struct {
	file    string
	base    string
	pid     uint32
	process string
	self    bool
}

func (t *targetFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&t.file, "file", "", "Scan an executable on disk (PE images are mapped at their image base)")
	fs.StringVar(&t.base, "base", "", "Load --file verbatim at this base address (e.g. 0x140000000)")
	fs.Uint32Var(&t.pid, "pid", 0, "Scan the primary module of the process with this ID")
	fs.StringVar(&t.process, "process", "", "Scan the primary module of the first process with this name")
	fs.BoolVar(&t.self, "self", false, "Scan the primary module of sigscan itself")
}

// resolvePID returns the process selected by --pid or --process.
func (t *targetFlags) resolvePID(ctx context.Context) (uint32, error) {
	if t.pid != 0 {
		return t.pid, nil
	}
	if t.process == "" {
		return 0, errors.New("no process selected (use --pid or --process)")
	}

	pids, err := addressscanner.FindProcessesByNameContext(ctx, t.process)
	if err != nil {
		return 0, err
	}
	if len(pids) > 1 {
		logger.Warn().
			Str("process", t.process).
			Interface("pids", pids).
			Msg("several processes match, using the first")
	}
	return pids[0], nil
}

// regionPIDs returns every process a region walk covers: the one selected
// by --pid or --self, or all processes named by --process.
func (t *targetFlags) regionPIDs(ctx context.Context) ([]uint32, error) {
	switch {
	case t.file != "":
		return nil, errors.New("--regions needs a running process, not --file")
	case t.self:
		return []uint32{uint32(os.Getpid())}, nil
	case t.pid != 0:
		return []uint32{t.pid}, nil
	case t.process == "":
		return nil, errors.New("no process selected (use --pid, --process or --self)")
	}

	pids, err := addressscanner.FindProcessesByNameContext(ctx, t.process)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("process", t.process).Interface("pids", pids).Msg("found processes")
	return pids, nil
}

func (t *targetFlags) locator(ctx context.Context) (addressscanner.Locator, string, error) {
	selected := 0
	for _, set := range []bool{t.file != "", t.pid != 0 || t.process != "", t.self} {
		if set {
			selected++
		}
	}
	if selected != 1 {
		return nil, "", errors.New("select exactly one target: --file, --pid/--process or --self")
	}

	switch {
	case t.file != "":
		if t.base == "" {
			return addressscanner.ImageFile(t.file), t.file, nil
		}
		base, err := parseAddress(t.base)
		if err != nil {
			return nil, "", err
		}
		return addressscanner.ImageFileAt(t.file, base), t.file, nil
	case t.self:
		return addressscanner.CurrentProcess(), "self", nil
	}

	pid, err := t.resolvePID(ctx)
	if err != nil {
		return nil, "", err
	}
	return addressscanner.ProcessModule(pid), fmt.Sprintf("pid %d", pid), nil
}

func parseAddress(s string) (addressscanner.Address, error) {
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return addressscanner.Address(v), nil
}
