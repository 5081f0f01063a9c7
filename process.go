package addressscanner

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// FindProcessesByName finds all processes with the specified executable name
func FindProcessesByName(name string) ([]uint32, error) {
	return FindProcessesByNameContext(context.Background(), name)
}

// FindProcessesByNameContext is FindProcessesByName with a context.
func FindProcessesByNameContext(ctx context.Context, name string) ([]uint32, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate processes: %w", err)
	}

	var pids []uint32
	for _, p := range procs {
		if processNameMatches(ctx, p, name) {
			pids = append(pids, uint32(p.Pid))
		}
	}

	if len(pids) == 0 {
		return nil, fmt.Errorf("process not found: %s", name)
	}

	return pids, nil
}

func processNameMatches(ctx context.Context, p *process.Process, name string) bool {
	processName, err := p.NameWithContext(ctx)
	if err == nil && strings.EqualFold(processName, name) {
		return true
	}

	// Linux truncates the command name, so fall back to the executable path.
	exe, err := p.ExeWithContext(ctx)
	if err != nil || exe == "" {
		return false
	}
	return strings.EqualFold(filepath.Base(exe), name)
}
