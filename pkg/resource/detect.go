package resource

import (
	"fmt"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"

	"github.com/cuemby/burrow/pkg/types"
)

// Detect probes the host for total CPU and memory capacity. GPU count is
// always reported as zero; GPUs have no portable discovery path and must
// be configured explicitly.
func Detect() (types.Resources, error) {
	cores, err := cpu.Counts(true)
	if err != nil {
		return types.Resources{}, fmt.Errorf("failed to detect cpu count: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return types.Resources{}, fmt.Errorf("failed to detect memory: %w", err)
	}

	return types.Resources{
		CPUCores: float64(cores),
		MemoryMB: int64(vm.Total / (1024 * 1024)),
		GPUCount: 0,
	}, nil
}
