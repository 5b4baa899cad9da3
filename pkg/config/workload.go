package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/burrow/pkg/types"
)

// Workload is a YAML task batch for the simulate command.
type Workload struct {
	Tasks []WorkloadTask `yaml:"tasks"`
}

// WorkloadTask is the YAML shape of a single task.
type WorkloadTask struct {
	Name                string  `yaml:"name"`
	Description         string  `yaml:"description"`
	Type                string  `yaml:"type"`
	Priority            string  `yaml:"priority"`
	CPUCores            float64 `yaml:"cpu_cores"`
	MemoryMB            int64   `yaml:"memory_mb"`
	GPUCount            int     `yaml:"gpu_count"`
	EstimatedDurationMS int64   `yaml:"estimated_duration_ms"`
	MaxRetries          *int    `yaml:"max_retries"`
	CreatedBy           string  `yaml:"created_by"`
}

// LoadWorkload reads a workload file.
func LoadWorkload(path string) (*Workload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workload: %w", err)
	}

	var w Workload
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse workload: %w", err)
	}
	if len(w.Tasks) == 0 {
		return nil, fmt.Errorf("workload contains no tasks")
	}
	return &w, nil
}

// Task converts the YAML shape to the domain model. An absent
// max_retries gets the stock default; an explicit 0 means no retries.
func (t WorkloadTask) Task() *types.Task {
	task := types.NewTask(t.Name, types.TaskType(t.Type), types.Priority(t.Priority), types.Resources{
		CPUCores: t.CPUCores,
		MemoryMB: t.MemoryMB,
		GPUCount: t.GPUCount,
	})
	task.Description = t.Description
	task.EstimatedDurationMS = t.EstimatedDurationMS
	task.CreatedBy = t.CreatedBy
	if t.MaxRetries != nil {
		task.MaxRetries = *t.MaxRetries
	}
	return task
}
