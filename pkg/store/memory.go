package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/burrow/pkg/types"
)

// MemoryStore is an in-memory Store for single-process deployments and
// tests. Reads take a shared lock only; mutations take the write lock.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*types.Task
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*types.Task)}
}

func (s *MemoryStore) Submit(task *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
	}

	clone := *task
	clone.Status = types.TaskPending
	s.tasks[task.ID] = &clone
	task.Status = types.TaskPending
	return nil
}

func (s *MemoryStore) Get(id string) (*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	clone := *task
	return &clone, nil
}

func (s *MemoryStore) List(f Filter) ([]*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*types.Task
	for _, task := range s.tasks {
		if f.Match(task) {
			clone := *task
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *MemoryStore) Transition(id string, from []types.TaskStatus, to types.TaskStatus, up *Update) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := applyTransition(task, from, to, up, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: task %s is %s, not in %v", err, id, task.Status, from)
	}
	clone := *task
	return &clone, nil
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !deletable(task.Status) {
		return fmt.Errorf("%w: task %s is %s", ErrTaskBusy, id, task.Status)
	}
	delete(s.tasks, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
