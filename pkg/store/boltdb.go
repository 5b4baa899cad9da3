package store

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/cuemby/burrow/pkg/types"
)

var bucketTasks = []byte("tasks")

// BoltStore implements Store on top of BoltDB. Transitions run inside a
// single update transaction, which gives the same atomicity guarantee as
// the memory store's write lock.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the task database under dataDir.
func NewBoltStore(dataDir string) (*BoltStore, error) {
	dbPath := filepath.Join(dataDir, "burrow.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketTasks)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tasks bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Submit(task *types.Task) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		if b.Get([]byte(task.ID)) != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateTaskID, task.ID)
		}
		task.Status = types.TaskPending
		data, err := json.Marshal(task)
		if err != nil {
			return err
		}
		return b.Put([]byte(task.ID), data)
	})
}

func (s *BoltStore) Get(id string) (*types.Task, error) {
	var task types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &task)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *BoltStore) List(f Filter) ([]*types.Task, error) {
	var tasks []*types.Task
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		return b.ForEach(func(k, v []byte) error {
			var task types.Task
			if err := json.Unmarshal(v, &task); err != nil {
				return err
			}
			if f.Match(&task) {
				tasks = append(tasks, &task)
			}
			return nil
		})
	})
	return tasks, err
}

func (s *BoltStore) Transition(id string, from []types.TaskStatus, to types.TaskStatus, up *Update) (*types.Task, error) {
	var task types.Task
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err := json.Unmarshal(data, &task); err != nil {
			return err
		}
		if err := applyTransition(&task, from, to, up, time.Now()); err != nil {
			return fmt.Errorf("%w: task %s is %s, not in %v", err, id, task.Status, from)
		}
		updated, err := json.Marshal(&task)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), updated)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketTasks)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var task types.Task
		if err := json.Unmarshal(data, &task); err != nil {
			return err
		}
		if !deletable(task.Status) {
			return fmt.Errorf("%w: task %s is %s", ErrTaskBusy, id, task.Status)
		}
		return b.Delete([]byte(id))
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}
