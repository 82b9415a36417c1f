package dummyllm

import (
	"context"
	"sync"
	"time"
)

// inMemoryStore 包内置的线程安全内存存储，未注入外部实现时的默认选择。
// 设计：为避免 import cycle 不依赖 storage 子包；记录保留到进程结束，不过期。
type inMemoryStore struct {
	mu sync.RWMutex
	m  map[string]*JobRecord
}

// newDefaultMemStore 创建内置内存存储。
func newDefaultMemStore() Store { return &inMemoryStore{m: map[string]*JobRecord{}} }

// Create 实现 Store.Create。
func (s *inMemoryStore) Create(ctx context.Context, rec *JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[rec.ID]; ok {
		return ErrDuplicateID
	}
	cp := rec.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	s.m[rec.ID] = cp
	return nil
}

// Get 实现 Store.Get。
func (s *inMemoryStore) Get(ctx context.Context, id string) (*JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// Transition 实现 Store.Transition：锁内完成终态校验与变更提交。
func (s *inMemoryStore) Transition(ctx context.Context, id string, mutate func(*JobRecord)) (*JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.State.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	mutate(r)
	r.UpdatedAt = time.Now()
	return r.Clone(), nil
}

// RequestCancel 实现 Store.RequestCancel。
func (s *inMemoryStore) RequestCancel(ctx context.Context, id string) (*JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.State.Terminal() {
		return nil, ErrAlreadyTerminal
	}
	r.CancelRequested = true
	return r.Clone(), nil
}

// Counts 实现 Store.Counts。
func (s *inMemoryStore) Counts(ctx context.Context) (map[State]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[State]int{}
	for _, r := range s.m {
		out[r.State]++
	}
	return out, nil
}
