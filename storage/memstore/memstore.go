package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dummyllm/dummyllm-go/dummyllm"
)

// Store 线程安全的内存实现，与包内置默认存储等价，供宿主显式注入。
type Store struct {
	mu sync.RWMutex
	m  map[string]*dummyllm.JobRecord
}

var _ dummyllm.Store = (*Store)(nil)

// New 创建内存存储。
func New() *Store { return &Store{m: map[string]*dummyllm.JobRecord{}} }

// Create 插入 queued 记录；ID 冲突返回 ErrDuplicateID。
func (s *Store) Create(ctx context.Context, rec *dummyllm.JobRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[rec.ID]; ok {
		return dummyllm.ErrDuplicateID
	}
	cp := rec.Clone()
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	s.m[rec.ID] = cp
	return nil
}

// Get 读取记录副本。
func (s *Store) Get(ctx context.Context, id string) (*dummyllm.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.m[id]
	if !ok {
		return nil, dummyllm.ErrNotFound
	}
	return r.Clone(), nil
}

// Transition 锁内完成终态校验、变更与 UpdatedAt 刷新。
func (s *Store) Transition(ctx context.Context, id string, mutate func(*dummyllm.JobRecord)) (*dummyllm.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, dummyllm.ErrNotFound
	}
	if r.State.Terminal() {
		return nil, dummyllm.ErrAlreadyTerminal
	}
	mutate(r)
	r.UpdatedAt = time.Now()
	return r.Clone(), nil
}

// RequestCancel 置位取消标记。
func (s *Store) RequestCancel(ctx context.Context, id string) (*dummyllm.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.m[id]
	if !ok {
		return nil, dummyllm.ErrNotFound
	}
	if r.State.Terminal() {
		return nil, dummyllm.ErrAlreadyTerminal
	}
	r.CancelRequested = true
	return r.Clone(), nil
}

// Counts 各状态记录数。
func (s *Store) Counts(ctx context.Context) (map[dummyllm.State]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := map[dummyllm.State]int{}
	for _, r := range s.m {
		out[r.State]++
	}
	return out, nil
}
