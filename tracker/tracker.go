package tracker

import (
	"context"
	"sync"
)

// Job 维护单个任务执行期的上下文与取消句柄。
// 执行器在 Ctx 上等待模拟延迟，Cancel 触发后等待立即被打断。
type Job struct {
	Ctx    context.Context
	Cancel context.CancelFunc
}

// Manager 按任务 ID 跟踪在途执行单元。
type Manager struct {
	mu      sync.RWMutex
	running map[string]*Job
}

// NewManager 构造。
func NewManager() *Manager { return &Manager{running: map[string]*Job{}} }

// Start 注册任务并返回其可取消上下文。
func (m *Manager) Start(id string) *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{Ctx: ctx, Cancel: cancel}
	m.running[id] = j
	return j
}

// Stop 取消并移除任务；任务不存在返回 false。
func (m *Manager) Stop(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.running[id]; ok {
		j.Cancel()
		delete(m.running, id)
		return true
	}
	return false
}

// StopAll 取消并移除全部在途任务，返回数量。用于宿主关停时排空
// hang 类永不自然结束的执行单元。
func (m *Manager) StopAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.running)
	for id, j := range m.running {
		j.Cancel()
		delete(m.running, id)
	}
	return n
}

// Get 查询任务。
func (m *Manager) Get(id string) (*Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	j, ok := m.running[id]
	return j, ok
}

// ListIDs 返回当前在途任务 ID 集合。
func (m *Manager) ListIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.running))
	for id := range m.running {
		ids = append(ids, id)
	}
	return ids
}
