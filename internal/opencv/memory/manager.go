// Package memory tracks the native Mats created while a frame is processed so
// none outlive it.
package memory

import (
	"sync"
	"time"

	"histoview/internal/logger"
	"histoview/internal/opencv/safe"
)

type allocationRecord struct {
	mat       *safe.Mat
	tag       string
	createdAt time.Time
	size      int64
}

// Stats are cumulative counters since the Manager was created.
type Stats struct {
	TotalTracked  int64
	TotalReleased int64
	ActiveMats    int64
	ActiveBytes   int64
}

type Manager struct {
	mu          sync.Mutex
	allocations map[uint64]*allocationRecord
	stats       Stats
	log         logger.Logger
}

func NewManager(log logger.Logger) *Manager {
	return &Manager{
		allocations: make(map[uint64]*allocationRecord),
		log:         log,
	}
}

// Track registers mat under tag and returns it. Nil mats are ignored.
func (m *Manager) Track(mat *safe.Mat, tag string) *safe.Mat {
	if mat == nil || !mat.IsValid() {
		return mat
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.allocations[mat.ID()]; exists {
		return mat
	}

	size := int64(mat.Rows() * mat.Cols() * mat.Channels())
	m.allocations[mat.ID()] = &allocationRecord{
		mat:       mat,
		tag:       tag,
		createdAt: time.Now(),
		size:      size,
	}
	m.stats.TotalTracked++
	m.stats.ActiveMats++
	m.stats.ActiveBytes += size
	return mat
}

// Release closes mat. Untracked mats are closed too, with a warning.
func (m *Manager) Release(mat *safe.Mat) {
	if mat == nil {
		return
	}

	m.mu.Lock()
	record, exists := m.allocations[mat.ID()]
	if exists {
		m.forget(mat.ID(), record)
	}
	m.mu.Unlock()

	if !exists {
		m.log.Warning("MemoryManager", "releasing untracked mat", map[string]interface{}{
			"mat_id": mat.ID(),
		})
	}
	mat.Close()
}

// ReleaseAll closes every tracked mat and returns how many were closed.
func (m *Manager) ReleaseAll() int {
	m.mu.Lock()
	records := make([]*allocationRecord, 0, len(m.allocations))
	for id, record := range m.allocations {
		records = append(records, record)
		m.forget(id, record)
	}
	m.mu.Unlock()

	for _, record := range records {
		record.mat.Close()
	}

	if len(records) > 0 {
		m.log.Debug("MemoryManager", "released tracked mats", map[string]interface{}{
			"count": len(records),
		})
	}
	return len(records)
}

func (m *Manager) forget(id uint64, record *allocationRecord) {
	delete(m.allocations, id)
	m.stats.TotalReleased++
	m.stats.ActiveMats--
	m.stats.ActiveBytes -= record.size
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Leaks lists the tags of mats tracked for longer than age.
func (m *Manager) Leaks(age time.Duration) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var tags []string
	for _, record := range m.allocations {
		if time.Since(record.createdAt) > age {
			tags = append(tags, record.tag)
		}
	}
	return tags
}
