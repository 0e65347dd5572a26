package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/chamai/pkg/domain"
)

// HistoryFile is the JSON Lines audit log kept next to the session state.
const HistoryFile = "history.jsonl"

// FileAuditLog implements domain.AuditLog using a JSON Lines file.
type FileAuditLog struct {
	mu       sync.RWMutex
	path     string
	basePath string
	lastHash string
	loaded   bool
}

var _ domain.AuditLog = (*FileAuditLog)(nil)

// NewFileAuditLog creates a history log under basePath. The directory is
// created on first write, not at construction time.
func NewFileAuditLog(basePath string) *FileAuditLog {
	return &FileAuditLog{
		path:     filepath.Join(basePath, HistoryFile),
		basePath: basePath,
	}
}

// Path returns the location of the log file.
func (s *FileAuditLog) Path() string {
	return s.path
}

// Append chains the event to the last recorded one and writes it.
func (s *FileAuditLog) Append(event *domain.Event) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		evts, err := s.loadEvents()
		if err != nil {
			return err
		}
		if len(evts) > 0 {
			s.lastHash = evts[len(evts)-1].Hash
		}
		s.loaded = true
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if err := os.MkdirAll(s.basePath, 0750); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	event.PrevHash = s.lastHash
	event.Hash = event.CalculateHash()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close history file: %w", cerr)
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.lastHash = event.Hash
	return nil
}

// LoadAll returns all events in append order. A missing file is an empty history.
func (s *FileAuditLog) LoadAll() ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadEvents()
}

// Count returns the number of recorded events.
func (s *FileAuditLog) Count() (int, error) {
	evts, err := s.LoadAll()
	if err != nil {
		return 0, err
	}
	return len(evts), nil
}

func (s *FileAuditLog) loadEvents() ([]*domain.Event, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	var result []*domain.Event
	scanner := bufio.NewScanner(f)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var event domain.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			return nil, fmt.Errorf("history line %d: %w", line, err)
		}
		result = append(result, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	return result, nil
}

// MemoryAuditLog keeps events in memory; used by the dashboard tests and
// sessions without a workspace.
type MemoryAuditLog struct {
	mu     sync.RWMutex
	events []*domain.Event
}

var _ domain.AuditLog = (*MemoryAuditLog)(nil)

func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

func (m *MemoryAuditLog) Append(event *domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if n := len(m.events); n > 0 {
		event.PrevHash = m.events[n-1].Hash
	}
	event.Hash = event.CalculateHash()
	cp := *event
	m.events = append(m.events, &cp)
	return nil
}

func (m *MemoryAuditLog) LoadAll() ([]*domain.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Event, len(m.events))
	for i, e := range m.events {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}
