package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileStore serves workshops from a snapshot file written by SaveSnapshot.
// The file is read once and kept in memory.
type FileStore struct {
	path string

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewFileStore creates a store backed by the snapshot at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file, replacing what was loaded before
func (s *FileStore) Load() error {
	snapshot, err := LoadSnapshot(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
	return nil
}

func (s *FileStore) workshops() ([]Workshop, error) {
	s.mu.RLock()
	snapshot := s.snapshot
	s.mu.RUnlock()
	if snapshot != nil {
		return snapshot.Workshops, nil
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Workshops, nil
}

// Workshops returns the workshops of ref ordered by date. A zero ref returns
// every workshop.
func (s *FileStore) Workshops(ctx context.Context, ref QuarterRef) ([]Workshop, error) {
	all, err := s.workshops()
	if err != nil {
		return nil, err
	}

	var result []Workshop
	for _, w := range all {
		if ref.IsZero() || (w.Quarter == ref.Quarter && w.Year == ref.Year) {
			result = append(result, w)
		}
	}
	SortWorkshopsByDate(result)
	return result, nil
}

// Quarters returns the distinct quarters in the snapshot, most recent first
func (s *FileStore) Quarters(ctx context.Context) ([]QuarterRef, error) {
	all, err := s.workshops()
	if err != nil {
		return nil, err
	}
	return WorkshopQuarters(all), nil
}

// LoadSnapshot reads a snapshot file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	return &snapshot, nil
}

// SaveSnapshot writes the workshops to path. The data is written to a tmp file
// first and renamed into place; an existing snapshot is moved to the backup
// directory next to it.
func SaveSnapshot(path, source string, workshops []Workshop) error {
	snapshot := Snapshot{
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Source:    source,
		Workshops: workshops,
	}
	if snapshot.Workshops == nil {
		snapshot.Workshops = []Workshop{}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	tmpFile := path + TmpSuffix
	if err := os.WriteFile(tmpFile, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		backupDirPath := filepath.Join(filepath.Dir(path), BackupDir)
		if err := os.MkdirAll(backupDirPath, 0755); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
		backupFile := filepath.Join(backupDirPath, fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), filepath.Base(path), BackupSuffix))
		if err := os.Rename(path, backupFile); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		log.Printf("✅ Backup created: %s", backupFile)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	log.Printf("✅ Snapshot with %d workshops written to %s", len(snapshot.Workshops), path)
	return nil
}

// SortWorkshopsByDate sorts workshops by date in ascending order
func SortWorkshopsByDate(workshops []Workshop) {
	sort.SliceStable(workshops, func(i, j int) bool {
		return workshops[i].Date < workshops[j].Date
	})
}
