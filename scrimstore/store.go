package scrimstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/harrywsong/studiobot-sub000/models"

	"github.com/peterbourgon/diskv/v3"
)

// Store persists scrims as individual JSON files on disk. Scrims are
// short-lived and low-volume, so a key-value file store is enough and
// keeps them out of the relational schema.
type Store struct {
	mu sync.Mutex
	kv *diskv.Diskv
}

// New opens a store rooted at basePath, creating it if needed
func New(basePath string) *Store {
	kv := diskv.New(diskv.Options{
		BasePath: basePath,
		AdvancedTransform: func(key string) *diskv.PathKey {
			return &diskv.PathKey{
				Path:     nil,
				FileName: key + ".json",
			}
		},
		InverseTransform: func(pathKey *diskv.PathKey) string {
			return strings.TrimSuffix(pathKey.FileName, ".json")
		},
		CacheSizeMax: 512 * 512,
	})
	return &Store{kv: kv}
}

// Save writes a scrim to disk, replacing any existing record
func (s *Store) Save(scrim *models.Scrim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(scrim)
	if err != nil {
		return fmt.Errorf("failed to serialize scrim %s: %w", scrim.ID, err)
	}
	if err := s.kv.Write(scrim.ID, data); err != nil {
		return fmt.Errorf("failed to write scrim %s: %w", scrim.ID, err)
	}
	return nil
}

// Get loads a scrim by ID, or nil when it doesn't exist
func (s *Store) Get(id string) (*models.Scrim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(id)
}

func (s *Store) read(id string) (*models.Scrim, error) {
	if !s.kv.Has(id) {
		return nil, nil
	}
	data, err := s.kv.Read(id)
	if err != nil {
		return nil, fmt.Errorf("failed to read scrim %s: %w", id, err)
	}
	var scrim models.Scrim
	if err := json.Unmarshal(data, &scrim); err != nil {
		return nil, fmt.Errorf("failed to parse scrim %s: %w", id, err)
	}
	return &scrim, nil
}

// Delete removes a scrim record. Deleting a missing scrim is not an error.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.kv.Has(id) {
		return nil
	}
	if err := s.kv.Erase(id); err != nil {
		return fmt.Errorf("failed to delete scrim %s: %w", id, err)
	}
	return nil
}

// All returns every stored scrim, oldest first
func (s *Store) All() ([]*models.Scrim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scrims []*models.Scrim
	for key := range s.kv.Keys(nil) {
		scrim, err := s.read(key)
		if err != nil {
			return nil, err
		}
		if scrim != nil {
			scrims = append(scrims, scrim)
		}
	}
	sort.Slice(scrims, func(i, j int) bool {
		return scrims[i].CreatedAt.Before(scrims[j].CreatedAt)
	})
	return scrims, nil
}

// ByGuild returns every stored scrim for one guild, oldest first
func (s *Store) ByGuild(guildID int64) ([]*models.Scrim, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	var scrims []*models.Scrim
	for _, scrim := range all {
		if scrim.GuildID == guildID {
			scrims = append(scrims, scrim)
		}
	}
	return scrims, nil
}

// Mutate loads a scrim, applies fn, and saves the result atomically with
// respect to other Mutate calls. fn returning false aborts without saving.
func (s *Store) Mutate(id string, fn func(*models.Scrim) bool) (*models.Scrim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	scrim, err := s.read(id)
	if err != nil {
		return nil, err
	}
	if scrim == nil {
		return nil, fmt.Errorf("scrim %s not found", id)
	}

	if !fn(scrim) {
		return scrim, nil
	}

	data, err := json.Marshal(scrim)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize scrim %s: %w", id, err)
	}
	if err := s.kv.Write(id, data); err != nil {
		return nil, fmt.Errorf("failed to write scrim %s: %w", id, err)
	}
	return scrim, nil
}
