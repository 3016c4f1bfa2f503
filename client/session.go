package client

import (
	"encoding/json"
	"os"
	"sync"
)

// The two durable keys the session owns. Nothing else reads or writes them.
const (
	storageKeyToken = "token"
	storageKeyRole  = "account_role"
)

// Storage is a durable string key-value store backing the session.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is an in-process Storage, used in tests and short-lived tools.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage returns an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStorage persists values as a JSON file, giving CLI sessions the same
// survive-a-restart behavior a browser session gets from local storage.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage returns a store persisting to the given path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) load() map[string]string {
	values := map[string]string{}
	content, err := os.ReadFile(s.path)
	if err != nil {
		return values
	}
	// A corrupt session file behaves like an empty one
	_ = json.Unmarshal(content, &values)
	return values
}

func (s *FileStorage) save(values map[string]string) error {
	content, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, content, 0600)
}

func (s *FileStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.load()[key]
	return v, ok
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	values[key] = value
	return s.save(values)
}

func (s *FileStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values := s.load()
	delete(values, key)
	return s.save(values)
}

// Session holds the authenticated caller's token and account role. It is
// created once at process start and shared by every adapter call.
type Session struct {
	storage Storage
}

// NewSession wraps a storage backend in a session
func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Token returns the stored bearer token, empty when logged out.
func (s *Session) Token() string {
	token, _ := s.storage.Get(storageKeyToken)
	return token
}

// Role returns the stored account role, empty when logged out.
func (s *Session) Role() Role {
	role, _ := s.storage.Get(storageKeyRole)
	return Role(role)
}

// Set persists the token and role of a fresh login.
func (s *Session) Set(token string, role Role) error {
	if err := s.storage.Set(storageKeyToken, token); err != nil {
		return err
	}
	return s.storage.Set(storageKeyRole, string(role))
}

// Clear removes the persisted session.
func (s *Session) Clear() error {
	if err := s.storage.Delete(storageKeyToken); err != nil {
		return err
	}
	return s.storage.Delete(storageKeyRole)
}
