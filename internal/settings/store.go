package settings

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pat-apps/teleprompter/internal/shared"
)

// Settings are the client preferences the original apps kept in user
// defaults: where the companion service lives and how the prompter renders.
type Settings struct {
	ServerURL   string  `json:"server_url"`
	APIBaseURL  string  `json:"api_base_url"`
	ClientName  string  `json:"client_name"`
	FontSize    int     `json:"font_size"`
	ScrollSpeed float64 `json:"scroll_speed"`
	MirrorText  bool    `json:"mirror_text"`
}

func Defaults() Settings {
	return Settings{
		ServerURL:   "ws://localhost:8765",
		APIBaseURL:  "http://localhost:8000",
		ClientName:  shared.NewID("prompter_"),
		FontSize:    48,
		ScrollSpeed: 1.0,
	}
}

// Store is a JSON file of preferences, nothing more. Load creates the file
// with defaults when it is missing.
type Store struct {
	mu   sync.Mutex
	path string
	data Settings
}

func NewStore(path string) *Store {
	return &Store{path: path, data: Defaults()}
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.saveLocked()
		}
		return err
	}
	return json.Unmarshal(b, &s.data)
}

func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(&s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, b, 0644)
}

func (s *Store) Get() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// Update applies fn to the settings and persists the result.
func (s *Store) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
	return s.saveLocked()
}
