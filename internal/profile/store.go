// Package profile persists the guest-facing state that survives a reload:
// the branding theme and the favourites list, kept under fixed keys in a
// local JSON file. The menu and split engines never touch this store.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	DefaultTheme = "classic"
	defaultPath  = "served_profile.json"
)

// Profile is the persisted document. Keys are fixed: "theme" and
// "favorites".
type Profile struct {
	Theme     string   `json:"theme"`
	Favorites []string `json:"favorites"`
}

// HasFavorite reports whether an item has been starred.
func (p *Profile) HasFavorite(itemID string) bool {
	for _, id := range p.Favorites {
		if id == itemID {
			return true
		}
	}
	return false
}

// AddFavorite stars an item; duplicates are ignored.
func (p *Profile) AddFavorite(itemID string) {
	if !p.HasFavorite(itemID) {
		p.Favorites = append(p.Favorites, itemID)
	}
}

// Store reads and writes a profile file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = defaultPath
	}
	return &Store{path: path}
}

// Load reads the profile. A missing file is not an error: it yields the
// default profile, the same way a fresh browser session would.
func (s *Store) Load() (*Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &Profile{Theme: DefaultTheme}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading profile %s: %w", s.path, err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error parsing profile %s: %w", s.path, err)
	}
	if p.Theme == "" {
		p.Theme = DefaultTheme
	}
	return &p, nil
}

// Save writes the profile atomically (temp file plus rename) so a crash
// mid-write never corrupts the stored document.
func (s *Store) Save(p *Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "profile-*.json")
	if err != nil {
		return fmt.Errorf("error creating temp profile: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("error writing profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
