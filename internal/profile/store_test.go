package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "profile.json"))

	p, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, p.Theme)
	assert.Empty(t, p.Favorites)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	store := NewStore(path)

	p := &Profile{Theme: "dark"}
	p.AddFavorite("item-pizza")
	p.AddFavorite("item-lager")
	p.AddFavorite("item-pizza") // duplicate is ignored

	require.NoError(t, store.Save(p))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Theme)
	assert.Equal(t, []string{"item-pizza", "item-lager"}, loaded.Favorites)
	assert.True(t, loaded.HasFavorite("item-lager"))
	assert.False(t, loaded.HasFavorite("item-soup"))
}

func TestLoadFixedDocumentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	doc := `{"theme": "ocean", "favorites": ["item-soup"]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	loaded, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "ocean", loaded.Theme)
	assert.Equal(t, []string{"item-soup"}, loaded.Favorites)
}

func TestLoadEmptyThemeFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"favorites": []}`), 0o644))

	loaded, err := NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme, loaded.Theme)
}

func TestLoadCorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewStore(path).Load()
	assert.Error(t, err)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	store := NewStore(path)

	require.NoError(t, store.Save(&Profile{Theme: "classic"}))
	require.NoError(t, store.Save(&Profile{Theme: "dark", Favorites: []string{"item-wrap"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.Theme)
	assert.Equal(t, []string{"item-wrap"}, loaded.Favorites)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
