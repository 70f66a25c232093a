package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles
var styles embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// Load reads styles/{kind}/{name}.css from the embedded assets.
func (e *EmbeddedLoader) Load(kind Kind, name string) (string, error) {
	if err := validate(kind, name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + string(kind) + "/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %s %q", ErrAssetNotFound, kind, name)
	}

	return string(content), nil
}

// List returns the embedded names of kind.
func (e *EmbeddedLoader) List(kind Kind) ([]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	entries, err := fs.ReadDir(styles, "styles/"+string(kind))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAssetRead, err)
	}
	return cssNames(entries), nil
}

func cssNames(entries []fs.DirEntry) []string {
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".css") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".css"))
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
