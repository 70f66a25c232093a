package assets

import (
	"errors"
	"sort"
)

// AssetResolver combines custom and embedded loaders with fallback logic.
// When a custom loader is configured, it tries custom first, then falls back
// to embedded if the asset is not found in the custom location.
type AssetResolver struct {
	custom   AssetLoader // nil if no custom path configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// Load loads an asset, trying the custom loader first if available.
func (r *AssetResolver) Load(kind Kind, name string) (string, error) {
	if r.custom == nil {
		return r.embedded.Load(kind, name)
	}

	content, err := r.custom.Load(kind, name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrAssetNotFound) {
		return "", err
	}

	return r.embedded.Load(kind, name)
}

// List merges the custom and embedded names of kind.
func (r *AssetResolver) List(kind Kind) ([]string, error) {
	names, err := r.embedded.List(kind)
	if err != nil || r.custom == nil {
		return names, err
	}

	custom, err := r.custom.List(kind)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = true
	}
	for _, n := range custom {
		if !seen[n] {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Palette returns the color variables of the named palette.
func (r *AssetResolver) Palette(name string) (string, error) {
	return r.Load(KindPalette, name)
}

// Theme returns the named theme.
func (r *AssetResolver) Theme(name string) (string, error) {
	return r.Load(KindTheme, name)
}

// MathFonts returns the font faces used by typeset math.
func (r *AssetResolver) MathFonts() (string, error) {
	return r.Load(KindMath, MathCHTML)
}

// Base returns the rules for the HTML shapes the host renderer emits.
func (r *AssetResolver) Base() (string, error) {
	return r.Load(KindBase, BaseApp)
}

// HasCustomLoader returns true if a custom asset loader is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
