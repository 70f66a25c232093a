package assets

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// Load loads an embedded asset by kind and name (without .css).
// Returns ErrAssetNotFound if the asset does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func Load(kind Kind, name string) (string, error) {
	return defaultLoader.Load(kind, name)
}

// Themes returns the names of the embedded themes.
func Themes() ([]string, error) {
	return defaultLoader.List(KindTheme)
}
