package assets

// Kind is a category of stylesheet, and the directory holding it.
type Kind string

const (
	KindPalette Kind = "palettes"
	KindTheme   Kind = "themes"
	KindBase    Kind = "base"
	KindMath    Kind = "math"
)

// Well-known asset names.
const (
	BaseApp   = "app"
	MathCHTML = "chtml"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindPalette, KindTheme, KindBase, KindMath:
		return true
	}
	return false
}

// AssetLoader defines the contract for loading stylesheets.
type AssetLoader interface {
	// Load returns the stylesheet name (without .css extension) of kind.
	// Returns ErrAssetNotFound if the asset doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	Load(kind Kind, name string) (string, error)

	// List returns the names available for kind, sorted.
	List(kind Kind) ([]string, error)
}
