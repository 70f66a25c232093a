// Package assets provides the stylesheets embedded in exported documents.
// Assets can be loaded from embedded files or custom filesystem paths.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// AssetResolver is the loader used by the exporter. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset is
// not found, so a user can override one palette while keeping the rest.
//
// # Directory Structure
//
// Assets are organized by kind:
//
//	{basePath}/
//	├── palettes/
//	│   ├── light.css            # color variables, light
//	│   └── dark.css             # color variables, dark
//	├── themes/
//	│   └── {name}.css           # optional look applied on top
//	├── base/
//	│   └── app.css              # rules for the host HTML shapes
//	└── math/
//	    └── chtml.css            # font faces for typeset math
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
