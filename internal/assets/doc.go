// Package assets provides the stylesheet and HTML templates the catalog
// composer renders with.
//
// # Loader Architecture
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in catalog set)
//	    ├── FilesystemLoader  - loads from a custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// Resolver is what the converter uses. It tries the FilesystemLoader first
// and falls back to the embedded assets when a name is not found, so a
// custom directory may override only the stylesheet or only the templates.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css           # print stylesheet (e.g., catalog.css)
//	└── templates/
//	    └── {name}/
//	        ├── document.html    # page skeleton: header + grid
//	        └── card.html        # one product card
//
// Templates are text/template sources. Every user-supplied value must go
// through the "esc" function; the composer provides it.
//
// # Security
//
// Asset names are validated to prevent path traversal. FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
