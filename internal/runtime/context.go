package runtime

import (
	"fmt"
	"os"
	"path/filepath"
)

// Context is the generated runtime context handed to the run loop: the
// validated package plus resolved filesystem locations.
type Context struct {
	App          *Package
	ManifestPath string
	AssetsDir    string
	DataDir      string
	Icons        []string
	Development  bool
}

// Options tune context generation.
type Options struct {
	// DataDir overrides the per-application data directory. Empty means
	// a directory named after the identifier under the user config dir.
	DataDir     string
	Development bool
}

// Generate loads the packaged configuration at path and derives the runtime
// context from it. Generation is all-or-nothing: any read, parse or
// validation failure aborts with an error and no partial context.
func Generate(path string, opts Options) (*Context, error) {
	pkg, err := LoadPackage(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve packaged configuration path: %w", err)
	}
	base := filepath.Dir(abs)

	assets := pkg.AssetsDir
	if assets == "" {
		assets = "dist"
	}
	if !filepath.IsAbs(assets) {
		assets = filepath.Join(base, assets)
	}

	dataDir := opts.DataDir
	if dataDir == "" {
		confDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve data directory: %w", err)
		}
		dataDir = filepath.Join(confDir, pkg.Identifier)
	}

	icons := make([]string, 0, len(pkg.Icons))
	for _, icon := range pkg.Icons {
		if !filepath.IsAbs(icon) {
			icon = filepath.Join(base, icon)
		}
		icons = append(icons, icon)
	}

	return &Context{
		App:          pkg,
		ManifestPath: abs,
		AssetsDir:    assets,
		DataDir:      dataDir,
		Icons:        icons,
		Development:  opts.Development,
	}, nil
}

// Identifier returns the application identifier.
func (c *Context) Identifier() string {
	return c.App.Identifier
}

// Icon returns the first packaged icon path, or empty when none is bundled.
func (c *Context) Icon() string {
	if len(c.Icons) == 0 {
		return ""
	}
	return c.Icons[0]
}

// EnsureDataDir creates the per-application data directory if missing.
func (c *Context) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %s: %w", c.DataDir, err)
	}
	return nil
}
