package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Default window dimensions, applied when the manifest leaves them unset.
const (
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 600
)

// Window describes one window in the packaged window manifest. Width and
// height are optional; an explicit zero or negative value is rejected, an
// absent value falls back to the defaults.
type Window struct {
	Label      string `json:"label" yaml:"label" toml:"label" validate:"required"`
	Title      string `json:"title" yaml:"title" toml:"title"`
	Width      *int   `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty" validate:"omitempty,gt=0"`
	Height     *int   `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty" validate:"omitempty,gt=0"`
	X          *int   `json:"x,omitempty" yaml:"x,omitempty" toml:"x,omitempty"`
	Y          *int   `json:"y,omitempty" yaml:"y,omitempty" toml:"y,omitempty"`
	Resizable  *bool  `json:"resizable,omitempty" yaml:"resizable,omitempty" toml:"resizable,omitempty"`
	Fullscreen bool   `json:"fullscreen" yaml:"fullscreen" toml:"fullscreen"`
	Entry      string `json:"entry" yaml:"entry" toml:"entry"`
}

// IsResizable reports whether the window may be resized. Unset means yes.
func (w *Window) IsResizable() bool {
	return w.Resizable == nil || *w.Resizable
}

// Size reports the window dimensions, falling back to the defaults for
// whichever of the two the manifest left unset.
func (w *Window) Size() (width, height int) {
	width, height = DefaultWindowWidth, DefaultWindowHeight
	if w.Width != nil {
		width = *w.Width
	}
	if w.Height != nil {
		height = *w.Height
	}
	return width, height
}

// Package is the packaged application metadata consumed at startup:
// identifier, product info, icon set and window manifest.
type Package struct {
	Identifier  string   `json:"identifier" yaml:"identifier" toml:"identifier" validate:"required"`
	ProductName string   `json:"product_name" yaml:"product_name" toml:"product_name" validate:"required"`
	Version     string   `json:"version" yaml:"version" toml:"version"`
	Description string   `json:"description" yaml:"description" toml:"description"`
	Icons       []string `json:"icons" yaml:"icons" toml:"icons"`
	AssetsDir   string   `json:"assets_dir" yaml:"assets_dir" toml:"assets_dir"`
	Windows     []Window `json:"windows" yaml:"windows" toml:"windows" validate:"min=1,dive"`
}

// identifierPattern matches reverse-DNS identifiers such as "com.example.app".
var identifierPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*(\.[a-zA-Z][a-zA-Z0-9-]*)+$`)

var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadPackage reads and parses a packaged configuration file. The format is
// selected by extension: .json, .yaml/.yml and .toml are accepted.
func LoadPackage(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read packaged configuration %s: %w", path, err)
	}

	var pkg Package
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := sonic.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("malformed packaged configuration %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("malformed packaged configuration %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &pkg); err != nil {
			return nil, fmt.Errorf("malformed packaged configuration %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported packaged configuration format: %s", filepath.Ext(path))
	}

	if err := pkg.Validate(); err != nil {
		return nil, err
	}

	return &pkg, nil
}

// Validate checks the package against the manifest invariants. Validation is
// pure: the same package always produces the same error.
func (p *Package) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid packaged configuration: %w", err)
	}

	if !identifierPattern.MatchString(p.Identifier) {
		return fmt.Errorf("invalid packaged configuration: identifier %q is not reverse-DNS", p.Identifier)
	}

	labels := make(map[string]struct{}, len(p.Windows))
	for i := range p.Windows {
		label := p.Windows[i].Label
		if _, dup := labels[label]; dup {
			return fmt.Errorf("invalid packaged configuration: duplicate window label %q", label)
		}
		labels[label] = struct{}{}
	}

	return nil
}

// MainWindow returns the window labeled "main", or the first window in the
// manifest when no window carries that label.
func (p *Package) MainWindow() *Window {
	if len(p.Windows) == 0 {
		return nil
	}
	for i := range p.Windows {
		if p.Windows[i].Label == "main" {
			return &p.Windows[i]
		}
	}
	return &p.Windows[0]
}
