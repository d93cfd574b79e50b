package provider

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/artpar/planprobe/internal/core/params"
)

// NewProvider creates a configuration provider by kind.
// "identity" (or empty) passes overrides through; "file" reads path.
func NewProvider(kind, path string, fs afero.Fs, logger *slog.Logger) (params.Provider, error) {
	switch kind {
	case "", "identity":
		return params.IdentityProvider{}, nil

	case "file":
		return NewFileProvider(path, fs, logger), nil

	default:
		return nil, fmt.Errorf("unsupported provider type: %s", kind)
	}
}
