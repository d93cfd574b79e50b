package plan

import (
	"strings"

	"github.com/google/uuid"

	"github.com/artpar/planprobe/internal/core/params"
)

// =============================================================================
// Plan File Naming
// =============================================================================

const (
	// FileSuffix is appended to every generated plan file name.
	FileSuffix = ".tfplan"
	// TokenLength is the number of hex characters in a generated name.
	TokenLength = 8
)

// GenerateFileName returns a random plan file name such as "3f9c0a1b.tfplan".
// The token comes from the random bits of a version 4 UUID.
func GenerateFileName() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token[:TokenLength] + FileSuffix
}

// FileName returns the caller supplied plan_file_name, or a generated one.
func FileName(p params.Set) string {
	if name, ok := params.String(p, params.KeyPlanFileName); ok && name != "" {
		return name
	}
	return GenerateFileName()
}
