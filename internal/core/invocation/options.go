package invocation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/artpar/planprobe/internal/core/params"
)

// =============================================================================
// Option Keys
// =============================================================================

const (
	OptChdir            = "chdir"
	OptInput            = "input"
	OptFromModule       = "from_module"
	OptOut              = "out"
	OptState            = "state"
	OptPath             = "path"
	OptJSON             = "json"
	OptNoColor          = "no_color"
	OptBackend          = "backend"
	OptBackendConfig    = "backend_config"
	OptForceCopy        = "force_copy"
	OptGet              = "get"
	OptLock             = "lock"
	OptLockTimeout      = "lock_timeout"
	OptPluginDir        = "plugin_dir"
	OptReconfigure      = "reconfigure"
	OptMigrateState     = "migrate_state"
	OptUpgrade          = "upgrade"
	OptCompactWarnings  = "compact_warnings"
	OptDestroy          = "destroy"
	OptDetailedExitcode = "detailed_exitcode"
	OptParallelism      = "parallelism"
	OptRefresh          = "refresh"
	OptRefreshOnly      = "refresh_only"
	OptReplace          = "replace"
	OptReplaces         = "replaces"
	OptTarget           = "target"
	OptTargets          = "targets"
	OptVarFile          = "var_file"
	OptVarFiles         = "var_files"
)

// =============================================================================
// Argument Builder
// =============================================================================

// builder collects arguments for one command from a parameter set.
type builder struct {
	p    params.Set
	args []string
}

func newBuilder(p params.Set, command string) *builder {
	b := &builder{p: p}
	if dir, ok := params.String(p, OptChdir); ok {
		b.args = append(b.args, "-chdir="+dir)
	}
	b.args = append(b.args, command)
	return b
}

// flag emits -name when the option is true.
func (b *builder) flag(key, name string) {
	if v, ok := b.p[key]; ok && Truthy(v) {
		b.args = append(b.args, "-"+name)
	}
}

// boolean emits -name=true|false whenever the option is set.
func (b *builder) boolean(key, name string) {
	if v, ok := b.p[key]; ok && v != nil {
		b.args = append(b.args, "-"+name+"="+strconv.FormatBool(Truthy(v)))
	}
}

// value emits -name=value whenever the option is set.
func (b *builder) value(key, name string) {
	if v, ok := params.String(b.p, key); ok {
		b.args = append(b.args, "-"+name+"="+v)
	}
}

// repeated emits -name=value for every entry found under the singular and
// plural keys.
func (b *builder) repeated(singular, plural, name string) {
	for _, key := range []string{singular, plural} {
		for _, v := range list(b.p[key]) {
			b.args = append(b.args, "-"+name+"="+v)
		}
	}
}

// pairs emits -name=key=value for every entry of a map option, sorted by key.
func (b *builder) pairs(key, name string) {
	m := params.ToVars(b.p[key])
	for _, k := range sortedKeys(m) {
		b.args = append(b.args, "-"+name+"="+k+"="+render(m[k]))
	}
}

// positional appends the option's value as a bare argument.
func (b *builder) positional(key string) {
	if v, ok := params.String(b.p, key); ok {
		b.args = append(b.args, v)
	}
}

func (b *builder) build() []string {
	return b.args
}

// =============================================================================
// Value Helpers
// =============================================================================

// Truthy reports whether an option value switches a flag on: true, a
// string strconv.ParseBool reads as true, or any other non-nil value.
func Truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(t)
		return err == nil && b
	case nil:
		return false
	}
	return true
}

func list(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}

// render formats a variable value for -var. Strings pass through raw,
// scalars are formatted, and lists or maps are encoded as JSON, which
// terraform accepts as an HCL literal.
func render(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t)
	case nil:
		return "null"
	}
	if m, ok := v.(map[any]any); ok {
		v = params.ToVars(m)
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(encoded)
}

func sortedKeys(m params.Vars) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
