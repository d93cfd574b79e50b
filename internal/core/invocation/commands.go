package invocation

import "github.com/artpar/planprobe/internal/core/params"

// Init builds the arguments for terraform init.
func Init(p params.Set) []string {
	b := newBuilder(p, "init")
	b.boolean(OptBackend, "backend")
	b.pairs(OptBackendConfig, "backend-config")
	b.flag(OptForceCopy, "force-copy")
	b.value(OptFromModule, "from-module")
	b.boolean(OptGet, "get")
	b.boolean(OptInput, "input")
	b.boolean(OptLock, "lock")
	b.value(OptLockTimeout, "lock-timeout")
	b.flag(OptNoColor, "no-color")
	b.value(OptPluginDir, "plugin-dir")
	b.flag(OptReconfigure, "reconfigure")
	b.flag(OptMigrateState, "migrate-state")
	b.flag(OptUpgrade, "upgrade")
	return b.build()
}

// Plan builds the arguments for terraform plan.
func Plan(p params.Set) []string {
	b := newBuilder(p, "plan")
	b.flag(OptCompactWarnings, "compact-warnings")
	b.flag(OptDestroy, "destroy")
	b.flag(OptDetailedExitcode, "detailed-exitcode")
	b.boolean(OptInput, "input")
	b.boolean(OptLock, "lock")
	b.value(OptLockTimeout, "lock-timeout")
	b.flag(OptNoColor, "no-color")
	b.value(OptOut, "out")
	b.value(OptParallelism, "parallelism")
	b.boolean(OptRefresh, "refresh")
	b.flag(OptRefreshOnly, "refresh-only")
	b.repeated(OptReplace, OptReplaces, "replace")
	b.value(OptState, "state")
	b.repeated(OptTarget, OptTargets, "target")
	b.pairs(params.KeyVars, "var")
	b.repeated(OptVarFile, OptVarFiles, "var-file")
	return b.build()
}

// Show builds the arguments for terraform show. The plan file goes last as a
// positional argument.
func Show(p params.Set) []string {
	b := newBuilder(p, "show")
	b.flag(OptJSON, "json")
	b.flag(OptNoColor, "no-color")
	b.positional(OptPath)
	return b.build()
}
