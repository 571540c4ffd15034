package config

import "time"

// RuntimeConfig bundles every env-resolvable knob the orchestrator and
// diagnostics surface consume, built once at startup via FromEnv.
type RuntimeConfig struct {
	AssetsRoot       string
	ModsRoot         string
	MainModule       string
	BuiltinPrefix    string
	ReloadCooldown   time.Duration
	LogLevel         string
	LogFormat        string
	MetricsNamespace string

	DiagnosticsEnabled bool
	DiagnosticsAddr    string
	DiagnosticsToken   string

	ModuleCacheRedisAddr string
}

// FromEnv builds a RuntimeConfig from environment variables, applying the
// defaults spec.md names explicitly (assets root "./assets", namespace
// root "Mods", builtin prefix "@builtin/", reload cooldown 0.25s).
func FromEnv() RuntimeConfig {
	return RuntimeConfig{
		AssetsRoot:           ResolveString("", "KALITECH_ASSETS_ROOT", "./assets"),
		ModsRoot:             ResolveString("", "KALITECH_MODS_ROOT", "Mods"),
		MainModule:           ResolveString("", "KALITECH_MAIN_MODULE", "Scripts/main.js"),
		BuiltinPrefix:        ResolveString("", "KALITECH_BUILTIN_PREFIX", "@builtin/"),
		ReloadCooldown:       ResolveDuration(0, "KALITECH_RELOAD_COOLDOWN", 250*time.Millisecond),
		LogLevel:             ResolveString("", "KALITECH_LOG_LEVEL", "info"),
		LogFormat:            ResolveString("", "KALITECH_LOG_FORMAT", "text"),
		MetricsNamespace:     ResolveString("", "KALITECH_METRICS_NAMESPACE", "kalitech"),
		DiagnosticsEnabled:   ResolveBool(true, "KALITECH_DIAGNOSTICS_ENABLED"),
		DiagnosticsAddr:      ResolveString("", "KALITECH_DIAGNOSTICS_ADDR", "127.0.0.1:8970"),
		DiagnosticsToken:     ResolveString("", "KALITECH_DIAGNOSTICS_TOKEN", ""),
		ModuleCacheRedisAddr: ResolveString("", "KALITECH_MODULE_CACHE_REDIS_ADDR", ""),
	}
}
