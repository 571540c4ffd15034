// Command kalitech runs the scripting/world-orchestration runtime as a
// standalone process: it wires the module registry, hot-reload watcher,
// host API facade, and orchestrator into a fixed-rate frame loop,
// grounded on the teacher's appserver entrypoint (flag parsing, signal
// handling, graceful shutdown) generalized from an HTTP accept loop to
// a ticker-driven frame loop in the style of the pack's own game-loop
// examples.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CalistaVerner/kalitech/internal/builtins"
	"github.com/CalistaVerner/kalitech/internal/cache"
	"github.com/CalistaVerner/kalitech/internal/config"
	"github.com/CalistaVerner/kalitech/internal/diagnostics"
	"github.com/CalistaVerner/kalitech/internal/ecs"
	"github.com/CalistaVerner/kalitech/internal/eventbus"
	"github.com/CalistaVerner/kalitech/internal/hostapi"
	"github.com/CalistaVerner/kalitech/internal/hotreload"
	"github.com/CalistaVerner/kalitech/internal/input"
	"github.com/CalistaVerner/kalitech/internal/kalitech"
	"github.com/CalistaVerner/kalitech/internal/logging"
	"github.com/CalistaVerner/kalitech/internal/metrics"
	"github.com/CalistaVerner/kalitech/internal/module"
	"github.com/CalistaVerner/kalitech/internal/orchestrator"
	"github.com/CalistaVerner/kalitech/internal/scripting"
	"github.com/CalistaVerner/kalitech/internal/surface"
	"github.com/CalistaVerner/kalitech/internal/worldbuild"
)

const frameInterval = 16 * time.Millisecond // ~60Hz

func main() {
	assetsRoot := flag.String("assets", "", "assets root (overrides KALITECH_ASSETS_ROOT)")
	mainModule := flag.String("main", "", "main descriptor module (overrides KALITECH_MAIN_MODULE)")
	flag.Parse()

	cfg := config.FromEnv()
	if *assetsRoot != "" {
		cfg.AssetsRoot = *assetsRoot
	}
	if *mainModule != "" {
		cfg.MainModule = *mainModule
	}

	log := logging.New(kalitech.Name, cfg.LogLevel, cfg.LogFormat)
	log.WithField("version", kalitech.Version).Info("starting")

	metricsReg := metrics.New(cfg.MetricsNamespace)

	sourceCache := resolveSourceCache(cfg)

	builtinProvider := scripting.NewBuiltinProvider()
	fsProvider := scripting.NewFSProvider(cfg.AssetsRoot)
	provider := scripting.NewCompositeProvider(cfg.BuiltinPrefix, builtinProvider, fsProvider)

	builtinRegistry := builtins.NewRegistry(log)
	builtinRegistry.RegisterInto(builtinProvider)

	chain := module.DefaultChain(cfg.BuiltinPrefix, cfg.ModsRoot, module.NewAliasResolver(), "Scripts")
	registry := scripting.New(scripting.Options{
		Provider: provider,
		Chain:    chain,
		Cache:    sourceCache,
		Logger:   log,
		Metrics:  metricsReg,
	})

	watcher, err := hotreload.New(cfg.AssetsRoot, log)
	if err != nil {
		log.WithError(err).Fatal("failed to start hot-reload watcher")
	}
	defer watcher.Close()

	entities := ecs.NewStore(ecs.NewEntityManager())
	events := eventbus.New()
	surfaces := surface.New()
	inputAgg := input.New()

	engine := hostapi.New(hostapi.Deps{
		Log:      log,
		Events:   events,
		Entities: entities,
		Surfaces: surfaces,
		Input:    inputAgg,
	}, nil)

	if err := builtins.Bootstrap(registry.Runtime(), engine, builtinRegistry, log, true); err != nil {
		log.WithError(err).Fatal("failed to bootstrap builtins")
	}

	providers := worldbuild.NewProviderRegistry()
	providers.Register(worldbuild.JSSystemProviderID, worldbuild.NewJSSystemProvider(registry, log))
	prefabs := worldbuild.NewPrefabRegistry()

	orch := orchestrator.New(orchestrator.Options{
		Registry:          registry,
		Watcher:           watcher,
		Engine:            engine,
		Entities:          entities,
		Events:            events,
		Providers:         providers,
		Prefabs:           prefabs,
		Log:               log,
		Metrics:           metricsReg,
		MainDescriptorID:  module.Normalize(cfg.MainModule),
		ReloadCooldownSec: cfg.ReloadCooldown.Seconds(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var diagServer *diagnostics.Server
	if cfg.DiagnosticsEnabled {
		diagServer = diagnostics.New(diagnostics.Options{
			Addr:    cfg.DiagnosticsAddr,
			Token:   cfg.DiagnosticsToken,
			Log:     log,
			Events:  events,
			World:   diagnostics.OrchestratorWorld{Orchestrator: orch},
			Modules: diagnostics.RegistryModules{Registry: registry},
		})
		go func() {
			if err := diagServer.ListenAndServe(ctx); err != nil {
				log.WithError(err).Error("diagnostics server stopped")
			}
		}()
		log.WithField("addr", cfg.DiagnosticsAddr).Info("diagnostics listening")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	log.Info("frame loop started")
	lastFrame := time.Now()
runLoop:
	for {
		select {
		case <-sigCh:
			log.Info("shutdown signal received")
			break runLoop
		case now := <-ticker.C:
			tpf := now.Sub(lastFrame).Seconds()
			lastFrame = now
			orch.Update(ctx, tpf)
			if metricsReg != nil {
				metricsReg.FrameCount.Inc()
				metricsReg.FrameDuration.Observe(time.Since(now).Seconds())
			}
		}
	}

	cancel()
	log.Info("stopped")
}

func resolveSourceCache(cfg config.RuntimeConfig) cache.SourceCache {
	if cfg.ModuleCacheRedisAddr != "" {
		return cache.NewRedisCache(cfg.ModuleCacheRedisAddr, "kalitech:module:", 5*time.Minute)
	}
	return cache.New(cache.DefaultConfig())
}
