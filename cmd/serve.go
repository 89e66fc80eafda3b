package main

import (
	"context"

	"github.com/dekho-agent/device-bridge/internal/bridge"
	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/dekho-agent/device-bridge/internal/hotreload"
	"github.com/dekho-agent/device-bridge/internal/identity"
	"github.com/dekho-agent/device-bridge/internal/scheduler"
	"github.com/dekho-agent/device-bridge/internal/server"
	servertls "github.com/dekho-agent/device-bridge/internal/tls"
	"github.com/dekho-agent/device-bridge/internal/utils"
	"github.com/dekho-agent/device-bridge/internal/watcher"
	"github.com/dekho-agent/device-bridge/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the device id channel over HTTP and websocket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	ctx, cancel := utils.SetupContext(ctx)
	defer cancel()
	wg, ctx := errgroup.WithContext(ctx)

	cm, warnings, err := utils.InitConfig(configPath)
	if err != nil {
		return err
	}

	ctx, log := utils.InitLogger(ctx, cm, warnings)

	closeAudit, err := utils.InitAuditLog(cm)
	if err != nil {
		log.Error().Err(err).Msg("Error setting up audit log")
		return err
	}
	defer func() {
		if err := closeAudit(); err != nil {
			log.Warn().Err(err).Msg("Error closing audit log")
		}
	}()

	reader, err := identity.New(cm.GetIdentityConfig())
	if err != nil {
		log.Error().Err(err).Str("source", cm.GetIdentitySource()).Msg("Error creating identity reader")
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := bridge.NewMetrics(reg)
	plugin := bridge.NewDeviceIDPlugin(reader, log, metrics)

	messenger := channel.NewMessenger(nil)
	messenger.Register(bridge.NewDeviceIDChannel(cm.GetChannelName(), plugin))

	probe := scheduler.NewIdentityProbe(plugin.Reader)
	probeScheduler, err := scheduler.NewScheduler(cm.GetHealthProbeInterval(), probe, log)
	if err != nil {
		log.Error().Err(err).Msg("Error creating identity probe scheduler")
		return err
	}

	app := setupServerApp(cm, log, reg, messenger, metrics, probe)
	if tlsCfg := cm.GetTLSConfig(); tlsCfg.Enabled() {
		serverTLS, err := servertls.LoadServerTLSConfig(tlsCfg)
		if err != nil {
			log.Error().Err(err).Msg("Error loading server TLS config")
			return err
		}
		app.SetTLSConfig(serverTLS)
	}
	app.SetupRoutes()
	app.SetupServer(ctx, wg)

	wg.Go(func() error {
		return probeScheduler.Run(ctx)
	})

	events := make(chan struct{}, 1)
	hotReloadManager := hotreload.NewHotReloadManager(ctx, cm, log, plugin, probeScheduler)
	wg.Go(func() error {
		return watcher.WatchChanges(ctx, log, cm.ConfigPath(), events)
	})
	wg.Go(func() error {
		return hotReloadManager.Run(ctx, events)
	})

	log.Info().
		Str("channel", cm.GetChannelName()).
		Str("source", reader.Source()).
		Str("addr", cm.GetListenAddr()).
		Msg("Startup complete 🚀")

	return wg.Wait()
}

func setupServerApp(
	cm *config.ConfigManager,
	log *zerolog.Logger,
	reg *prometheus.Registry,
	messenger *channel.Messenger,
	metrics *bridge.Metrics,
	probe *scheduler.IdentityProbe,
) *server.App {
	router := server.NewDefaultRouter(cm.GetAPIPrefix())
	router.Use(server.RequestIDMiddleware, server.LoggingMiddleware(log))

	return server.NewApp(
		cm.GetListenAddr(),
		router,
		log,
		server.NewChannelRegistrar(messenger, metrics, log),
		server.NewWebSocketRegistrar(messenger, metrics, log),
		server.NewHealthRegistrar(probe.Status),
		&server.MetricsRegistrar{Gatherer: reg},
		&server.DebugRegistrar{},
	)
}
