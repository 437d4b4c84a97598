package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"

	"github.com/Doridian/synthDNS/handler"
	"github.com/Doridian/synthDNS/handler/generator"
	"github.com/Doridian/synthDNS/server"
	"github.com/Doridian/synthDNS/util"
	"github.com/Doridian/synthDNS/zone"
	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type app struct {
	configFile string
	flags      FlagOverrides
	log        *zap.Logger
	counter    *util.RequestCounter
	srv        *server.Server

	lock    sync.Mutex
	config  *Config
	handler *handler.Handler
}

func buildHandler(cfg *Config, counter *util.RequestCounter, log *zap.Logger) (*handler.Handler, error) {
	zones, err := zone.New(cfg.Domain)
	if err != nil {
		return nil, err
	}

	gens, err := generator.New(zones, generator.Config{
		CidrCacheSize: cfg.CidrCacheSize,
		Log:           log,
	})
	if err != nil {
		return nil, err
	}

	hdl, err := handler.New(zones, counter, gens, log)
	if err != nil {
		return nil, err
	}
	hdl.UDPSize = uint16(cfg.UDPSize)
	return hdl, nil
}

// activate starts hdl and makes it the handler for all following queries.
func (a *app) activate(cfg *Config, hdl *handler.Handler) error {
	err := hdl.Start()
	if err != nil {
		return err
	}

	a.lock.Lock()
	oldHandler := a.handler
	a.config = cfg
	a.handler = hdl
	a.lock.Unlock()

	if a.srv != nil {
		a.srv.SetHandler(hdl)
	}

	if oldHandler != nil {
		return oldHandler.Stop()
	}
	return nil
}

func (a *app) reload() error {
	cfg, err := LoadConfig(a.configFile, a.flags)
	if err != nil {
		return err
	}

	hdl, err := buildHandler(cfg, a.counter, a.log)
	if err != nil {
		return err
	}

	a.lock.Lock()
	oldConfig := a.config
	a.lock.Unlock()

	if oldConfig != nil && (!slices.Equal(oldConfig.UDP, cfg.UDP) ||
		!slices.Equal(oldConfig.TCP, cfg.TCP) ||
		oldConfig.TCPTimeout != cfg.TCPTimeout ||
		oldConfig.PrometheusListen != cfg.PrometheusListen) {
		a.log.Warn("Listener changes require a restart")
	}

	err = a.activate(cfg, hdl)
	if err != nil {
		return err
	}

	a.log.Info("Configuration reloaded", zap.String("domain", cfg.Domain))
	return nil
}

func (a *app) refresh() error {
	a.lock.Lock()
	hdl := a.handler
	a.lock.Unlock()

	if hdl == nil {
		return nil
	}
	return hdl.Refresh()
}

func (a *app) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	err = watcher.Add(a.configFile)
	if err != nil {
		_ = watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					a.log.Info("Reloading configuration", zap.String("file", event.Name))
					err := a.reload()
					if err != nil {
						a.log.Error("Error reloading configuration, keeping the previous one", zap.Error(err))
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.log.Error("fsnotify error", zap.Error(err))
			}
		}
	}()

	return nil
}

func servePrometheus(listen string, counter *util.RequestCounter, log *zap.Logger) *http.Server {
	prometheus.MustRegister(handler.NewCounterCollector(counter))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: util.DefaultTimeout,
	}

	go func() {
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Error running Prometheus listener", zap.Error(err))
		}
	}()

	log.Info("Prometheus listener enabled", zap.String("addr", listen))
	return httpServer
}

func run(cmd *cobra.Command, configFile string, flags FlagOverrides) error {
	cfg, err := LoadConfig(configFile, flags)
	if err != nil {
		return err
	}

	log, err := util.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting synthDNS",
		zap.String("version", util.Version),
		zap.String("domain", cfg.Domain),
		zap.Strings("udp", cfg.UDP),
		zap.Strings("tcp", cfg.TCP),
	)

	a := &app{
		configFile: configFile,
		flags:      flags,
		log:        log,
		counter:    util.NewRequestCounter(),
	}

	hdl, err := buildHandler(cfg, a.counter, log)
	if err != nil {
		return err
	}
	err = a.activate(cfg, hdl)
	if err != nil {
		return err
	}

	a.srv = server.NewServer(hdl, log)
	a.srv.UDP = cfg.UDP
	a.srv.TCP = cfg.TCP
	a.srv.TCPTimeout = cfg.TCPTimeout

	if cfg.PrometheusListen != "" {
		httpServer := servePrometheus(cfg.PrometheusListen, a.counter, log)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), util.DefaultTimeout)
			defer cancel()
			_ = httpServer.Shutdown(ctx)
		}()
	}

	err = a.srv.Listen()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handleRefresh(ctx, a)

	if cfg.WatchConfig {
		if configFile == "" {
			log.Warn("watch-config is set but no config file was given")
		} else {
			err = a.watchConfig(ctx)
			if err != nil {
				return err
			}
		}
	}

	err = a.srv.Serve(ctx)

	a.lock.Lock()
	hdl = a.handler
	a.lock.Unlock()
	stopErr := hdl.Stop()

	log.Info("Shut down", zap.Uint64("requests", a.counter.Load()))
	return errors.Join(err, stopErr)
}

func newRootCommand() *cobra.Command {
	var configFile string
	var domain string
	var udp, tcp []string

	cmd := &cobra.Command{
		Use:           "synthDNS",
		Short:         "Authoritative DNS server answering with synthesized records",
		Version:       util.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var flags FlagOverrides
			if cmd.Flags().Changed("domain") {
				flags.Domain = &domain
			}
			if cmd.Flags().Changed("udp") {
				flags.UDP = &udp
			}
			if cmd.Flags().Changed("tcp") {
				flags.TCP = &tcp
			}
			return run(cmd, configFile, flags)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&domain, "domain", "d", "", "root domain to answer for")
	cmd.Flags().StringSliceVarP(&udp, "udp", "u", nil, "UDP listen addresses (ip:port)")
	cmd.Flags().StringSliceVarP(&tcp, "tcp", "t", nil, "TCP listen addresses (ip:port)")

	return cmd
}

func main() {
	cmd := newRootCommand()
	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

