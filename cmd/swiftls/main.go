// Package main is the entry point for the swiftls language server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/swiftls-project/swiftls/internal/bridge"
	"github.com/swiftls-project/swiftls/internal/config"
	"github.com/swiftls-project/swiftls/internal/dispatcher"
	"github.com/swiftls-project/swiftls/internal/server"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "swiftls: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("swiftls", flag.ContinueOnError)

	var (
		configFile = fs.String("config", "", "path to a TOML configuration file")
		showVer    = fs.Bool("version", false, "print version and exit")
	)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swiftls [options]\n\nSwift language server, backed by a WASM-hosted native analyzer.\n\nOptions:\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}
	if *showVer {
		fmt.Printf("swiftls %s\n", version)
		return nil
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	configureLogging(cfg.Log)
	log := commonlog.GetLogger("swiftls")
	log.Infof("starting swiftls %s", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tables := bridge.NewTables()
	conn, err := bridgeConnection(ctx, cfg.Bridge, tables)
	if err != nil {
		return fmt.Errorf("load native analyzer: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warningf("closing native analyzer: %s", err)
		}
	}()

	b := bridge.New(conn, tables)
	stopPoll := pollNotifications(ctx, log, conn)
	defer stopPoll()

	dispatch := dispatcher.New(log)
	go dispatch.Run(ctx)

	srv := server.New(log, b, server.NoBuildSettings{}, dispatch)
	transport := server.NewTransport(log, cfg.Transport.Debug, srv, dispatch)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	switch cfg.Transport.Kind {
	case "websocket":
		go func() { errCh <- serveWebSocket(cfg.Transport.Address, transport) }()
		log.Infof("listening for websocket connections on %s", cfg.Transport.Address)
	case "stdio", "":
		go func() { errCh <- serveStdio(transport) }()
		log.Infof("running on stdio")
	default:
		return fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}

	select {
	case err := <-errCh:
		if err != nil && !isCleanShutdown(err) {
			return fmt.Errorf("serve: %w", err)
		}
		log.Infof("server shutdown complete")
		return nil
	case sig := <-sigCh:
		log.Infof("received signal %s, shutting down", sig)
		cancel()
		return nil
	}
}

func bridgeConnection(ctx context.Context, cfg config.BridgeConfig, tables *bridge.Tables) (*bridge.WASMConnection, error) {
	return bridge.NewWASMConnection(ctx, cfg.WASMPath, cfg.WASMChecksum, tables)
}

// pollNotifications runs PollNotification on a dedicated goroutine, the
// production host loop the method's own doc comment calls for, until ctx is
// cancelled.
func pollNotifications(ctx context.Context, log commonlog.Logger, conn *bridge.WASMConnection) func() {
	const pollInterval = 50 * time.Millisecond
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.PollNotification(ctx); err != nil {
					log.Warningf("poll notification: %s", err)
				}
			}
		}
	}()
	return func() { <-done }
}

func serveStdio(transport *server.Transport) error {
	transport.ServeStream(stdioReadWriteCloser{})
	return nil
}

func serveWebSocket(address string, transport *server.Transport) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if err := transport.ServeWebSocket(w, r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	})
	return http.ListenAndServe(address, mux)
}

// stdioReadWriteCloser wraps stdin/stdout as an io.ReadWriteCloser for the
// stream transport.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return os.Stdin.Close() }

// isCleanShutdown reports whether err represents an ordinary client
// disconnect rather than a real transport failure.
func isCleanShutdown(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed)
}

// configureLogging registers the logging verbosity and destination with
// commonlog, the glsp ecosystem's shared logging façade. verbosity follows
// commonlog's own convention of an increasing integer; higher values emit
// more detail.
func configureLogging(cfg config.LogConfig) {
	var path *string
	if cfg.Path != "" {
		p := cfg.Path
		path = &p
	}
	commonlog.Configure(logVerbosity(cfg.Level), path)
}

func logVerbosity(level string) int {
	switch level {
	case "none":
		return 0
	case "critical":
		return 1
	case "error":
		return 2
	case "warning":
		return 3
	case "notice":
		return 4
	case "info":
		return 5
	case "debug":
		return 6
	default:
		return 5
	}
}
