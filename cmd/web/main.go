// cmd/web/main.go
//
// hostview – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load config (defaults → conf/.env → conf/global.yaml → HOSTVIEW_ env).
//
//  2. Start daily rotating logger (tees to console when running in a TTY
//     or when log.tee is set).
//
//  3. Open the optional GeoLite2 database for request info.
//
//  4. Build the view engine over the embedded tree or views.dir, with the
//     host expander installed.
//
//  5. Build the root handler (request info → HTTPS → security headers →
//     domain annotation → pages) and serve until SIGINT/SIGTERM.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yanizio/hostview/internal/config"
	"github.com/yanizio/hostview/internal/logger"
	"github.com/yanizio/hostview/internal/requestinfo"
	"github.com/yanizio/hostview/internal/server"
	"github.com/yanizio/hostview/internal/view"
	"github.com/yanizio/hostview/web"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, cfg.Log.Level, cfg.Log.Tee || runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Request info (GeoLite2 is optional) ────────────────────────
	//
	if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
		logOut.Fatalw("geo init failed", "err", err)
	}
	defer func() { _ = requestinfo.CloseGeo() }()

	//
	// ── 2.  View engine ─────────────────────────────────────────────────
	//
	var views fs.FS = web.FS
	if cfg.Views.Dir != "" {
		views = os.DirFS(cfg.Views.Dir)
	}
	cacheSize := cfg.Views.CacheSize
	if !cfg.Views.Cache {
		cacheSize = 0
	}
	engine := view.New(view.Options{
		FS:        views,
		Expander:  view.HostExpander{},
		Layout:    cfg.Views.Layout,
		CacheSize: cacheSize,
	})
	logOut.Infow("view engine ready",
		"dir", cfg.Views.Dir,
		"layout", cfg.Views.Layout,
		"cache_size", cacheSize,
	)

	//
	// ── 3.  Serve until signalled ──────────────────────────────────────
	//
	handler := server.Router(server.Options{
		ForceHTTPS: cfg.HTTP.ForceHTTPS,
		Log:        logOut.Desugar(),
		Views:      engine,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, handler), cfg.HTTP.ShutdownTimeout); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
	logOut.Info("bye")
}
