// cmd/jsontpl/main.go
//
// jsontpl – JSON template resolver entry point.
//
// Invocation life-cycle
// ---------------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load typed config (koanf: .env → conf/jsontpl.yaml → JSONTPL_*).
//
//  4. Build the memoizing resolver service; restore a cache snapshot from
//     the snapshot DB when one is configured.
//
//  5. File arguments → resolve each template, print the output contract as
//     JSON to stdout, exit 1 when any document failed.
//
//  6. No arguments + http.listen_addr set → serve mode (/validate,
//     /cache/stats, /metrics, /healthz).
//
// Flag parsing stays deliberately thin; richer CLI surfaces (colored
// diagnostics, clickable links) belong to external callers of the output
// contract.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yanizio/jsontpl/internal/cache"
	"github.com/yanizio/jsontpl/internal/config"
	"github.com/yanizio/jsontpl/internal/database"
	"github.com/yanizio/jsontpl/internal/logger"
	"github.com/yanizio/jsontpl/internal/server"
	"github.com/yanizio/jsontpl/internal/service"
	"github.com/yanizio/jsontpl/internal/template"
	"github.com/yanizio/jsontpl/internal/value"
)

const (
	serverEnvPath = "/usr/local/etc/jsontpl/global.env"
	snapshotName  = "jsontpl-results"
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stderr is a character device.
func runningInTTY() bool {
	fi, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 1.  Resolver service ────────────────────────────────────────────
	//
	svc := service.New(template.Options{
		MaxImportDepth: cfg.Template.MaxImportDepth,
		BasePath:       cfg.Template.BasePath,
	}, cfg.Cache.MaxEntries, cfg.Cache.DefaultTTL, logOut)

	//
	// ── 2.  Optional cache snapshot restore ─────────────────────────────
	//
	var snapshots *cache.SnapshotStore
	if dsn := cfg.Cache.SnapshotDSN; dsn != "" {
		db, err := database.Open(dsn)
		if err != nil {
			logOut.Fatalf("connect snapshot DB: %v", err)
		}
		defer db.Close()
		snapshots = cache.NewSnapshotStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		body, err := snapshots.Load(ctx, snapshotName)
		cancel()
		switch {
		case err == nil:
			n, err := svc.RestoreJSON(body)
			if err != nil {
				logOut.Warnw("snapshot restore failed", "err", err)
			} else {
				logOut.Infow("cache snapshot restored", "entries", n)
			}
		case err != cache.ErrNoSnapshot:
			logOut.Warnw("snapshot load failed", "err", err)
		}
	}

	//
	// ── 3.  File arguments: resolve, print, exit ────────────────────────
	//
	if args := os.Args[1:]; len(args) > 0 {
		failed := false
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		for _, path := range args {
			res, err := svc.ParseFile(path)
			if err != nil {
				logOut.Errorw("resolve failed", "path", path, "err", err)
				failed = true
				continue
			}
			printResult(enc, path, res)
			if !res.OK() {
				failed = true
			}
		}

		saveSnapshot(snapshots, svc, logOut)
		if failed {
			os.Exit(1)
		}
		return
	}

	//
	// ── 4.  Serve mode ──────────────────────────────────────────────────
	//
	if cfg.HTTP.ListenAddr == "" {
		logOut.Fatal("nothing to do: pass template paths or set http.listen_addr")
	}
	srv := server.New(cfg.HTTP.ListenAddr, server.Routes(svc))
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
}

// output is the stdout shape for one resolved template.
type output struct {
	Path          string                  `json:"path"`
	Valid         bool                    `json:"valid"`
	ExtractedJSON string                  `json:"extractedJson,omitempty"`
	Imports       []template.ImportInfo   `json:"imports"`
	Errors        []template.ParseError   `json:"errors"`
	Warnings      []template.ParseWarning `json:"warnings"`
	Stats         template.Stats          `json:"stats"`
}

func printResult(enc *json.Encoder, path string, res *template.Result) {
	out := output{
		Path:     path,
		Valid:    res.OK(),
		Imports:  res.Imports,
		Errors:   res.Errors,
		Warnings: res.Warnings,
		Stats:    res.Stats,
	}
	if res.ExtractedJSON != nil {
		out.ExtractedJSON = value.Encode(*res.ExtractedJSON)
	}
	_ = enc.Encode(out)
}

// saveSnapshot persists the result cache when a snapshot store is wired.
func saveSnapshot(snapshots *cache.SnapshotStore, svc *service.Service, logOut *zap.SugaredLogger) {
	if snapshots == nil {
		return
	}
	body, err := svc.SnapshotJSON()
	if err != nil {
		logOut.Warnw("snapshot encode failed", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := snapshots.Save(ctx, snapshotName, body); err != nil {
		logOut.Warnw("snapshot save failed", "err", err)
		return
	}
	logOut.Infow("cache snapshot saved")
}
