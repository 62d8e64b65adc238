package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/agrovista/mediavault/config"
	"github.com/agrovista/mediavault/server"
	"github.com/agrovista/mediavault/storage/asset/badgerstore"
)

func main() {
	log.SetPrefix("mediavault: ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile | log.Lmsgprefix)

	configFile := flag.String("config", "config.yml", "Path to the configuration file (i.e., /etc/mediavault.yaml)")
	legacyFile := flag.String("import-legacy", "", "Import a legacy flat-JSON asset blob into the configured badger store, then exit")
	flag.Parse()

	if len(strings.Trim(*configFile, " ")) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.Println("loading configuration...")
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		os.Exit(1)
	}

	if *legacyFile != "" {
		runLegacyImport(cfg, *legacyFile)
		return
	}

	st, err := server.NewState(cfg)
	if err != nil {
		log.Printf("failed to initialize server: %v", err)
		os.Exit(1)
	}
	defer st.Store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("starting http server...")
	if err := server.StartServer(ctx, st); err != nil {
		log.Printf("server error: %v", err)
		os.Exit(1)
	}
}

// runLegacyImport performs the one-time migration of the flat serialization
// format into the embedded per-record database. The source blob is discarded
// after a successful import.
func runLegacyImport(cfg *config.Config, path string) {
	if cfg.Storage.Strategy != "badger" || cfg.Storage.Badger == nil {
		log.Println("legacy import requires the badger storage strategy")
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		log.Printf("failed to open legacy blob: %v", err)
		os.Exit(1)
	}

	store, err := badgerstore.Open(cfg.Storage.Badger.Path)
	if err != nil {
		log.Printf("failed to open badger store: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	n, err := store.ImportLegacy(context.Background(), f)
	if err != nil {
		log.Printf("legacy import failed after %d records: %v", n, err)
		os.Exit(1)
	}

	f.Close()
	if err := os.Remove(path); err != nil {
		log.Printf("imported %d records, but could not remove legacy blob: %v", n, err)
		return
	}

	log.Printf("imported %d legacy records", n)
}
