package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/agrovista/mediavault/config"
	"github.com/agrovista/mediavault/media/ingest"
	"github.com/agrovista/mediavault/metrics"
	"github.com/agrovista/mediavault/server/handler/assets"
	"github.com/agrovista/mediavault/server/handler/storageops"
	"github.com/agrovista/mediavault/server/handler/upload"
	"github.com/agrovista/mediavault/server/state"
	"github.com/agrovista/mediavault/server/util"
	"github.com/agrovista/mediavault/storage/asset/factory"
	"github.com/agrovista/mediavault/storage/asset/fsindex"
)

const shutdownTimeout = 5 * time.Second

// NewState builds the server's shared state: the configured asset store and
// an ingestor wired to it.
func NewState(cfg *config.Config) (*state.State, error) {
	store, err := factory.Create(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("initialize asset store: %w", err)
	}

	compressor := ingest.CodecCompressor{Opts: cfg.Media.CodecOptions()}
	ingestor := ingest.New(store, compressor, cfg.Media.Limits())

	return &state.State{
		Cfg:      cfg,
		Store:    store,
		Ingestor: ingestor,
	}, nil
}

// BuildHandler assembles the HTTP routes for the given state.
func BuildHandler(st *state.State) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/upload", upload.HandleUpload(st))
	mux.Handle("GET /api/media", assets.HandleList(st))
	mux.Handle("GET /api/media/{id}", assets.HandleGet(st))
	mux.Handle("DELETE /api/media/{id}", assets.HandleDelete(st))
	mux.Handle("GET /api/storage/stats", storageops.HandleStats(st))
	mux.Handle("POST /api/storage/cleanup", storageops.HandleCleanup(st))
	mux.Handle("GET /metrics", metrics.Handler())

	// Processed files are served directly from the media tree, partitioned by
	// kind, when the directory-backed store is in use.
	if fs, ok := st.Store.(*fsindex.Store); ok {
		mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(fs.BasePath()))))
	}

	return requestLogging(mux)
}

// StartServer runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func StartServer(ctx context.Context, st *state.State) error {
	bindAddress := fmt.Sprintf("%v:%v", st.Cfg.Server.Address, st.Cfg.Server.Port)
	srv := &http.Server{
		Addr:    bindAddress,
		Handler: BuildHandler(st),
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("serving http requests on %q", bindAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Println("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("http server failed: %w", err)
	}
}

// requestLogging attaches a request-scoped logger to the context and records
// each request on completion.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl := util.WithRequest(log.Default(), r)
		r = r.WithContext(util.ContextWithLogger(r.Context(), rl))

		start := time.Now()
		next.ServeHTTP(w, r)
		rl.Infof("completed in %s", time.Since(start))
	})
}
