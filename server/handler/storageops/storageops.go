package storageops

import (
	"net/http"

	"github.com/agrovista/mediavault/media/capacity"
	"github.com/agrovista/mediavault/media/eviction"
	"github.com/agrovista/mediavault/metrics"
	"github.com/agrovista/mediavault/server/handler/common"
	"github.com/agrovista/mediavault/server/resp"
	"github.com/agrovista/mediavault/server/state"
)

// StatsResponse reports aggregate storage usage.
type StatsResponse struct {
	Used       int64   `json:"used"`
	Available  int64   `json:"available"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	FileCount  int     `json:"fileCount"`
}

// CleanupResponse reports how many assets a cleanup pass removed.
type CleanupResponse struct {
	Removed int `json:"removed"`
}

// HandleStats recomputes storage statistics from the live asset set.
func HandleStats(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := st.Store.GetAll(r.Context())
		if err != nil {
			common.LogAndWriteError(w, r, "storage stats", err)
			return
		}

		stats := capacity.ComputeStats(assets, st.Cfg.Media.TotalCeiling.Int64())

		metrics.StoredBytes.Set(float64(stats.Used))
		metrics.StoredAssets.Set(float64(len(assets)))

		resp.WriteOK(w, StatsResponse{
			Used:       stats.Used,
			Available:  stats.Available,
			Total:      stats.Total,
			Percentage: stats.Percentage,
			FileCount:  len(assets),
		})
	}
}

// HandleCleanup runs one LRU cleanup pass over the store.
func HandleCleanup(st *state.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := eviction.Cleanup(r.Context(), st.Store)
		if err != nil {
			common.LogAndWriteError(w, r, "storage cleanup", err)
			return
		}

		metrics.EvictionsTotal.Add(float64(len(removed)))

		resp.WriteOK(w, CleanupResponse{Removed: len(removed)})
	}
}
