// Package capacity derives aggregate storage statistics from a snapshot of
// stored assets. Stats are recomputed on demand and never cached.
package capacity

import "github.com/agrovista/mediavault/media"

// Stats describes aggregate storage usage against the configured ceiling.
type Stats struct {
	Used       int64   `json:"used"`
	Available  int64   `json:"available"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// ComputeStats sums the stored sizes of the supplied assets against the total
// ceiling. It is a pure function of its inputs: callers pass the snapshot
// they hold, so concurrent store mutations cannot skew the result mid-sum.
func ComputeStats(assets []media.Asset, total int64) Stats {
	var used int64
	for _, a := range assets {
		used += a.SizeBytes
	}

	available := total - used
	if available < 0 {
		available = 0
	}

	var percentage float64
	if total > 0 {
		percentage = 100 * float64(used) / float64(total)
		if percentage > 100 {
			percentage = 100
		}
	}

	return Stats{
		Used:       used,
		Available:  available,
		Total:      total,
		Percentage: percentage,
	}
}
