package segment

import "sort"

// DefaultAccent is used for cluster ids outside the palette.
const DefaultAccent = "#667eea"

// Status badge colours.
const (
	StatusLoadedColor    = "#10b981"
	StatusNotLoadedColor = "#ef4444"
)

var accents = map[int]string{
	0: "#8b5cf6", // Average Customer
	1: "#ef4444", // VIP / Whale
	2: "#f59e0b", // Young Trendsetter
	3: "#10b981", // High Earner Saver
	4: "#3b82f6", // Budget Conscious
}

var names = map[int]string{
	0: "Average Customer",
	1: "VIP / Whale",
	2: "Young Trendsetter",
	3: "High Earner Saver",
	4: "Budget Conscious",
}

// AccentColor returns the fixed accent colour for a cluster id.
func AccentColor(clusterID int) string {
	if c, ok := accents[clusterID]; ok {
		return c
	}
	return DefaultAccent
}

// KnownName returns the canonical segment name for a cluster id.
func KnownName(clusterID int) (string, bool) {
	n, ok := names[clusterID]
	return n, ok
}

// SortedIDs returns the ids of a ClusterInfo in ascending order.
func (ci ClusterInfo) SortedIDs() []int {
	ids := make([]int, 0, len(ci))
	for id := range ci {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
