package domain

import (
	"maps"
	"slices"
	"sort"
)

// DashboardStats is the admin dashboard summary from GET /admin/dashboard.
type DashboardStats struct {
	TotalUsers   int          `json:"totalUsers"`
	TotalStores  int          `json:"totalStores"`
	TotalRatings int          `json:"totalRatings"`
	UsersByRole  map[Role]int `json:"usersByRole"`
	TopStores    []TopStore   `json:"topStores"`
}

// Clone returns a deep copy that shares no map or slice with d.
func (d DashboardStats) Clone() *DashboardStats {
	d.UsersByRole = maps.Clone(d.UsersByRole)
	d.TopStores = slices.Clone(d.TopStores)
	return &d
}

// TopStore is a highly rated store listed on the dashboard.
type TopStore struct {
	ID            ID      `json:"id"`
	Name          string  `json:"name"`
	Owner         string  `json:"owner"`
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

// RoleCount is one entry of the users-by-role breakdown.
type RoleCount struct {
	Role  Role
	Count int
}

// RoleBreakdown returns UsersByRole in a stable order: known roles first in
// ValidRoles order, then any other roles alphabetically.
func (d DashboardStats) RoleBreakdown() []RoleCount {
	out := make([]RoleCount, 0, len(d.UsersByRole))
	seen := make(map[Role]bool, len(d.UsersByRole))
	for _, r := range ValidRoles() {
		if n, ok := d.UsersByRole[r]; ok {
			out = append(out, RoleCount{Role: r, Count: n})
			seen[r] = true
		}
	}

	var rest []RoleCount
	for r, n := range d.UsersByRole {
		if !seen[r] {
			rest = append(rest, RoleCount{Role: r, Count: n})
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Role < rest[j].Role })
	return append(out, rest...)
}
