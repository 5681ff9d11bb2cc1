package ingest

import (
	"path/filepath"
	"strings"
)

// Role is the part an uploaded export plays in a run.
type Role string

const (
	RoleNewVisitors Role = "new"
	RoleBookings    Role = "bookings"
	RoleSales       Role = "payments"
	RoleUnknown     Role = "unknown"
)

var roleKeywords = []struct {
	role     Role
	keywords []string
}{
	{RoleNewVisitors, []string{"new"}},
	{RoleBookings, []string{"booking"}},
	{RoleSales, []string{"payment", "sale"}},
}

// ClassifyFile picks a role from the file name alone.
func ClassifyFile(name string) Role {
	base := strings.ToLower(filepath.Base(name))
	for _, rk := range roleKeywords {
		for _, kw := range rk.keywords {
			if strings.Contains(base, kw) {
				return rk.role
			}
		}
	}
	return RoleUnknown
}
