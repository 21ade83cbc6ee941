package stock

import "strings"

// Zone identifies a physical storage partition in the warehouse.
// Zone codes are an open set; the frozen partitions follow the warehouse's
// labeling convention ("TK" or a "TK_" prefix).
type Zone string

// Well-known zone codes
const (
	ZoneFrozen  Zone = "TK"
	ZoneAmbient Zone = "NON_TK"
)

// String returns the zone code
func (z Zone) String() string {
	return string(z)
}

// IsFrozen returns true if the zone is a frozen-storage partition
func (z Zone) IsFrozen() bool {
	return z == ZoneFrozen || strings.HasPrefix(string(z), "TK_")
}

// IsEmpty returns true if no zone code is set
func (z Zone) IsEmpty() bool {
	return strings.TrimSpace(string(z)) == ""
}
