package dataset

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/rulpipe/pkg/errors"
)

// Subset identifies one of the four C-MAPSS operating-condition variants.
type Subset string

const (
	FD001 Subset = "FD001"
	FD002 Subset = "FD002"
	FD003 Subset = "FD003"
	FD004 Subset = "FD004"
)

// Subsets lists all valid subset identifiers.
func Subsets() []Subset {
	return []Subset{FD001, FD002, FD003, FD004}
}

// ParseSubset validates a subset name, case-insensitively.
func ParseSubset(s string) (Subset, error) {
	u := Subset(strings.ToUpper(s))
	for _, v := range Subsets() {
		if u == v {
			return v, nil
		}
	}
	return "", errors.NewValueError("dataset.ParseSubset",
		fmt.Sprintf("subset must be one of FD001..FD004, got %q", s))
}

// Canonical column names of the raw sensor files.
const (
	ColEngineID = "engine_id"
	ColCycle    = "cycle"
	ColRUL      = "RUL"
)

// NumRawColumns is the fixed column count of a raw C-MAPSS sensor file:
// engine id, cycle, 3 operational settings and 21 sensor readings.
const NumRawColumns = 26

// RawColumns returns the canonical column names assigned to the
// whitespace-delimited raw files, in file order.
func RawColumns() []string {
	cols := []string{ColEngineID, ColCycle}
	for i := 1; i <= 3; i++ {
		cols = append(cols, fmt.Sprintf("setting_%d", i))
	}
	for i := 1; i <= 21; i++ {
		cols = append(cols, fmt.Sprintf("s%d", i))
	}
	return cols
}
