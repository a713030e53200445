// Package format handles size scaling and timestamp rendering for reports.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the civil-time layout used for modification times
const TimestampLayout = "2006-01-02 15:04:05"

// UnitStyle selects the unit labels and tiers used when scaling sizes
type UnitStyle int

const (
	// Long uses "bytes", "megabytes" and "gigabytes" with no kilobyte tier
	Long UnitStyle = iota
	// Short uses "bytes", "KB", "MB" and "GB"
	Short
)

// String returns the configuration name of the style
func (s UnitStyle) String() string {
	switch s {
	case Short:
		return "short"
	default:
		return "long"
	}
}

// ParseUnitStyle parses a unit style name ("long" or "short")
func ParseUnitStyle(name string) (UnitStyle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "long":
		return Long, nil
	case "short":
		return Short, nil
	default:
		return Long, fmt.Errorf("invalid unit style: %s (expected long or short)", name)
	}
}

// Scaled is a byte count expressed in a human unit
type Scaled struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// String renders the magnitude with the shortest exact representation
func (s Scaled) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64) + " " + s.Unit
}

type tier struct {
	threshold uint64
	long      string
	short     string
}

// Decimal thresholds, largest first. Lower bounds are inclusive.
var tiers = []tier{
	{threshold: 1_000_000_000, long: "gigabytes", short: "GB"},
	{threshold: 1_000_000, long: "megabytes", short: "MB"},
	{threshold: 1_000, short: "KB"},
}

// Size scales a byte count into the largest unit whose threshold it reaches
func Size(bytes uint64, style UnitStyle) Scaled {
	for _, t := range tiers {
		label := t.long
		if style == Short {
			label = t.short
		}
		if label == "" {
			continue
		}
		if bytes >= t.threshold {
			return Scaled{Value: float64(bytes) / float64(t.threshold), Unit: label}
		}
	}

	return Scaled{Value: float64(bytes), Unit: "bytes"}
}

// Timestamp renders t as local civil time with second precision
func Timestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}
