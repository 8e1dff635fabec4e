package utils

import (
	"strings"
	"time"
)

// BrokerTimeLayout is the timestamp layout used by the execution export.
const BrokerTimeLayout = "2006-01-02 15:04:05"

const (
	beginPositionMarker = "BP"
	endPositionMarker   = "EP"
)

// HasBeginMarker reports whether a raw datetime field carries the
// begin-position marker. Must be checked before ParseBrokerTime strips it.
func HasBeginMarker(raw string) bool {
	return strings.Contains(raw, beginPositionMarker)
}

// HasEndMarker reports whether a raw datetime field carries the
// end-position marker.
func HasEndMarker(raw string) bool {
	return strings.Contains(raw, endPositionMarker)
}

// ParseBrokerTime parses a datetime field from the export. The field may use
// a double-space separator between the date and time parts and may carry a
// trailing " BP" or " EP" position marker; both are normalized away before
// parsing.
func ParseBrokerTime(raw string) (time.Time, error) {
	s := strings.ReplaceAll(raw, "  ", " ")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, beginPositionMarker)
	s = strings.TrimSuffix(s, endPositionMarker)
	s = strings.TrimSpace(s)
	return time.Parse(BrokerTimeLayout, s)
}
