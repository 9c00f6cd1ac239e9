// Package format renders catalog numbers for display. It implements the
// store's optional Formatters hook; the store works without it, falling back
// to raw values.
package format

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Humanize formats values with go-humanize.
type Humanize struct{}

// New returns the standard formatter set.
func New() Humanize { return Humanize{} }

// FormatFileSize renders a byte count like "4.1 GB".
func (Humanize) FormatFileSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatDownloadCount renders a compact count like "1.2K" or "3.4M".
func (Humanize) FormatDownloadCount(n int64) string {
	switch {
	case n >= 1000000:
		return humanize.CommafWithDigits(float64(n)/1000000, 1) + "M"
	case n >= 1000:
		return humanize.CommafWithDigits(float64(n)/1000, 1) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// FormatEngagementNumber renders a like count with thousands separators.
func (Humanize) FormatEngagementNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatRelativeTime renders an ISO-8601 timestamp as "3 days ago". Unparseable
// input is returned verbatim.
func (Humanize) FormatRelativeTime(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return humanize.Time(t)
}
