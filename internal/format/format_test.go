package format

import (
	"testing"

	"modbrowse/internal/store"
)

var _ store.Formatters = Humanize{}

func TestFormatDownloadCount(t *testing.T) {
	f := New()
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1200, "1.2K"},
		{45000, "45K"},
		{2500000, "2.5M"},
	}
	for _, tc := range cases {
		if got := f.FormatDownloadCount(tc.in); got != tc.want {
			t.Fatalf("FormatDownloadCount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatFileSizeNegative(t *testing.T) {
	if got := New().FormatFileSize(-1); got != "0 B" {
		t.Fatalf("negative size: %q", got)
	}
}

func TestFormatEngagementNumber(t *testing.T) {
	if got := New().FormatEngagementNumber(1234567); got != "1,234,567" {
		t.Fatalf("engagement: %q", got)
	}
}

func TestFormatRelativeTimeFallback(t *testing.T) {
	if got := New().FormatRelativeTime("not-a-date"); got != "not-a-date" {
		t.Fatalf("fallback: %q", got)
	}
}
