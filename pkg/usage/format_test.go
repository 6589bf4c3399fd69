package usage_test

import (
	"errors"
	"math"
	"testing"

	"github.com/yeisme/spacedash/pkg/usage"
)

// TestFormatSize 测试大小格式化.
func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 Bytes"},
		{1, "1 Bytes"},
		{1023, "1023 Bytes"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{1048575, "1 MB"},
		{1 << 20, "1 MB"},
		{1073741824, "1 GB"},
		{5 << 40, "5 TB"},
		{1288490189, "1.2 GB"},
		{-2048, "-2 KB"},
		{math.MaxInt64, "8 EB"},
	}

	for _, tt := range tests {
		if got := usage.FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestParseSize 测试大小解析.
func TestParseSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "0 Bytes", want: 0},
		{in: "512", want: 512},
		{in: "1 KB", want: 1024},
		{in: "1.5kb", want: 1536},
		{in: "2 GiB", want: 2 << 30},
		{in: "-2 KB", want: -2048},
		{in: "8 EB", want: math.MaxInt64},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "3 XB", wantErr: true},
		{in: "16 EB", wantErr: true},
	}

	for _, tt := range tests {
		got, err := usage.ParseSize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, usage.ErrInvalidSize) {
				t.Errorf("ParseSize(%q) error = %v, want ErrInvalidSize", tt.in, err)
			}

			continue
		}

		if err != nil {
			t.Errorf("ParseSize(%q) unexpected error: %v", tt.in, err)
			continue
		}

		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// TestFormatSize_RoundTrip 测试格式化与解析互逆.
func TestFormatSize_RoundTrip(t *testing.T) {
	inputs := []int64{0, 1, 999, 1024, 1536, 10_000, 123_456_789, 1 << 30, 987_654_321_012, math.MaxInt64}
	for b := int64(1); b < 1<<60; b = b*3 + 7 {
		inputs = append(inputs, b)
	}

	for _, b := range inputs {
		s := usage.FormatSize(b)

		n, err := usage.ParseSize(s)
		if err != nil {
			t.Fatalf("ParseSize(%q): %v", s, err)
		}

		if got := usage.FormatSize(n); got != s {
			t.Errorf("round trip %d: %q -> %d -> %q", b, s, n, got)
		}
	}
}
