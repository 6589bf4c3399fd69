package usage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// sizeUnits 以 1024 为底的单位.
var sizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatSize 将字节数格式化为可读字符串.
//
// 选择使数值落在 [1,1024) 的最大单位，最多保留两位小数并去掉末尾的 0:
//
//	0          -> "0 Bytes"
//	1024       -> "1 KB"
//	1536       -> "1.5 KB"
//	1073741824 -> "1 GB"
//
// 负数输出带 "-" 前缀.
func FormatSize(b int64) string {
	if b == 0 {
		return "0 Bytes"
	}

	sign := ""
	u := uint64(b)
	if b < 0 {
		sign = "-"
		u = uint64(-(b + 1)) + 1
	}

	v := float64(u)
	i := 0
	for v >= 1024 && i < len(sizeUnits)-1 {
		v /= 1024
		i++
	}

	v = round2(v)
	// 舍入后可能进位到 1024，例如 1048575 字节.
	if v >= 1024 && i < len(sizeUnits)-1 {
		v = round2(v / 1024)
		i++
	}

	return sign + humanize.FtoaWithDigits(v, 2) + " " + sizeUnits[i]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ParseSize 解析 FormatSize 的输出，也接受 "512", "1.5kb", "2 GiB" 等写法.
func ParseSize(s string) (int64, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	neg := false
	if raw[0] == '-' {
		neg = true
		raw = strings.TrimSpace(raw[1:])
	}

	idx := strings.IndexFunc(raw, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := raw, ""
	if idx >= 0 {
		num, unit = raw[:idx], strings.TrimSpace(raw[idx:])
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	exp, ok := unitExponent(unit)
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidSize, unit)
	}

	mult := math.Pow(1024, float64(exp))
	n := v * mult
	limit := float64(math.MaxInt64)
	if n >= limit {
		// "8 EB" 是 MaxInt64 舍入后的写法.
		if n-limit > 0.005*mult {
			return 0, fmt.Errorf("%w: %q overflows int64", ErrInvalidSize, s)
		}
		if neg {
			return math.MinInt64, nil
		}
		return math.MaxInt64, nil
	}

	out := int64(math.Round(n))
	if neg {
		out = -out
	}

	return out, nil
}

func unitExponent(unit string) (int, bool) {
	switch strings.ToLower(unit) {
	case "", "b", "byte", "bytes":
		return 0, true
	case "k", "kb", "kib":
		return 1, true
	case "m", "mb", "mib":
		return 2, true
	case "g", "gb", "gib":
		return 3, true
	case "t", "tb", "tib":
		return 4, true
	case "p", "pb", "pib":
		return 5, true
	case "e", "eb", "eib":
		return 6, true
	default:
		return 0, false
	}
}
