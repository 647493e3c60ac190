package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// FormatCurrency formats an amount as dollars with thousands separators, e.g. "$1,234.56".
func FormatCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	return fmt.Sprintf("%s$%s.%02d", sign, groupDigits(cents/100), cents%100)
}

// FormatWholeCurrency formats an amount rounded to whole dollars, e.g. "$1,235".
func FormatWholeCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		amount = 0
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + "$" + groupDigits(int64(math.Round(amount)))
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	if n < 0 {
		return "-" + groupDigits(int64(-n))
	}
	return groupDigits(int64(n))
}

// FormatPercent formats a percentage with one decimal place, e.g. "42.5%".
// Halves round away from zero, so 6.25 prints as "6.3%".
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	rounded := math.Round(p*10) / 10
	if rounded == 0 {
		rounded = 0 // drop negative zero
	}
	return strconv.FormatFloat(rounded, 'f', 1, 64) + "%"
}

// FormatSignedPercent formats a change percentage with an explicit sign.
func FormatSignedPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		p = 0
	}
	if p > 0 {
		return "+" + FormatPercent(p)
	}
	return FormatPercent(p)
}

// FormatRelativeTime renders ts relative to now the way the web dashboard does:
// "Just now", "5m ago", "3h ago", then an absolute date and time.
func FormatRelativeTime(ts, now time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}

	mins := int(now.Sub(ts) / time.Minute)
	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 1440:
		return fmt.Sprintf("%dh ago", mins/60)
	default:
		return ts.Format("2006-01-02 15:04")
	}
}

// PrettifyItem turns a machine identifier like "OAK_LOG" into "Oak Log".
func PrettifyItem(item string) string {
	parts := strings.Split(item, "_")
	words := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		words = append(words, strings.ToUpper(lower[:1])+lower[1:])
	}
	return strings.Join(words, " ")
}

// Truncate shortens s to maxLen runes, adding an ellipsis when cut.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
