package jsv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ============================================================
// Date/Time Text Codec
// ============================================================
//
// Wire forms:
//   - short date:     2006-01-02                          (UTC midnight)
//   - seconds:        2006-01-02T15:04:05Z                (UTC)
//   - fractional:     2006-01-02T15:04:05.1234567Z        (UTC)
//   - offset:         2006-01-02T15:04:05.123+02:00       (any non-UTC zone)
//   - legacy epoch:   /Date(1234567890123)/ or /Date(1234567890123+0200)/
//
// A value without an offset is UTC. Local time is never inferred.

const (
	shortDateLayout  = "2006-01-02"
	secondsLayout    = "2006-01-02T15:04:05Z"
	fractionalLayout = "2006-01-02T15:04:05.999999999Z"
	offsetLayout     = "2006-01-02T15:04:05.999999999Z07:00"
	noZoneLayout     = "2006-01-02T15:04:05.999999999"

	legacyPrefix        = "/Date("
	legacySuffix        = ")/"
	escapedLegacyPrefix = `\/Date(`
	escapedLegacySuffix = `)\/`
)

// Date/time parse errors
var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidDuration = errors.New("invalid duration")
)

// FormatTime writes t in the selected wire form.
func FormatTime(t time.Time, df DateFormat) string {
	if df == DateFormatLegacy {
		return FormatLegacyDate(t)
	}
	return FormatISO8601(t)
}

// FormatISO8601 writes the shortest ISO-8601 form that keeps t. Values with a
// zero UTC offset are converted to UTC; other zones keep their offset.
func FormatISO8601(t time.Time) string {
	if _, offset := t.Zone(); offset != 0 {
		return t.Format(offsetLayout)
	}
	t = t.UTC()
	switch {
	case t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0:
		return t.Format(shortDateLayout)
	case t.Nanosecond() == 0:
		return t.Format(secondsLayout)
	default:
		return t.Format(fractionalLayout)
	}
}

// FormatLegacyDate writes t as /Date(ms)/, adding the zone offset as +HHMM
// when t is not in UTC. The millisecond count is always UTC-based.
func FormatLegacyDate(t time.Time) string {
	var b strings.Builder
	b.WriteString(legacyPrefix)
	b.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	if _, offset := t.Zone(); offset != 0 {
		sign := byte('+')
		if offset < 0 {
			sign = '-'
			offset = -offset
		}
		b.WriteByte(sign)
		fmt.Fprintf(&b, "%02d%02d", offset/3600, offset%3600/60)
	}
	b.WriteString(legacySuffix)
	return b.String()
}

// ParseTime reads any supported wire form. The form is chosen from the input
// length and its prefix or suffix only.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, legacyPrefix) || strings.HasPrefix(s, escapedLegacyPrefix):
		return ParseLegacyDate(s)
	case len(s) == len(shortDateLayout):
		t, err := time.ParseInLocation(shortDateLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		return t, nil
	case len(s) < len(shortDateLayout):
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	if s[10] == ' ' {
		s = s[:10] + "T" + s[11:]
	}
	if strings.HasSuffix(s, "Z") || hasOffsetSuffix(s) {
		t, err := time.Parse(offsetLayout, s)
		if err != nil {
			// +0200 without a colon
			t, err = time.Parse("2006-01-02T15:04:05.999999999Z0700", s)
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		if _, offset := t.Zone(); offset == 0 {
			t = t.UTC()
		}
		return t, nil
	}

	// No offset: UTC by definition.
	t, err := time.ParseInLocation(noZoneLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

func hasOffsetSuffix(s string) bool {
	n := len(s)
	if n >= 6 && (s[n-6] == '+' || s[n-6] == '-') && s[n-3] == ':' {
		return true
	}
	if n >= 5 && (s[n-5] == '+' || s[n-5] == '-') {
		return isDigits(s[n-4:])
	}
	return false
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// ParseLegacyDate reads /Date(ms)/ and /Date(ms+HHMM)/, with or without the
// escaped slashes of JSON. Without an offset the result is UTC; with one it is
// in a fixed zone of that offset.
func ParseLegacyDate(s string) (time.Time, error) {
	var inner string
	switch {
	case strings.HasPrefix(s, legacyPrefix) && strings.HasSuffix(s, legacySuffix):
		inner = s[len(legacyPrefix) : len(s)-len(legacySuffix)]
	case strings.HasPrefix(s, escapedLegacyPrefix) && strings.HasSuffix(s, escapedLegacySuffix):
		inner = s[len(escapedLegacyPrefix) : len(s)-len(escapedLegacySuffix)]
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if inner == "" {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	msPart, offsetPart := inner, ""
	if idx := strings.LastIndexAny(inner[1:], "+-"); idx >= 0 {
		msPart, offsetPart = inner[:idx+1], inner[idx+1:]
	}
	ms, err := strconv.ParseInt(msPart, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t := time.UnixMilli(ms).UTC()
	if offsetPart == "" {
		return t, nil
	}

	if len(offsetPart) != 5 || !isDigits(offsetPart[1:]) {
		return time.Time{}, fmt.Errorf("%w: bad offset in %q", ErrInvalidDate, s)
	}
	hh, _ := strconv.Atoi(offsetPart[1:3])
	mm, _ := strconv.Atoi(offsetPart[3:5])
	offset := hh*3600 + mm*60
	if offsetPart[0] == '-' {
		offset = -offset
	}
	if offset == 0 {
		return t, nil
	}
	return t.In(time.FixedZone("", offset)), nil
}

// ============================================================
// Durations
// ============================================================

// FormatDuration writes d as an XSD duration: P1DT2H3M4.5S.
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}

	// Unsigned so that the magnitude of math.MinInt64 does not overflow.
	u := uint64(d)
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		u = -u
	}
	b.WriteByte('P')

	const (
		nsSecond = uint64(time.Second)
		nsMinute = uint64(time.Minute)
		nsHour   = uint64(time.Hour)
		nsDay    = 24 * nsHour
	)
	days := u / nsDay
	u -= days * nsDay
	hours := u / nsHour
	u -= hours * nsHour
	minutes := u / nsMinute
	u -= minutes * nsMinute
	seconds := u / nsSecond
	nanos := u - seconds*nsSecond

	if days > 0 {
		b.WriteString(strconv.FormatUint(days, 10))
		b.WriteByte('D')
	}
	if hours == 0 && minutes == 0 && seconds == 0 && nanos == 0 {
		return b.String()
	}
	b.WriteByte('T')
	if hours > 0 {
		b.WriteString(strconv.FormatUint(hours, 10))
		b.WriteByte('H')
	}
	if minutes > 0 {
		b.WriteString(strconv.FormatUint(minutes, 10))
		b.WriteByte('M')
	}
	if seconds > 0 || nanos > 0 {
		b.WriteString(strconv.FormatUint(seconds, 10))
		if nanos > 0 {
			frac := fmt.Sprintf("%09d", nanos)
			b.WriteByte('.')
			b.WriteString(strings.TrimRight(frac, "0"))
		}
		b.WriteByte('S')
	}
	return b.String()
}

// ParseDuration reads an XSD duration (P1DT2H), a clock form
// ([d.]hh:mm:ss[.fffffff]) or a Go duration string (1h30m).
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	neg := false
	body := s
	if strings.HasPrefix(body, "-") {
		neg = true
		body = body[1:]
	}

	var d time.Duration
	var err error
	switch {
	case strings.HasPrefix(body, "P"):
		d, err = parseXSDDuration(body)
	case strings.Contains(body, ":"):
		d, err = parseClockDuration(body)
	default:
		d, err = time.ParseDuration(body)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
	}
	if neg {
		d = -d
	}
	return d, nil
}

func parseXSDDuration(s string) (time.Duration, error) {
	s = s[1:] // P
	var total time.Duration
	inTime := false
	seen := false
	for len(s) > 0 {
		if s[0] == 'T' {
			inTime = true
			s = s[1:]
			continue
		}
		end := 0
		for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
			end++
		}
		if end == 0 || end >= len(s) {
			return 0, ErrInvalidDuration
		}
		num, unit := s[:end], s[end]
		s = s[end+1:]
		seen = true

		var scale time.Duration
		switch {
		case !inTime && unit == 'D':
			scale = 24 * time.Hour
		case !inTime && unit == 'W':
			scale = 7 * 24 * time.Hour
		case inTime && unit == 'H':
			scale = time.Hour
		case inTime && unit == 'M':
			scale = time.Minute
		case inTime && unit == 'S':
			scale = time.Second
		default:
			// Years and months have no fixed length.
			return 0, ErrInvalidDuration
		}
		part, err := scaleDecimal(num, scale)
		if err != nil {
			return 0, err
		}
		total += part
	}
	if !seen {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

// scaleDecimal multiplies a decimal string like "4.5" by unit without going
// through float64.
func scaleDecimal(num string, unit time.Duration) (time.Duration, error) {
	whole, frac, _ := strings.Cut(num, ".")
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	d := time.Duration(w) * unit
	if frac == "" {
		return d, nil
	}
	if len(frac) > 9 {
		frac = frac[:9]
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	for i := len(frac); i < 9; i++ {
		f *= 10
	}
	return d + time.Duration(f)*(unit/time.Second), nil
}

func parseClockDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, ErrInvalidDuration
	}
	var days int64
	hourPart := parts[0]
	if d, h, ok := strings.Cut(hourPart, "."); ok {
		var err error
		if days, err = strconv.ParseInt(d, 10, 64); err != nil {
			return 0, err
		}
		hourPart = h
	}
	hours, err := strconv.ParseInt(hourPart, 10, 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, err
	}
	secs, err := scaleDecimal(parts[2], time.Second)
	if err != nil {
		return 0, err
	}
	return time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute + secs, nil
}
