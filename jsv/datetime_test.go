package jsv

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestFormatISO8601(t *testing.T) {
	plus2 := time.FixedZone("", 2*3600)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"midnight", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "2024-01-02"},
		{"seconds", time.Date(2024, 1, 2, 10, 30, 15, 0, time.UTC), "2024-01-02T10:30:15Z"},
		{"fraction", time.Date(2024, 1, 2, 10, 30, 15, 123000000, time.UTC), "2024-01-02T10:30:15.123Z"},
		{"ticks", time.Date(2024, 1, 2, 10, 30, 15, 123456700, time.UTC), "2024-01-02T10:30:15.1234567Z"},
		{"offset", time.Date(2024, 1, 2, 10, 30, 15, 0, plus2), "2024-01-02T10:30:15+02:00"},
		{"offset midnight", time.Date(2024, 1, 2, 0, 0, 0, 0, plus2), "2024-01-02T00:00:00+02:00"},
		{"zero offset zone", time.Date(2024, 1, 2, 10, 0, 0, 0, time.FixedZone("GMT", 0)), "2024-01-02T10:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatISO8601(tt.t)
			if got != tt.want {
				t.Errorf("FormatISO8601 = %q, want %q", got, tt.want)
			}
			back, err := ParseTime(got)
			if err != nil {
				t.Fatalf("ParseTime(%q) failed: %v", got, err)
			}
			if !back.Equal(tt.t) {
				t.Errorf("ParseTime(%q) = %v, want %v", got, back, tt.t)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		offset int
	}{
		{"short date", "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 0},
		{"space separator", "2024-01-02 10:30:15", time.Date(2024, 1, 2, 10, 30, 15, 0, time.UTC), 0},
		{"no zone is utc", "2024-01-02T10:30:15.5", time.Date(2024, 1, 2, 10, 30, 15, 500000000, time.UTC), 0},
		{"zulu", "2024-01-02T10:30:15Z", time.Date(2024, 1, 2, 10, 30, 15, 0, time.UTC), 0},
		{"offset", "2024-01-02T10:30:15-05:00", time.Date(2024, 1, 2, 15, 30, 15, 0, time.UTC), -5 * 3600},
		{"offset without colon", "2024-01-02T10:30:15+0200", time.Date(2024, 1, 2, 8, 30, 15, 0, time.UTC), 2 * 3600},
		{"fraction and offset without colon", "2024-01-02T10:30:15.123+0200", time.Date(2024, 1, 2, 8, 30, 15, 123000000, time.UTC), 2 * 3600},
		{"fraction and negative offset", "2024-01-02T10:30:15.5-0130", time.Date(2024, 1, 2, 12, 0, 15, 500000000, time.UTC), -(3600 + 1800)},
		{"legacy", "/Date(1700000000123)/", time.UnixMilli(1700000000123), 0},
		{"legacy escaped", `\/Date(0)\/`, time.Unix(0, 0), 0},
		{"legacy negative", "/Date(-86400000)/", time.Unix(-86400, 0), 0},
		{"legacy offset", "/Date(1700000000123-0500)/", time.UnixMilli(1700000000123), -5 * 3600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if err != nil {
				t.Fatalf("ParseTime(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if _, offset := got.Zone(); offset != tt.offset {
				t.Errorf("ParseTime(%q) offset = %d, want %d", tt.input, offset, tt.offset)
			}
		})
	}
}

func TestParseTimeErrors(t *testing.T) {
	for _, input := range []string{"", "2024", "2024-13-45", "not a date at all", "/Date()/", "/Date(12+99)/", "2024-01-02Tnope"} {
		if _, err := ParseTime(input); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseTime(%q): expected ErrInvalidDate, got %v", input, err)
		}
	}
}

func TestFormatLegacyDate(t *testing.T) {
	ms := int64(1700000000123)
	tests := []struct {
		t    time.Time
		want string
	}{
		{time.UnixMilli(ms).UTC(), "/Date(1700000000123)/"},
		{time.UnixMilli(ms).In(time.FixedZone("", 2*3600)), "/Date(1700000000123+0200)/"},
		{time.UnixMilli(ms).In(time.FixedZone("", -(5*3600 + 30*60))), "/Date(1700000000123-0530)/"},
	}
	for _, tt := range tests {
		got := FormatLegacyDate(tt.t)
		if got != tt.want {
			t.Errorf("FormatLegacyDate = %q, want %q", got, tt.want)
		}
		back, err := ParseLegacyDate(got)
		if err != nil {
			t.Fatalf("ParseLegacyDate(%q) failed: %v", got, err)
		}
		if !back.Equal(tt.t) {
			t.Errorf("ParseLegacyDate(%q) = %v, want %v", got, back, tt.t)
		}
	}
}

func TestLegacyDateInFormats(t *testing.T) {
	type event struct {
		At time.Time
	}
	in := event{At: time.UnixMilli(1700000000123).UTC()}
	cfg := DefaultConfig()
	cfg.DateFormat = DateFormatLegacy

	tests := []struct {
		f    Format
		want string
	}{
		{JSON, `{"At":"\/Date(1700000000123)\/"}`},
		{JSV, `{At:/Date(1700000000123)/}`},
	}
	for _, tt := range tests {
		c := NewCodec(tt.f, cfg)
		text, err := c.Serialize(in)
		if err != nil {
			t.Fatalf("Serialize failed: %v", err)
		}
		if text != tt.want {
			t.Errorf("%s: got %s, want %s", tt.f.Name(), text, tt.want)
		}
		back, err := DeserializeAs[event](c, text)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if !back.At.Equal(in.At) {
			t.Errorf("%s: got %v, want %v", tt.f.Name(), back.At, in.At)
		}
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "PT0S"},
		{90 * time.Second, "PT1M30S"},
		{26*time.Hour + 3*time.Minute + 4500*time.Millisecond, "P1DT2H3M4.5S"},
		{48 * time.Hour, "P2D"},
		{-90 * time.Minute, "-PT1H30M"},
		{time.Nanosecond, "PT0.000000001S"},
		{math.MaxInt64, "P106751DT23H47M16.854775807S"},
		{math.MinInt64, "-P106751DT23H47M16.854775808S"},
	}
	for _, tt := range tests {
		got := FormatDuration(tt.d)
		if got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
		back, err := ParseDuration(got)
		if err != nil {
			t.Fatalf("ParseDuration(%q) failed: %v", got, err)
		}
		if back != tt.d {
			t.Errorf("ParseDuration(%q) = %v, want %v", got, back, tt.d)
		}
	}
}

func TestParseDurationForms(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"PT1.5H", 90 * time.Minute},
		{"P1W", 7 * 24 * time.Hour},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second},
		{"1.02:00:00", 26 * time.Hour},
		{"00:00:01.25", 1250 * time.Millisecond},
		{"1h30m", 90 * time.Minute},
		{"-00:01:00", -time.Minute},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if err != nil {
			t.Fatalf("ParseDuration(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	for _, input := range []string{"P1Y", "P1M", "P", "PT", "1:2", "soon"} {
		if _, err := ParseDuration(input); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("ParseDuration(%q): expected ErrInvalidDuration, got %v", input, err)
		}
	}
}

func TestDateBoundaries(t *testing.T) {
	type stamp struct {
		On time.Time
	}

	got, err := FromJSV[stamp]("{On:1979-05-09}")
	if err != nil {
		t.Fatalf("FromJSV failed: %v", err)
	}
	want := time.Date(1979, 5, 9, 0, 0, 0, 0, time.UTC)
	if !got.On.Equal(want) {
		t.Errorf("got %v, want %v", got.On, want)
	}
	if text, _ := ToJSV(got); text != "{On:1979-05-09}" {
		t.Errorf("short date did not round trip: %s", text)
	}

	epoch, err := FromJSON[stamp](`{"On":"\/Date(0)\/"}`)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !epoch.On.Equal(time.Unix(0, 0)) || epoch.On.Location() != time.UTC {
		t.Errorf("legacy epoch = %v, want 1970-01-01 UTC", epoch.On)
	}
}
