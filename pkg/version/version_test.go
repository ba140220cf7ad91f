package version

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		major uint16
		minor uint16
	}{
		{"1.0", 1, 0},
		{"1.1", 1, 1},
		{"10.23", 10, 23},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("ParseFormat(%q) returned error: %v", tt.input, err)
			}
			if v.Major != tt.major || v.Minor != tt.minor {
				t.Errorf("got %d.%d, want %d.%d", v.Major, v.Minor, tt.major, tt.minor)
			}
			if v.String() != tt.input {
				t.Errorf("String() = %q, want %q", v.String(), tt.input)
			}
		})
	}
}

func TestParseFormatInvalid(t *testing.T) {
	for _, input := range []string{"", "1", "abc", "1.0.0", "1.x", "-1.0", ".1"} {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseFormat(input); !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("ParseFormat(%q) error = %v, want ErrInvalidVersion", input, err)
			}
		})
	}
}

func TestFeedCompatible(t *testing.T) {
	tests := []struct {
		peer string
		want bool
	}{
		{FeedFormat, true},
		{"1.7", true},
		{"2.0", false},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := FeedCompatible(tt.peer); got != tt.want {
			t.Errorf("FeedCompatible(%q) = %v, want %v", tt.peer, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  SemVer
		str   string
	}{
		{"1.2.3", SemVer{Major: 1, Minor: 2, Patch: 3}, "1.2.3"},
		{"v0.1.0-dev", SemVer{Minor: 1, Pre: "dev"}, "0.1.0-dev"},
		{"2.0.0-rc.1+sha.abc", SemVer{Major: 2, Pre: "rc.1"}, "2.0.0-rc.1"},
		{"10.20.30", SemVer{Major: 10, Minor: 20, Patch: 30}, "10.20.30"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
			if got.String() != tt.str {
				t.Errorf("String() = %q, want %q", got.String(), tt.str)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	for _, input := range []string{"", "1.2", "1.2.3.4", "01.2.3", "1.2.x", "1.2.3-", "v"} {
		t.Run(input, func(t *testing.T) {
			if _, err := Parse(input); !errors.Is(err, ErrInvalidVersion) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidVersion", input, err)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	// Ascending precedence.
	ordered := []string{
		"1.0.0-alpha",
		"1.0.0-alpha.1",
		"1.0.0-alpha.beta",
		"1.0.0-beta",
		"1.0.0-beta.2",
		"1.0.0-beta.11",
		"1.0.0-rc.1",
		"1.0.0",
		"1.0.1",
		"1.1.0",
		"2.0.0",
	}

	for i := range ordered {
		a, err := Parse(ordered[i])
		if err != nil {
			t.Fatal(err)
		}
		if a.Compare(a) != 0 {
			t.Errorf("%s != itself", a)
		}
		for j := i + 1; j < len(ordered); j++ {
			b, _ := Parse(ordered[j])
			if a.Compare(b) != -1 || b.Compare(a) != 1 {
				t.Errorf("expected %s < %s", a, b)
			}
		}
	}
}

func TestDefaultVersionParses(t *testing.T) {
	if _, err := Parse(Version); err != nil {
		t.Errorf("default Version %q does not parse: %v", Version, err)
	}
}
