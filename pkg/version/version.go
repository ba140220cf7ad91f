// Package version provides the build version and feed format versioning.
package version

import (
	"cmp"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Version is the build version, overridden at link time with
// -ldflags "-X github.com/geotools/geotools-go/pkg/version.Version=1.2.3".
var Version = "0.1.0-dev"

// FeedFormat is the wire format version of the state feed.
const FeedFormat = "1.0"

// ErrInvalidVersion is returned for unparseable version strings.
var ErrInvalidVersion = errors.New("invalid version")

// FormatVersion is a parsed "major.minor" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
}

// ParseFormat parses a "major.minor" version string.
func ParseFormat(s string) (FormatVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return FormatVersion{}, fmt.Errorf("%w %q: expected major.minor", ErrInvalidVersion, s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return FormatVersion{}, fmt.Errorf("%w %q: bad major component", ErrInvalidVersion, s)
	}
	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return FormatVersion{}, fmt.Errorf("%w %q: bad minor component", ErrInvalidVersion, s)
	}

	return FormatVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// String returns the version as "major.minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether other shares the major version.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	return v.Major == other.Major
}

// FeedCompatible reports whether a peer advertising format s can be read
// by this build.
func FeedCompatible(s string) bool {
	peer, err := ParseFormat(s)
	if err != nil {
		return false
	}
	ours, _ := ParseFormat(FeedFormat)
	return ours.Compatible(peer)
}

// SemVer is a parsed semantic version. Build metadata is discarded.
type SemVer struct {
	Major, Minor, Patch uint64
	Pre                 string
}

// Parse parses "MAJOR.MINOR.PATCH[-PRERELEASE][+BUILD]", with an optional
// leading "v".
func Parse(s string) (SemVer, error) {
	in := strings.TrimPrefix(s, "v")
	in, _, _ = strings.Cut(in, "+")
	core, pre, hasPre := strings.Cut(in, "-")
	if hasPre && pre == "" {
		return SemVer{}, fmt.Errorf("%w %q: empty prerelease", ErrInvalidVersion, s)
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("%w %q: expected major.minor.patch", ErrInvalidVersion, s)
	}

	var nums [3]uint64
	for i, p := range parts {
		if len(p) > 1 && p[0] == '0' {
			return SemVer{}, fmt.Errorf("%w %q: leading zero", ErrInvalidVersion, s)
		}
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return SemVer{}, fmt.Errorf("%w %q: bad component %q", ErrInvalidVersion, s, p)
		}
		nums[i] = n
	}

	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2], Pre: pre}, nil
}

// String formats v without a leading "v".
func (v SemVer) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Compare returns -1, 0 or +1 as v sorts before, equal to or after o.
// A prerelease sorts before the release it precedes.
func (v SemVer) Compare(o SemVer) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, o.Patch); c != 0 {
		return c
	}
	switch {
	case v.Pre == o.Pre:
		return 0
	case v.Pre == "":
		return 1
	case o.Pre == "":
		return -1
	}
	return comparePre(v.Pre, o.Pre)
}

// comparePre orders dot-separated prerelease identifiers: numeric ones
// numerically and below alphanumeric ones, which compare lexically.
func comparePre(a, b string) int {
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aErr := strconv.ParseUint(as[i], 10, 64)
		bn, bErr := strconv.ParseUint(bs[i], 10, 64)
		switch {
		case aErr == nil && bErr == nil:
			if c := cmp.Compare(an, bn); c != 0 {
				return c
			}
		case aErr == nil:
			return -1
		case bErr == nil:
			return 1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	return cmp.Compare(len(as), len(bs))
}

// Banner is the one-line version string printed by the commands.
func Banner(name string) string {
	return fmt.Sprintf("%s %s (feed format %s)", name, Version, FeedFormat)
}
