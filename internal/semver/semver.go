package semver

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a mod portal version: "major.minor.patch", each part 0-65535.
// Two-part versions such as "1.1" are accepted with patch 0.
type Version struct {
	Major, Minor, Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse parses a portal version string.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 65535 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare returns -1, 0 or +1. Unparseable versions sort before valid ones
// and compare lexically among themselves.
func Compare(a, b string) int {
	av, aErr := Parse(a)
	bv, bErr := Parse(b)
	switch {
	case aErr != nil && bErr != nil:
		return strings.Compare(a, b)
	case aErr != nil:
		return -1
	case bErr != nil:
		return 1
	}

	for _, d := range [][2]int{{av.Major, bv.Major}, {av.Minor, bv.Minor}, {av.Patch, bv.Patch}} {
		if d[0] < d[1] {
			return -1
		}
		if d[0] > d[1] {
			return 1
		}
	}
	return 0
}

// LastIsHighest reports whether the final element of versions compares
// greater than or equal to every other element.
func LastIsHighest(versions []string) bool {
	if len(versions) == 0 {
		return true
	}
	last := versions[len(versions)-1]
	for _, v := range versions[:len(versions)-1] {
		if Compare(v, last) > 0 {
			return false
		}
	}
	return true
}
