package config

import (
	"fmt"
	"strconv"
	"strings"

	cferrors "github.com/cardflow/cardflow/pkg/errors"
)

// Version is a semantic configuration version. Major bumps are breaking;
// configs whose major differs from the application's are rejected.
type Version struct {
	Major int `yaml:"major" json:"major"`
	Minor int `yaml:"minor" json:"minor"`
	Patch int `yaml:"patch" json:"patch"`
}

// CurrentVersion is the configuration version this build understands.
var CurrentVersion = Version{Major: 1, Minor: 0, Patch: 0}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 ordering v against other.
func (v Version) Compare(other Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// CompatibleWith reports whether a config written at v can be loaded by an
// application at app.
func (v Version) CompatibleWith(app Version) bool {
	return v.Major == app.Major
}

// ParseVersion parses a "major.minor.patch" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 {
		return Version{}, cferrors.Newf(cferrors.CodeConfigVersion, "invalid version %q", s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, cferrors.Wrapf(err, cferrors.CodeConfigVersion, "invalid version %q", s)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// UnmarshalYAML accepts either a "1.0.0" string or a {major, minor, patch}
// mapping.
func (v *Version) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err == nil {
		parsed, perr := ParseVersion(s)
		if perr != nil {
			return perr
		}
		*v = parsed
		return nil
	}

	var raw struct {
		Major int `yaml:"major"`
		Minor int `yaml:"minor"`
		Patch int `yaml:"patch"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*v = Version{Major: raw.Major, Minor: raw.Minor, Patch: raw.Patch}
	return nil
}
