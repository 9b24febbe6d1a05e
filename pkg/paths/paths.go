// Package paths resolves catalog path templates against the concrete host.
package paths

import (
	"path/filepath"
	"strings"
)

// Resolve expands a catalog-owned path template. Paths starting with
// {prefix}/ land under the install prefix; paths starting with ~/ land
// under the real user's home. Anything else is returned as-is.
func Resolve(path, prefix, home string) string {
	switch {
	case strings.HasPrefix(path, "{prefix}/"):
		return filepath.Join(prefix, strings.TrimPrefix(path, "{prefix}/"))
	case path == "~":
		return home
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	default:
		return path
	}
}

// ExpandArgv resolves the {prefix} and {home} placeholders inside a script
// argument vector.
func ExpandArgv(argv []string, prefix, home string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		a = strings.ReplaceAll(a, "{prefix}", prefix)
		a = strings.ReplaceAll(a, "{home}", home)
		out[i] = a
	}
	return out
}
