// Package samples embeds a small set of shape files used by the -demo mode
// of the tools.
package samples

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.plist *.yaml
var FS embed.FS

// Files lists the embedded shape files in name order.
func Files() []string {
	var files []string
	for _, pattern := range []string{"*.plist", "*.yaml"} {
		matches, err := fs.Glob(FS, pattern)
		if err != nil {
			continue
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files
}
