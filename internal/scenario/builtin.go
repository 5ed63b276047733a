package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed scripts/*.yaml
var builtinFS embed.FS

// Builtin returns the bundled scripts in file name order. Each demonstrates
// one behaviour of the manager and doubles as a regression check.
func Builtin() ([]*Script, error) {
	entries, err := fs.ReadDir(builtinFS, "scripts")
	if err != nil {
		return nil, err
	}

	scripts := make([]*Script, 0, len(entries))
	for _, e := range entries {
		data, err := builtinFS.ReadFile(path.Join("scripts", e.Name()))
		if err != nil {
			return nil, err
		}
		script, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		if script.Name == "" {
			script.Name = strings.TrimSuffix(e.Name(), ".yaml")
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}
