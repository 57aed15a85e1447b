package codegen

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Output writes every ready function to its own ".mcfunction" file under
// dir/<namespace>/functions/<path>, creating directories as needed for
// anonymous children whose name contains "/". A single strings.Builder is
// reused across every function, the way codegen.rs's output_to_dir reuses
// one String buffer instead of allocating fresh per file.
func Output(ready map[string]*Function, namespace, dir string) error {
	names := make([]string, 0, len(ready))
	for name := range ready {
		names = append(names, name)
	}
	sort.Strings(names)

	functionsDir := filepath.Join(dir, namespace, "functions")
	var buf strings.Builder

	for _, name := range names {
		fn := ready[name]
		if err := RenderFunction(fn, &buf); err != nil {
			return err
		}

		target := filepath.Join(functionsDir, filepath.FromSlash(name)+".mcfunction")
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return errors.Wrapf(err, "codegen: creating directory for %q", name)
		}
		if err := os.WriteFile(target, []byte(buf.String()), 0o644); err != nil {
			return errors.Wrapf(err, "codegen: writing function %q", name)
		}
	}
	return nil
}
