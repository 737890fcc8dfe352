package userdata

import (
	"fmt"
	"io"
	"os"

	"github.com/pytemplate/pytemplate/internal/platform"
	"github.com/pytemplate/pytemplate/internal/registry"
)

// CheckBaseDir validates the template base directory and every registry
// entry in it. When fix is true, a missing bundle is installed. It returns
// the number of problems left unresolved.
func CheckBaseDir(w io.Writer, base string, fix bool) int {
	fmt.Fprintln(w, "Template base directory:")

	info, err := os.Stat(base)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintf(w, "  [MISS] %s does not exist\n", base)
		if !fix {
			fmt.Fprintln(w, "         Run 'pytemplate init' to install the built-in templates")
			return 1
		}
		fmt.Fprintln(w, "  [FIX ] Installing the built-in templates...")
		if _, err := Install(w, base); err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return 1
		}
	case err != nil:
		fmt.Fprintf(w, "  [FAIL] %s: %v\n", base, err)
		return 1
	case !info.IsDir():
		fmt.Fprintf(w, "  [FAIL] %s exists but is not a directory\n", base)
		return 1
	default:
		fmt.Fprintf(w, "  [ OK ] %s exists\n", base)
	}

	problems := 0
	if err := platform.CheckWritable(base); err != nil {
		fmt.Fprintf(w, "  [WARN] %s is not writable: %v\n", base, err)
		problems++
	}

	if !Installed(base) {
		fmt.Fprintf(w, "  [MISS] %s not found\n", registry.FileName)
		if !fix {
			return problems + 1
		}
		if _, err := Install(w, base); err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return problems + 1
		}
	}

	reg, err := registry.Load(base)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return problems + 1
	}
	fmt.Fprintf(w, "  [ OK ] %s parses\n", registry.FileName)

	return problems + checkEntries(w, reg, base)
}

func checkEntries(w io.Writer, reg *registry.Registry, base string) int {
	problems := 0
	for _, k := range registry.Kinds {
		for _, name := range reg.Names(k) {
			ref, err := registry.Resolve(reg, base, k, name)
			if err != nil {
				fmt.Fprintf(w, "  [FAIL] %s/%s: %v\n", k.Section(), name, err)
				problems++
				continue
			}
			if ref.IsRemote() {
				fmt.Fprintf(w, "  [ OK ] %s/%s -> %s (remote, not checked)\n", k.Section(), name, ref.Remote)
				continue
			}
			fmt.Fprintf(w, "  [ OK ] %s/%s\n", k.Section(), name)
		}
	}
	return problems
}
