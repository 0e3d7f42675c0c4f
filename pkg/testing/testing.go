package testing

import (
	"os"
	"path/filepath"
	"runtime"
)

// Root is the repository root, resolved from this file's location.
var Root string

func init() {
	// tests import this package for its side effect:
	//
	//   import (
	//     _ "liyu1981.xyz/energy-dashboard-service/pkg/testing"
	//   )
	//
	// so that relative paths (logs/, testdata/) resolve against the repo root
	// no matter which package directory `go test` runs in.

	_, filename, _, _ := runtime.Caller(0)
	Root = filepath.Join(filepath.Dir(filename), "..", "..")
	if err := os.Chdir(Root); err != nil {
		panic(err)
	}
}
