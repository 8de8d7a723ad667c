//go:build e2e

// Package e2e provides end-to-end tests for the relsync CLI: every test
// runs the built binary against a throwaway project directory.
package e2e

import (
	"github.com/falkyre/relsync/internal/testutil"
)

// threeTargetConfig declares the canonical target set: a plain VERSION
// file, a TOML manifest, and a Python source constant.
const threeTargetConfig = `targets:
  - path: VERSION
    kind: raw
  - path: pyproject.toml
    kind: assignment
    key: version
  - path: web/config_server.py
    kind: assignment
    key: __version__
`

// seedProject writes the three target files at the given version.
func seedProject(env *testutil.E2EEnv, version string) {
	env.WriteConfig(threeTargetConfig)
	env.WriteFile("VERSION", version+"\n")
	env.WriteFile("pyproject.toml", "[project]\nname = \"hub\"\nversion = \""+version+"\"\n")
	env.WriteFile("web/config_server.py", "import os\n\n__version__ = \""+version+"\"\n")
}
