package config

import "github.com/falkyre/relsync/internal/scheme"

// GetDefaultConfigTemplate returns the fully commented starter config
// written by 'relsync init'.
func GetDefaultConfigTemplate() string {
	return `# relsync configuration
# Keeps one version value consistent across every release artifact.
# See 'relsync config show' for the effective configuration.

version:
  pattern: '^\d{4}\.\d{2}\.\d+$'    # version grammar (calendar: YYYY.0M.PATCH)
  monotonic: false                  # refuse bumps that go backward

# Files carrying the version marker, synchronized in order.
# Paths are relative to this file.
targets:
  - path: VERSION
    kind: raw                       # whole file is the version
  - path: pyproject.toml
    kind: assignment                # KEY = "VALUE" style line
    key: version
  - path: web/config_server.py
    kind: assignment
    key: __version__
  # - path: debian/control
  #   kind: pattern                 # custom matcher, one capture group
  #   pattern: '^Standards-Version: (\S+)$'

git:
  commit: false                     # commit the synchronized files after a bump
  tag: false                        # create an annotated release tag
  tag_prefix: v
  message: "Release {version}"

watch:
  interval: 2s                      # re-check cadence for 'relsync watch'

fetch:
  concurrency: 4                    # parallel downloads for 'relsync fetch'

# Version-pinned static assets for 'relsync fetch'.
assets: []
#  - url: https://cdn.jsdelivr.net/npm/xterm@5.3.0/lib/xterm.min.js
#    path: web/static/js/xterm.min.js
#    sha256: ""                     # optional integrity pin
`
}

// GetDefaults returns the default configuration values.
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"version.pattern":   scheme.DefaultPattern,
		"version.monotonic": false,
		// git: release hygiene is opt-in; a bump alone never touches git.
		"git.commit":     false,
		"git.tag":        false,
		"git.tag_prefix": "v",
		"git.message":    "Release {version}",
		// watch.interval: fallback cadence when no filesystem event arrives.
		"watch.interval": "2s",
		// fetch.concurrency: parallel downloads for pinned assets.
		"fetch.concurrency":  4,
		"skip_confirmations": false,
	}
}
