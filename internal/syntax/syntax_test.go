package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path    string
		content string
		wantErr bool
	}{
		"valid yaml": {
			path:    "config.yaml",
			content: "version: 2026.02.4\ntargets:\n  - path: VERSION\n",
		},
		"valid yml extension": {
			path:    "config.yml",
			content: "version: 2026.02.4\n",
		},
		"broken yaml": {
			path:    "config.yaml",
			content: "parent:\n child: a\n  grandchild: bad\n",
			wantErr: true,
		},
		"valid json": {
			path:    "package.json",
			content: `{"version": "2026.02.4"}`,
		},
		"broken json": {
			path:    "package.json",
			content: `{"version": "2026.02.4"`,
			wantErr: true,
		},
		"valid toml": {
			path:    "pyproject.toml",
			content: "[project]\nversion = \"2026.02.4\"\n",
		},
		"broken toml": {
			path:    "pyproject.toml",
			content: "[project\nversion = \"2026.02.4\"\n",
			wantErr: true,
		},
		"uppercase extension": {
			path:    "PYPROJECT.TOML",
			content: "[project\n",
			wantErr: true,
		},
		"plain file passes unchecked": {
			path:    "VERSION",
			content: "not structured at all {{{",
		},
		"python file passes unchecked": {
			path:    "config_server.py",
			content: "__version__ = '2026.02.4'\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Check(tt.path, []byte(tt.content))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.path, "error should name the file")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateYAMLMultiDocument(t *testing.T) {
	t.Parallel()

	input := "---\ndoc1: a\n---\ndoc2: b\n"
	assert.NoError(t, ValidateYAML(strings.NewReader(input)))
}

func TestValidateYAMLReportsLine(t *testing.T) {
	t.Parallel()

	input := "valid: yes\nalso_valid: true\n  bad_indent: boom\n"
	err := ValidateYAML(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line", "yaml errors should carry line info")
}
