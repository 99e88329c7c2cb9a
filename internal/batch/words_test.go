package batch

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/snonux/ankismart/internal/testutil"
)

func TestReadWords(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "empty", content: "", want: nil},
		{name: "only whitespace", content: "   \n\t\r\n   ", want: nil},
		{name: "plain words", content: "apple\nserendipity\nrun out", want: []string{"apple", "serendipity", "run out"}},
		{name: "comments and blanks", content: "# fruits\napple\n\n  # more\n  pear  \r\n", want: []string{"apple", "pear"}},
		{name: "duplicates kept", content: "apple\npear\napple", want: []string{"apple", "pear", "apple"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadWords(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadWordFile(t *testing.T) {
	path := testutil.CreateWordFile(t, "ephemeral", "# skip", "eloquent")

	words, err := ReadWordFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ephemeral", "eloquent"}, words)
}

func TestReadWordFile_Missing(t *testing.T) {
	_, err := ReadWordFile(filepath.Join(t.TempDir(), "nope.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read word file")
}
