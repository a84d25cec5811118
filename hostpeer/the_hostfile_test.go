package hostpeer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeHostFile(t *testing.T, contents string) string {
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestParseHostFileSplitsOnWhitespace(t *testing.T) {
	path := writeHostFile(t, "alpha.example\nbeta.example\tgamma.example\n")
	tokens, err := ParseHostFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha.example", "beta.example", "gamma.example"}, tokens)
}

func TestParseHostFileSkipsOversizedTokens(t *testing.T) {
	huge := make([]byte, maxTokenBytes+1)
	for i := range huge {
		huge[i] = 'a'
	}
	path := writeHostFile(t, "short.example "+string(huge)+" other.example")
	tokens, err := ParseHostFile(path)
	require.NoError(t, err)
	require.Equal(t, []string{"short.example", "other.example"}, tokens)
}

func TestParseHostFileMissingFile(t *testing.T) {
	_, err := ParseHostFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)
}

func TestResolveHostFileFailsWhenNothingResolves(t *testing.T) {
	path := writeHostFile(t, "nonesuch.invalid")
	_, err := ResolveHostFile(path)
	require.Error(t, err)
}
