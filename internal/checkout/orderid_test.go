package checkout

import (
	"bytes"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderIDPattern = regexp.MustCompile(`^([A-Z]+)-(\d{8})-([0-9A-F]{4})$`)

func TestIDGeneratorUsesCurrentDate(t *testing.T) {
	g := NewIDGenerator("")
	g.now = func() time.Time { return time.Date(2026, 1, 2, 23, 59, 0, 0, time.UTC) }

	id, err := g.Next()
	require.NoError(t, err)

	m := orderIDPattern.FindStringSubmatch(id)
	require.NotNil(t, m, id)
	assert.Equal(t, "GA", m[1])
	assert.Equal(t, "20260102", m[2])
}

func TestIDGeneratorCustomPrefix(t *testing.T) {
	g := NewIDGenerator(" PR ")
	g.random = bytes.NewReader([]byte{0x00, 0x0f})

	id, err := g.At(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "PR-20261016-000F", id)
}

func TestIDGeneratorSurfacesRandomFailure(t *testing.T) {
	g := NewIDGenerator("GA")
	g.random = bytes.NewReader([]byte{0x01})

	_, err := g.Next()
	assert.Error(t, err)
}

func TestIDGeneratorSuffixVaries(t *testing.T) {
	g := NewIDGenerator("GA")
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		id, err := g.Next()
		require.NoError(t, err)
		require.Regexp(t, orderIDPattern, id)
		seen[id[len(id)-4:]] = true
	}
	assert.Greater(t, len(seen), 1)
}
