package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	v, b, c := Version, BuildDate, Commit
	t.Cleanup(func() { Version, BuildDate, Commit = v, b, c })

	Version, BuildDate, Commit = "1.2.3", "2026-01-02", ""
	assert.Equal(t, "fakeset 1.2.3 (built 2026-01-02)", String())

	Commit = "abc123"
	assert.Equal(t, "fakeset 1.2.3 (abc123, built 2026-01-02)", String())
	assert.Equal(t, "1.2.3", GetVersion())
	assert.Equal(t, "2026-01-02", GetBuildDate())
}
