package version

import (
	"runtime/debug"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func withBuildInfo(t *testing.T, bi *debug.BuildInfo, ok bool) {
	t.Helper()
	prev := readBuildInfo
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, ok }
	t.Cleanup(func() { readBuildInfo = prev })
}

func withStamps(t *testing.T, v, commit, built string) {
	t.Helper()
	pv, pc, pb := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = v, commit, built
	t.Cleanup(func() { Version, GitCommit, BuildTime = pv, pc, pb })
}

func TestGetFromLinkerStamps(t *testing.T) {
	withStamps(t, "v1.2.3", "abcdef1234567", "2026-01-02T03:04:05Z")
	withBuildInfo(t, nil, false)

	info := Get()
	assert.Equal(t, "v1.2.3", info.Version)
	assert.True(t, info.IsRelease())
	assert.Equal(t, "v1.2.3 (abcdef1)", info.Short())
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), info.BuildTime)
	assert.Contains(t, info.Detailed(), "Commit: abcdef1234567")
}

func TestGetFromModuleBuildInfo(t *testing.T) {
	withStamps(t, "dev", "unknown", "unknown")
	withBuildInfo(t, &debug.BuildInfo{
		Main: debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-05-06T07:08:09Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}, true)

	info := Get()
	assert.Equal(t, "dev-0123456", info.Version)
	assert.False(t, info.IsRelease())
	assert.Equal(t, "dev-0123456", info.Short())
	assert.True(t, info.Dirty)
	assert.False(t, info.BuildTime.IsZero())
	assert.Contains(t, info.Detailed(), "Working directory: dirty")
}

func TestParseBuildTime(t *testing.T) {
	assert.True(t, parseBuildTime("unknown").IsZero())
	assert.True(t, parseBuildTime("yesterday").IsZero())
	assert.False(t, parseBuildTime("2026-01-02 03:04:05").IsZero())
}
