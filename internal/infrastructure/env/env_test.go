package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_TypedGetters(t *testing.T) {
	e := &EnvService{}

	t.Setenv("RELAY_INT", "9000")
	t.Setenv("RELAY_BAD_INT", "lots")
	t.Setenv("RELAY_BOOL", "true")
	t.Setenv("RELAY_FLOAT", "0.25")
	t.Setenv("RELAY_DUR", "45s")
	t.Setenv("RELAY_DUR_SECS", "1.5")

	assert.Equal(t, 9000, e.GetInt("RELAY_INT", 1))
	assert.Equal(t, 1, e.GetInt("RELAY_BAD_INT", 1))
	assert.Equal(t, 7, e.GetInt("RELAY_UNSET_INT", 7))
	assert.True(t, e.GetBool("RELAY_BOOL", false))
	assert.InDelta(t, 0.25, e.GetFloat("RELAY_FLOAT", 1), 1e-9)
	assert.Equal(t, 45*time.Second, e.GetDuration("RELAY_DUR", time.Second))
	assert.Equal(t, 1500*time.Millisecond, e.GetDuration("RELAY_DUR_SECS", time.Second))
	assert.Equal(t, time.Minute, e.GetDuration("RELAY_UNSET_DUR", time.Minute))
	assert.Equal(t, "fallback", e.GetWithDefault("RELAY_UNSET_STR", "fallback"))
}

func TestNewEnvService_LoadsOverlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RELAY_OVERLAY_KEY=base\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("RELAY_OVERLAY_KEY=overlay\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("RELAY_OVERLAY_KEY")
	})
	t.Setenv("APP_ENV", "test")

	e := NewEnvService()

	assert.Equal(t, "overlay", e.Get("RELAY_OVERLAY_KEY"))
}
