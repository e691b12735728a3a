package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegistry = `records:
  - registration_number: 12045-D
    full_name: Muhammad Ali
    father_name: Ahmed Ali
    status: active
  - registration_number: "77123-o"
    full_name: Sara Khan
    father_name: Imran Khan
`

func writeRegistry(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileRegistry_Lookup(t *testing.T) {
	reg, err := OpenFile(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	rec, err := reg.Lookup(context.Background(), "12045-D")
	require.NoError(t, err)
	assert.Equal(t, "Muhammad Ali", rec.FullName)
	assert.Equal(t, "active", rec.Status)

	// Register codes are indexed in canonical form.
	rec, err = reg.Lookup(context.Background(), "77123-O")
	require.NoError(t, err)
	assert.Equal(t, "Sara Khan", rec.FullName)

	_, err = reg.Lookup(context.Background(), "99999-Z")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = OpenFile(writeRegistry(t, "records: [\n  - {"))
	assert.Error(t, err)
}

func TestFileRegistry_ReloadKeepsRecordsOnError(t *testing.T) {
	path := writeRegistry(t, sampleRegistry)
	reg, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("records: [\n  - {"), 0o600))
	assert.Error(t, reg.Reload())
	assert.Equal(t, 2, reg.Len())
}

func TestFileRegistry_Watch(t *testing.T) {
	path := writeRegistry(t, sampleRegistry)
	reg, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, reg.Watch())
	defer func() { _ = reg.Close() }()

	updated := sampleRegistry + `  - registration_number: 555-K
    full_name: New Doctor
    father_name: Someone
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		_, err := reg.Lookup(context.Background(), "555-K")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond)
}

func TestFileRegistry_CloseWithoutWatch(t *testing.T) {
	reg, err := OpenFile(writeRegistry(t, sampleRegistry))
	require.NoError(t, err)
	assert.NoError(t, reg.Close())
}

func TestFileRegistry_VerifyExpiry(t *testing.T) {
	reg, err := OpenFile(writeRegistry(t, `records:
  - registration_number: 12045-D
    full_name: Muhammad Ali
    valid_date: "2001-01-01"
  - registration_number: 77123-O
    full_name: Sara Khan
    valid_date: "2031-12-31"
`))
	require.NoError(t, err)
	clock := WithClock(func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) })

	v, err := VerifyCode(context.Background(), reg, "12O45-D", clock)
	require.NoError(t, err)
	assert.True(t, v.Found)
	assert.True(t, v.Expired)
	assert.False(t, v.Valid())

	v, err = VerifyCode(context.Background(), reg, "77123-O", clock)
	require.NoError(t, err)
	assert.True(t, v.Found)
	assert.False(t, v.Expired)
	assert.True(t, v.Valid())
}
