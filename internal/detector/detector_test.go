package detector

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource 依序回傳預先設定的時間戳
type fakeSource struct {
	times []time.Time
	errs  []error
	calls int
}

func (f *fakeSource) ModTime(string) (time.Time, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return time.Time{}, f.errs[i]
	}
	return f.times[i], nil
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPoll_FirstTickAlwaysChanges(t *testing.T) {
	// 時間戳比零值還早也一樣要觸發
	for _, ts := range []time.Time{base, base.Add(-24 * time.Hour), time.Unix(1, 0)} {
		src := &fakeSource{times: []time.Time{ts}}

		changed, next, err := Poll(src, "doc.ves", Initial())
		require.NoError(t, err)
		assert.True(t, changed)
		assert.False(t, next.FirstTick)
		assert.Equal(t, ts, next.LastModified)
	}
}

func TestPoll_StrictlyNewer(t *testing.T) {
	testCases := []struct {
		name    string
		next    time.Time
		changed bool
	}{
		{"newer", base.Add(time.Nanosecond), true},
		{"equal", base, false},
		{"older", base.Add(-time.Second), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &fakeSource{times: []time.Time{tc.next}}
			prev := State{LastModified: base}

			changed, next, err := Poll(src, "doc.ves", prev)
			require.NoError(t, err)
			assert.Equal(t, tc.changed, changed)
			assert.Equal(t, tc.next, next.LastModified)
		})
	}
}

func TestPoll_UnchangedTimestampTriggersOnce(t *testing.T) {
	src := &fakeSource{times: []time.Time{base, base, base, base, base}}
	state := Initial()

	triggers := 0
	for i := 0; i < 5; i++ {
		changed, next, err := Poll(src, "doc.ves", state)
		require.NoError(t, err)
		if changed {
			triggers++
		}
		state = next
	}

	assert.Equal(t, 1, triggers)
}

func TestPoll_MetadataError(t *testing.T) {
	src := &fakeSource{errs: []error{fs.ErrNotExist}}
	prev := State{LastModified: base}

	changed, next, err := Poll(src, "gone.ves", prev)
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, prev, next)

	var metaErr *MetadataError
	require.True(t, errors.As(err, &metaErr))
	assert.Equal(t, "gone.ves", metaErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "gone.ves")
}

func TestOSSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.ves")
	require.NoError(t, os.WriteFile(path, []byte("docclass article"), 0644))

	stamp := base
	require.NoError(t, os.Chtimes(path, stamp, stamp))

	got, err := OSSource{}.ModTime(path)
	require.NoError(t, err)
	assert.True(t, got.Equal(stamp))

	_, err = OSSource{}.ModTime(filepath.Join(t.TempDir(), "missing.ves"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestOSSource_DetectsRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.ves")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))
	require.NoError(t, os.Chtimes(path, base, base))

	changed, state, err := Poll(OSSource{}, path, Initial())
	require.NoError(t, err)
	require.True(t, changed)

	changed, state, err = Poll(OSSource{}, path, state)
	require.NoError(t, err)
	assert.False(t, changed)

	later := base.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))

	changed, _, err = Poll(OSSource{}, path, state)
	require.NoError(t, err)
	assert.True(t, changed)
}
