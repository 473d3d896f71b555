package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	r := NewRegistry(0, nil)
	defer r.Close()

	j := r.Create("upload.csv")
	require.NotEmpty(t, j.ID())

	j.Infof("converting %d rows", 3)
	j.Errorf("line %d: bad value", 7)
	j.SetResult("result.csv", []byte("a;b\n"))
	j.Finish()

	got, ok := r.Get(j.ID())
	require.True(t, ok)
	snap := got.Snapshot()
	require.True(t, snap.Done)
	require.True(t, snap.HasResult)
	require.Len(t, snap.Events, 2)
	require.Equal(t, Info, snap.Events[0].Level)
	require.Equal(t, Error, snap.Events[1].Level)
	require.Equal(t, "line 7: bad value", snap.Events[1].Text)

	name, data, ok := got.Result()
	require.True(t, ok)
	require.Equal(t, "result.csv", name)
	require.Equal(t, "a;b\n", string(data))
}

func TestSnapshotIsACopy(t *testing.T) {
	r := NewRegistry(0, nil)
	defer r.Close()
	j := r.Create("x")
	j.Infof("one")
	snap := j.Snapshot()
	j.Infof("two")
	require.Len(t, snap.Events, 1)
}

func TestPurge(t *testing.T) {
	r := NewRegistry(time.Minute, nil)
	defer r.Close()
	old := r.Create("old")
	old.mu.Lock()
	old.created = time.Now().Add(-2 * time.Minute)
	old.mu.Unlock()
	fresh := r.Create("fresh")

	r.purge()

	_, ok := r.Get(old.ID())
	require.False(t, ok)
	_, ok = r.Get(fresh.ID())
	require.True(t, ok)
}
