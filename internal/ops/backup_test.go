package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasknest/internal/store"
)

func TestBackupRestoreDataDir_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "auth"), 0o755))

	st := store.New()
	st.Add("alice", "laundry", "whites")
	st.Add("bob", "taxes", "april")
	require.NoError(t, st.Save(filepath.Join(src, "tasks.snapshot.json")))
	require.NoError(t, os.WriteFile(filepath.Join(src, "auth", "auth.json"), []byte(`{"usersById":{}}`), 0o600))

	archive := filepath.Join(t.TempDir(), "backups", "tasknest.tar.gz")
	require.NoError(t, BackupDataDir(src, archive))

	restored := filepath.Join(t.TempDir(), "restored")
	require.NoError(t, RestoreDataDir(archive, restored))

	rebuilt, err := store.Load(filepath.Join(restored, "tasks.snapshot.json"))
	require.NoError(t, err)
	assert.Equal(t, st.List("alice"), rebuilt.List("alice"))
	assert.Equal(t, st.List("bob"), rebuilt.List("bob"))

	authBytes, err := os.ReadFile(filepath.Join(restored, "auth", "auth.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"usersById":{}}`, string(authBytes))
}

func TestRestoreDataDir_RejectsTraversal(t *testing.T) {
	_, err := sanitizeArchiveRelPath("../escape.json")
	assert.Error(t, err)
	_, err = sanitizeArchiveRelPath("/abs/path.json")
	assert.Error(t, err)
}
