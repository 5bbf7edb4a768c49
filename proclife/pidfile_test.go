package proclife

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPIDPath(t *testing.T) {
	tests := []struct {
		app  string
		want string
	}{
		{"/var/run/myapp.toml", "/var/run/myapp.pid"},
		{"/var/run/myapp", "/var/run/myapp.pid"},
		{"myapp.conf", "myapp.pid"},
		{"archive.tar.gz", "archive.tar.pid"},
		{"/srv/.env", "/srv/.env.pid"},
	}

	for _, test := range tests {
		require.Equal(t, test.want, PIDPath(test.app), "PIDPath(%q)", test.app)
	}
}

func TestPIDFile(t *testing.T) {
	tempPath := func(t *testing.T) string {
		return filepath.Join(t.TempDir(), "app.pid")
	}

	t.Run("write then read", func(t *testing.T) {
		path := tempPath(t)
		require.NoError(t, WritePID(path))

		content, err := ioutil.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, strconv.Itoa(os.Getpid()), string(content))

		pid, err := ReadPID(path)
		require.NoError(t, err)
		require.Equal(t, os.Getpid(), pid)
	})

	t.Run("read missing", func(t *testing.T) {
		pid, err := ReadPID(tempPath(t))
		require.NoError(t, err)
		require.Zero(t, pid)
	})

	t.Run("read first line only", func(t *testing.T) {
		path := tempPath(t)
		require.NoError(t, ioutil.WriteFile(path, []byte("1234\nleftover"), 0600))

		pid, err := ReadPID(path)
		require.NoError(t, err)
		require.Equal(t, 1234, pid)
	})

	t.Run("read corrupt", func(t *testing.T) {
		for _, content := range []string{"bogus", "-4", "0", ""} {
			path := tempPath(t)
			require.NoError(t, ioutil.WriteFile(path, []byte(content), 0600))

			_, err := ReadPID(path)
			require.Error(t, err, "content %q", content)
		}
	})

	t.Run("corrupt is a parse error", func(t *testing.T) {
		path := tempPath(t)
		require.NoError(t, ioutil.WriteFile(path, []byte("bogus"), 0600))

		_, err := ReadPID(path)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr), "expected ParseError, got %v", err)
		require.Equal(t, "bogus", parseErr.Content)
	})

	t.Run("delete missing", func(t *testing.T) {
		err := DeletePID(tempPath(t))

		var fileErr *FileError
		require.True(t, errors.As(err, &fileErr), "expected FileError, got %v", err)
		require.Equal(t, FileOpDelete, fileErr.Op)
	})

	t.Run("delete if owned removes own marker", func(t *testing.T) {
		path := tempPath(t)
		require.NoError(t, WritePID(path))
		require.NoError(t, DeletePIDIfOwned(path))

		pid, err := ReadPID(path)
		require.NoError(t, err)
		require.Zero(t, pid)
	})

	t.Run("delete if owned keeps foreign marker", func(t *testing.T) {
		path := tempPath(t)
		// Pid 1 is never the test process.
		require.NoError(t, ioutil.WriteFile(path, []byte("1"), 0600))

		require.NoError(t, DeletePIDIfOwned(path))

		pid, err := ReadPID(path)
		require.NoError(t, err)
		require.Equal(t, 1, pid)
	})

	t.Run("delete if owned on missing marker", func(t *testing.T) {
		require.NoError(t, DeletePIDIfOwned(tempPath(t)))
	})

	t.Run("empty path", func(t *testing.T) {
		require.Equal(t, ErrEmptyPath, WritePID(""))
		require.Equal(t, ErrEmptyPath, DeletePID(""))

		_, err := ReadPID("")
		require.Equal(t, ErrEmptyPath, err)
	})
}
