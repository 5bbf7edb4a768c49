package proclife

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// FileOp identifies which operation on a pid file failed.
type FileOp string

const (
	FileOpOpen   FileOp = "open"
	FileOpCreate FileOp = "create"
	FileOpRead   FileOp = "read"
	FileOpWrite  FileOp = "write"
	FileOpDelete FileOp = "delete"
)

// FileError wraps an I/O failure on a pid file.
type FileError struct {
	Op   FileOp
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("failed to %s pid file %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// ParseError is returned when a pid file exists but its content is not a
// positive decimal integer.
type ParseError struct {
	Path    string
	Content string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse content of pid file %s: %q", e.Path, e.Content)
}

// ErrEmptyPath is returned when a pid file path is empty.
var ErrEmptyPath = errors.New("pid file path is empty")

// PIDPath derives the marker path for the given application file path by
// replacing its extension with "pid". A path without an extension gets ".pid"
// appended.
func PIDPath(appPath string) string {
	ext := pathExt(appPath)
	return appPath[:len(appPath)-len(ext)] + ".pid"
}

// pathExt is filepath.Ext, except that a leading-dot file name ("/.env") is
// not treated as an extension to replace.
func pathExt(path string) string {
	for i := len(path) - 1; i >= 0 && !os.IsPathSeparator(path[i]); i-- {
		if path[i] == '.' && i > 0 && !os.IsPathSeparator(path[i-1]) {
			return path[i:]
		}
	}
	return ""
}

// WritePID creates or overwrites the pid file at path with the current
// process id in decimal text.
func WritePID(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	f, err := os.Create(path)
	if err != nil {
		return &FileError{Op: FileOpCreate, Path: path, Err: err}
	}

	if _, err := f.WriteString(strconv.Itoa(os.Getpid())); err != nil {
		f.Close()
		return &FileError{Op: FileOpWrite, Path: path, Err: err}
	}

	if err := f.Close(); err != nil {
		return &FileError{Op: FileOpWrite, Path: path, Err: err}
	}

	return nil
}

// ReadPID reads the pid recorded at path. It returns 0 and no error if the
// file does not exist; recorded pids are always positive, so 0 never
// collides with a real record.
func ReadPID(path string) (int, error) {
	if path == "" {
		return 0, ErrEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, &FileError{Op: FileOpOpen, Path: path, Err: err}
	}
	defer f.Close()

	// Only the first line matters; anything after it is ignored.
	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && line == "" {
		return 0, &FileError{Op: FileOpRead, Path: path, Err: err}
	}

	content := strings.TrimSpace(line)

	pid, err := strconv.Atoi(content)
	if err != nil || pid <= 0 {
		return 0, &ParseError{Path: path, Content: content}
	}

	return pid, nil
}

// DeletePID removes the pid file at path. Removing a file that does not
// exist is an error; callers that want idempotence should use
// DeletePIDIfOwned.
func DeletePID(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	if err := os.Remove(path); err != nil {
		return &FileError{Op: FileOpDelete, Path: path, Err: err}
	}

	return nil
}

// DeletePIDIfOwned removes the pid file at path only if the recorded pid is
// the current process' own. A missing file or a record belonging to another
// process is a no-op; this is what keeps a Guard from deleting a marker that
// a newer instance has since rewritten.
func DeletePIDIfOwned(path string) error {
	pid, err := ReadPID(path)
	if err != nil {
		return err
	}

	if pid != os.Getpid() {
		return nil
	}

	return DeletePID(path)
}
