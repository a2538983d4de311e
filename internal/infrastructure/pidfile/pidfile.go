// Package pidfile keeps a single user-daemon per PID file.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// AlreadyRunningError is returned by Acquire while the recorded process lives
type AlreadyRunningError struct {
	Path string
	PID  int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("user-daemon is already running (PID %d, %s)", e.PID, e.Path)
}

// PIDFile records the daemon's process ID
type PIDFile struct {
	path     string
	pid      int
	isAlive  func(pid int) bool
	acquired bool
}

// New creates a PIDFile for the current process
func New(path string) *PIDFile {
	return &PIDFile{path: path, pid: os.Getpid(), isAlive: isProcessRunning}
}

// Path returns the file location
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire writes the current PID. A stale or unreadable file is replaced;
// a file naming a live process fails with *AlreadyRunningError unless force
// is set.
func (p *PIDFile) Acquire(force bool) error {
	if pid, err := p.read(); err == nil && pid != p.pid && p.isAlive(pid) && !force {
		return &AlreadyRunningError{Path: p.path, PID: pid}
	} else if err != nil && !errors.Is(err, os.ErrNotExist) && !errors.Is(err, strconv.ErrSyntax) && !errors.Is(err, strconv.ErrRange) {
		return fmt.Errorf("failed to read existing PID file: %w", err)
	}

	if err := os.WriteFile(p.path, []byte(fmt.Sprintf("%d\n", p.pid)), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	p.acquired = true
	return nil
}

// Release removes the file if it still names this process. A file taken
// over by a forced start is left alone.
func (p *PIDFile) Release() error {
	if !p.acquired {
		return nil
	}
	p.acquired = false

	pid, err := p.read()
	if errors.Is(err, os.ErrNotExist) || (err == nil && pid != p.pid) {
		return nil
	}

	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

func (p *PIDFile) read() (int, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// isProcessRunning sends signal 0, which only checks that the process exists
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: the process exists but belongs to someone else
	return errors.Is(err, syscall.EPERM)
}
