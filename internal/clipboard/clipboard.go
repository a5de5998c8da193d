// Package clipboard provides the host clipboard-write capability.
package clipboard

import (
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// ErrUnavailable is returned when no clipboard tool exists on the host.
var ErrUnavailable = errors.New("no clipboard utility available")

// Writer is the clipboard capability the action layer depends on.
type Writer interface {
	Write(text string) error
}

// System writes to the OS clipboard by shelling out to the platform's
// clipboard tool (pbcopy, wl-copy, xclip, or clip).
type System struct{}

var _ Writer = System{}

// Write copies text to the system clipboard.
func (System) Write(text string) error {
	name, args, err := clipboardCommand()
	if err != nil {
		return err
	}

	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

func clipboardCommand() (string, []string, error) {
	switch runtime.GOOS {
	case "darwin":
		return "pbcopy", nil, nil
	case "windows":
		return "clip", nil, nil
	default:
		if _, err := exec.LookPath("wl-copy"); err == nil {
			return "wl-copy", nil, nil
		}
		if _, err := exec.LookPath("xclip"); err == nil {
			return "xclip", []string{"-selection", "clipboard"}, nil
		}
		return "", nil, ErrUnavailable
	}
}

// Memory is an in-process clipboard for tests.
type Memory struct {
	mu   sync.Mutex
	text string

	// Err, when set, is returned from Write.
	Err error
}

var _ Writer = (*Memory)(nil)

// Write stores the text.
func (m *Memory) Write(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.text = text
	return nil
}

// Text returns the last written text.
func (m *Memory) Text() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}
