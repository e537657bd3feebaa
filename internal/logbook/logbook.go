// Package logbook journals an editing session to a plain text file, one
// line per event, so operators can see what was submitted and why a
// submission was refused.
package logbook

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level represents the severity of a journal entry.
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logbook appends entries to a file. All methods are safe on a nil receiver
// and for concurrent use.
type Logbook struct {
	path    string
	session string
	clock   func() time.Time

	mu     sync.Mutex
	seeded bool
	recent []string // last recentLines lines of the file, oldest first
	total  int
}

// recentLines bounds what Tail can return without rereading the file.
const recentLines = 64

// New creates a logbook that writes to path with a fresh session tag.
func New(path string) (*Logbook, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logbook: create %s: %w", filepath.Dir(path), err)
	}
	return &Logbook{
		path:    path,
		session: uuid.NewString()[:8],
		clock:   time.Now,
	}, nil
}

// Daily opens the journal for today inside dir.
func Daily(dir string) (*Logbook, error) {
	name := "tourdesk-" + time.Now().UTC().Format("20060102") + ".log"
	return New(filepath.Join(dir, name))
}

// Path returns the file backing this logbook.
func (l *Logbook) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Session returns the tag written on every line of this logbook.
func (l *Logbook) Session() string {
	if l == nil {
		return ""
	}
	return l.session
}

// Append writes a single entry. Multi-line messages are folded onto one line.
func (l *Logbook) Append(level Level, message string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	message = strings.Join(strings.Fields(message), " ")
	line := fmt.Sprintf("%s %-5s [%s] %s\n",
		l.clock().UTC().Format(time.RFC3339),
		string(level),
		l.session,
		message,
	)
	l.seed()
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer file.Close()
	if _, err := file.WriteString(line); err != nil {
		return
	}
	l.remember(strings.TrimSuffix(line, "\n"))
}

// Tail returns up to maxLines of the most recent entries and the total
// number of lines in the file. The file is read once, on first use; later
// entries come from Append.
func (l *Logbook) Tail(maxLines int) ([]string, int) {
	if l == nil || maxLines <= 0 {
		return nil, 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seed()
	if len(l.recent) == 0 {
		return nil, l.total
	}
	start := max(len(l.recent)-maxLines, 0)
	return append([]string(nil), l.recent[start:]...), l.total
}

// seed loads the tail of an existing file. Callers hold mu.
func (l *Logbook) seed() {
	if l.seeded {
		return
	}
	l.seeded = true
	file, err := os.Open(l.path)
	if err != nil {
		return
	}
	defer file.Close()
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		l.remember(scanner.Text())
	}
}

func (l *Logbook) remember(line string) {
	l.total++
	if len(l.recent) == recentLines {
		l.recent = append(l.recent[:0], l.recent[1:]...)
	}
	l.recent = append(l.recent, line)
}

// Info appends an informational entry.
func (l *Logbook) Info(format string, args ...any) {
	l.Append(LevelInfo, fmt.Sprintf(format, args...))
}

// Warn appends a warning entry.
func (l *Logbook) Warn(format string, args ...any) {
	l.Append(LevelWarn, fmt.Sprintf(format, args...))
}

// Error appends an error entry.
func (l *Logbook) Error(format string, args ...any) {
	l.Append(LevelError, fmt.Sprintf(format, args...))
}
