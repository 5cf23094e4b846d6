package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Severity grades a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
)

// Notification is a one-line status message shown after an action.
type Notification struct {
	Severity Severity
	Message  string
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) { f(n) }

var severityColor = map[Severity]*color.Color{
	SeveritySuccess: color.New(color.FgGreen),
	SeverityError:   color.New(color.FgRed, color.Bold),
	SeverityInfo:    color.New(color.FgCyan),
}

// WriterNotifier prints notifications as single lines.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier printing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// Notify prints n, colored by severity when the terminal supports it.
func (n *WriterNotifier) Notify(note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tag := "[" + string(note.Severity) + "]"
	if c, ok := severityColor[note.Severity]; ok {
		tag = c.Sprint(tag)
	}
	fmt.Fprintf(n.w, "%s %s\n", tag, note.Message)
}

// Recorder collects notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	notes []Notification
}

// Notify records n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

// All returns the notifications recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.notes))
	copy(out, r.notes)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Notification{}, false
	}
	return r.notes[len(r.notes)-1], true
}
