// Package notify is the channel through which client components surface
// transient messages to the user. Components only emit; rendering is up to
// the Notifier implementation.
package notify

import (
	"fmt"
	"io"
	"sync"
)

type Kind int

const (
	KindSuccess Kind = iota
	KindError
)

func (k Kind) String() string {
	if k == KindError {
		return "error"
	}
	return "success"
}

type Notification struct {
	Kind    Kind
	Message string
}

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Printer writes notifications as single lines to w.
type Printer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) Success(msg string) { p.print("[ok]", msg) }

func (p *Printer) Error(msg string) { p.print("[error]", msg) }

func (p *Printer) print(prefix, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s\n", prefix, msg)
}

// Recorder keeps notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Success(msg string) { r.add(KindSuccess, msg) }

func (r *Recorder) Error(msg string) { r.add(KindError, msg) }

func (r *Recorder) add(k Kind, msg string) {
	r.mu.Lock()
	r.items = append(r.items, Notification{Kind: k, Message: msg})
	r.mu.Unlock()
}

// All returns a copy of everything recorded so far.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Errors returns the messages of error notifications.
func (r *Recorder) Errors() []string {
	var out []string
	for _, n := range r.All() {
		if n.Kind == KindError {
			out = append(out, n.Message)
		}
	}
	return out
}
