// Package progress delivers run progress to whoever started the run: a log,
// a terminal bar, a socket.io namespace or the editor's event loop.
package progress

import (
	"github.com/vk/pipegraph/internal/eventloop"
)

// Observer receives (current, total, label) updates during a run. A total of
// zero means the amount of remaining work is unknown. Finished is always the
// last call; err joins every node failure of the run.
type Observer interface {
	Progress(current, total int, label string)
	Finished(err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Progress(int, int, string) {}
func (Nop) Finished(error)            {}

// Func adapts plain functions. Either may be nil.
type Func struct {
	OnProgress func(current, total int, label string)
	OnFinished func(err error)
}

func (f Func) Progress(current, total int, label string) {
	if f.OnProgress != nil {
		f.OnProgress(current, total, label)
	}
}

func (f Func) Finished(err error) {
	if f.OnFinished != nil {
		f.OnFinished(err)
	}
}

type multi []Observer

// Multi fans every call out to each non-nil observer in order.
func Multi(observers ...Observer) Observer {
	var m multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	return m
}

func (m multi) Progress(current, total int, label string) {
	for _, o := range m {
		o.Progress(current, total, label)
	}
}

func (m multi) Finished(err error) {
	for _, o := range m {
		o.Finished(err)
	}
}

type onLoop struct {
	poster eventloop.Poster
	next   Observer
}

// OnLoop forwards calls onto the poster's goroutine so next can touch editor
// state safely from a worker's run.
func OnLoop(poster eventloop.Poster, next Observer) Observer {
	return &onLoop{poster: poster, next: next}
}

func (o *onLoop) Progress(current, total int, label string) {
	o.poster.Post(func() { o.next.Progress(current, total, label) })
}

func (o *onLoop) Finished(err error) {
	o.poster.Post(func() { o.next.Finished(err) })
}
