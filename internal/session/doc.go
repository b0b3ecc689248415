// Package session is the headless editor. A Session owns one pipeline graph
// together with its canvas layout, the open configuration panel and the
// background runner.
//
// A Session is not safe for concurrent use. Every method must be called on
// the goroutine that runs its event loop; transports reach it through
// eventloop.Loop.Call.
package session
