package session

import (
	"errors"
	"fmt"

	"github.com/vk/pipegraph/internal/interaction"
)

// ErrInvalidEvent is returned for pointer events of an unknown kind.
var ErrInvalidEvent = errors.New("invalid pointer event")

// PointerKind is the phase of a pointer gesture.
type PointerKind string

const (
	PointerPress   PointerKind = "press"
	PointerMotion  PointerKind = "motion"
	PointerRelease PointerKind = "release"
	// PointerCancel abandons the gesture in progress, e.g. when the pointer
	// leaves the container.
	PointerCancel  PointerKind = "cancel"
)

// PointerEvent is a pointer phase at a pixel position of the container.
type PointerEvent struct {
	Kind PointerKind `json:"kind"`
	X    float64     `json:"x"`
	Y    float64     `json:"y"`
}

func (e PointerEvent) point() interaction.Point {
	return interaction.Point{X: e.X, Y: e.Y}
}

// Pointer feeds one pointer event to the canvas. A press on a node arms the
// hold timer; if the pointer neither moves nor lifts before HoldDelay the
// gesture turns into a connection drag. Presses on empty space are ignored.
// A press while a gesture is still open means its release was lost, so that
// gesture is abandoned first.
func (s *Session) Pointer(ev PointerEvent) (interaction.ReleaseResult, error) {
	switch ev.Kind {
	case PointerPress:
		s.cancelGesture()
		id, ok := s.canvas.NodeAt(ev.point())
		if !ok {
			return interaction.ReleaseResult{}, nil
		}
		if err := s.canvas.Press(id, ev.point()); err != nil {
			return interaction.ReleaseResult{}, err
		}
		seq := s.holdSeq
		s.hold = s.loop.After(interaction.HoldDelay, func() {
			if s.holdSeq != seq {
				return
			}
			s.hold = nil
			if s.canvas.HoldElapsed(id) {
				s.logger.Debug("Connect gesture started.", "node", id)
			}
		})
	case PointerMotion:
		s.canvas.Motion(ev.point())
	case PointerRelease:
		s.stopHold()
		res := s.canvas.Release(ev.point())
		if res.Outcome != interaction.NoChange {
			s.logger.Debug("Gesture finished.", "outcome", res.Outcome.String(), "parent", res.Parent, "child", res.Child)
		}
		return res, nil
	case PointerCancel:
		s.cancelGesture()
	default:
		return interaction.ReleaseResult{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, ev.Kind)
	}
	return interaction.ReleaseResult{}, nil
}

func (s *Session) cancelGesture() {
	s.stopHold()
	if s.canvas.Cancel() {
		s.logger.Debug("Unfinished gesture abandoned.")
	}
}

// stopHold disarms a pending hold timer. Bumping the sequence also voids a
// timer that already fired but whose callback is still queued on the loop.
func (s *Session) stopHold() {
	s.holdSeq++
	if s.hold != nil {
		s.hold.Stop()
		s.hold = nil
	}
}
