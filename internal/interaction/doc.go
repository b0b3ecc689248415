// Package interaction turns pointer gestures on the node canvas into graph
// edits. It is pure logic: a front end feeds it synthetic or real events
// (Press, HoldElapsed, Motion, Release, Delete, Resize) and renders what it
// reports (NodeRect, Ghost, Lines).
//
// Each node's gesture runs through an explicit state machine:
//
//	Idle --Press--> Pressed --Motion--> Moving --Release--> Idle (position committed)
//	                Pressed --HoldElapsed--> Connecting --Release--> Idle (edge edited)
//
// Positions are normalized to the container and snapped to a 21 step grid.
// The container is "wide" or "tall" depending on its aspect ratio, and flow
// runs left to right or top to bottom accordingly.
package interaction
