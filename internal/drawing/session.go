// Package drawing implements the installation-zone drawing state machine: an
// ordered main polygon, exclusion holes, and a linear undo/redo history.
// Session is a value object; every transition returns a new Session so the
// machine stays testable in isolation from any rendering backend.
package drawing

import (
	"solarsight/internal/geometry"
	"solarsight/internal/model"
)

// Mode is the drawing state
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawingMain
	ModeDrawingHole
)

// Event describes what a click did to the session.
type Event int

const (
	EventNone Event = iota
	EventVertexAdded
	EventMainClosed
	EventHoleClosed
)

// Session tracks the main polygon in progress, completed exclusion holes and
// the undo/redo history of main-polygon snapshots. Completed holes are not
// covered by undo/redo.
type Session struct {
	Mode   Mode               `json:"mode"`
	Points []model.GeoPoint   `json:"points"`
	Holes  [][]model.GeoPoint `json:"holes"`
	Closed bool               `json:"closed"`

	// Vertex buffer of the hole currently being drawn
	HoleBuffer []model.GeoPoint `json:"hole_buffer,omitempty"`

	// Linear history of main-polygon snapshots. HistoryIndex points at the
	// snapshot matching Points.
	History      [][]model.GeoPoint `json:"history"`
	HistoryIndex int                `json:"history_index"`

	// Snap-to-close tolerance in meters
	SnapTolerance float64 `json:"snap_tolerance"`
}

// NewSession returns an idle session with an empty history baseline.
func NewSession(snapTolerance float64) Session {
	return Session{
		Mode:          ModeIdle,
		History:       [][]model.GeoPoint{nil},
		HistoryIndex:  0,
		SnapTolerance: snapTolerance,
	}
}

// Start enters drawing mode, discarding any prior session content.
func (s Session) Start() Session {
	fresh := NewSession(s.SnapTolerance)
	fresh.Mode = ModeDrawingMain
	return fresh
}

// AddVertex handles a map click in either drawing mode. When at least three
// vertices exist and the click lands within the snap tolerance of the ring's
// first vertex, the click closes the ring instead of adding a point.
func (s Session) AddVertex(p model.GeoPoint) (Session, Event) {
	switch s.Mode {
	case ModeDrawingMain:
		if s.snapsToFirst(s.Points, p) {
			s.Mode = ModeIdle
			s.Closed = true
			return s, EventMainClosed
		}
		s.Points = append(model.ClonePoints(s.Points), p)
		s.pushHistory()
		return s, EventVertexAdded

	case ModeDrawingHole:
		if s.snapsToFirst(s.HoleBuffer, p) {
			return s.completeHole()
		}
		s.HoleBuffer = append(model.ClonePoints(s.HoleBuffer), p)
		return s, EventVertexAdded
	}

	return s, EventNone
}

// BeginHole switches to hole drawing. Only permitted once the main polygon
// has at least three vertices; the main ring is implicitly closed so hole
// vertices can be placed inside it.
func (s Session) BeginHole() (Session, bool) {
	if len(s.Points) < 3 {
		return s, false
	}
	s.Mode = ModeDrawingHole
	s.Closed = true
	s.HoleBuffer = nil
	return s, true
}

// CompleteHole explicitly finishes the hole in progress. Buffers with fewer
// than three vertices are discarded as degenerate.
func (s Session) CompleteHole() (Session, Event) {
	if s.Mode != ModeDrawingHole {
		return s, EventNone
	}
	if len(s.HoleBuffer) < 3 {
		s.HoleBuffer = nil
		s.Mode = ModeDrawingMain
		return s, EventNone
	}
	return s.completeHole()
}

// Finish explicitly ends configuration. A ring with fewer than three points
// stays degenerate: area computes to zero downstream.
func (s Session) Finish() Session {
	s.Mode = ModeIdle
	s.Closed = len(s.Points) >= 3
	s.HoleBuffer = nil
	return s
}

// Undo moves the history pointer back one snapshot and restores it.
func (s Session) Undo() Session {
	if s.HistoryIndex <= 0 {
		return s
	}
	s.HistoryIndex--
	s.Points = model.ClonePoints(s.History[s.HistoryIndex])
	s.Closed = false
	return s
}

// Redo moves the history pointer forward one snapshot and restores it.
func (s Session) Redo() Session {
	if s.HistoryIndex >= len(s.History)-1 {
		return s
	}
	s.HistoryIndex++
	s.Points = model.ClonePoints(s.History[s.HistoryIndex])
	return s
}

// CanUndo reports whether an undo step exists.
func (s Session) CanUndo() bool { return s.HistoryIndex > 0 }

// CanRedo reports whether a redo step exists.
func (s Session) CanRedo() bool { return s.HistoryIndex < len(s.History)-1 }

// Clear empties the session entirely: points, holes and history.
func (s Session) Clear() Session {
	return NewSession(s.SnapTolerance)
}

// NetArea is the main polygon's geodesic area minus all completed holes,
// floored at zero.
func (s Session) NetArea() float64 {
	return geometry.NetArea(s.Points, s.Holes)
}

// Perimeter is the length of the main ring, closed when the ring is closed.
func (s Session) Perimeter() float64 {
	if len(s.Points) < 2 {
		return 0
	}
	points := s.Points
	if s.Closed {
		points = append(model.ClonePoints(points), points[0])
	}
	return geometry.Perimeter(points)
}

// Centroid of the main polygon, used for roof-segment matching.
func (s Session) Centroid() model.GeoPoint {
	return geometry.Centroid(s.Points)
}

// HasPolygon reports whether a non-degenerate main polygon exists.
func (s Session) HasPolygon() bool {
	return len(s.Points) >= 3
}

func (s Session) snapsToFirst(buffer []model.GeoPoint, p model.GeoPoint) bool {
	if len(buffer) < 3 {
		return false
	}
	return geometry.PointDistance(buffer[0], p) <= s.SnapTolerance
}

func (s *Session) completeHole() (Session, Event) {
	hole := model.ClonePoints(s.HoleBuffer)
	holes := make([][]model.GeoPoint, len(s.Holes), len(s.Holes)+1)
	copy(holes, s.Holes)
	s.Holes = append(holes, hole)
	s.HoleBuffer = nil
	s.Mode = ModeDrawingMain
	return *s, EventHoleClosed
}

// pushHistory appends a snapshot of Points, truncating any redo tail first.
// Standard linear-history discipline.
func (s *Session) pushHistory() {
	history := make([][]model.GeoPoint, s.HistoryIndex+1, s.HistoryIndex+2)
	copy(history, s.History[:s.HistoryIndex+1])
	s.History = append(history, model.ClonePoints(s.Points))
	s.HistoryIndex = len(s.History) - 1
}
