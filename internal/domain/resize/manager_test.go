package resize

import (
	"testing"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

type fakeRaiser struct {
	raised []string
}

func (f *fakeRaiser) Focus(id string) bool {
	f.raised = append(f.raised, id)
	return true
}

func start() types.Rect {
	return types.Rect{X: 100, Y: 100, Width: 400, Height: 300}
}

func TestBeginRaisesWindow(t *testing.T) {
	raiser := &fakeRaiser{}
	m := NewManager(raiser, 200, 150, nil)

	if !m.Begin("notes", HandleRight, start(), 500, 250) {
		t.Fatal("Begin failed")
	}
	if len(raiser.raised) != 1 || raiser.raised[0] != "notes" {
		t.Errorf("Expected focus on resize start, got %v", raiser.raised)
	}
	if !m.Active("notes") {
		t.Error("Expected active session")
	}
}

func TestBeginRejectsUnknownHandle(t *testing.T) {
	m := NewManager(nil, 200, 150, nil)
	if m.Begin("notes", Handle("diagonal"), start(), 0, 0) {
		t.Error("Expected unknown handle to be rejected")
	}
}

func TestEdgeHandles(t *testing.T) {
	cases := []struct {
		name   string
		handle Handle
		dx, dy float64
		want   types.Rect
	}{
		{"right grows width", HandleRight, 50, 999, types.Rect{X: 100, Y: 100, Width: 450, Height: 300}},
		{"bottom grows height", HandleBottom, 999, 40, types.Rect{X: 100, Y: 100, Width: 400, Height: 340}},
		{"left moves origin", HandleLeft, -30, 999, types.Rect{X: 70, Y: 100, Width: 430, Height: 300}},
		{"top moves origin", HandleTop, 999, -20, types.Rect{X: 100, Y: 80, Width: 400, Height: 320}},
	}
	for _, tc := range cases {
		m := NewManager(nil, 200, 150, nil)
		m.Begin("w", tc.handle, start(), 500, 250)

		got, ok := m.Move("w", 500+tc.dx, 250+tc.dy)
		if !ok {
			t.Fatalf("%s: Move failed", tc.name)
		}
		if got != tc.want {
			t.Errorf("%s: expected %+v, got %+v", tc.name, tc.want, got)
		}
	}
}

func TestCornerHandle(t *testing.T) {
	m := NewManager(nil, 200, 150, nil)
	m.Begin("w", HandleBottomRight, start(), 500, 400)

	got, _ := m.Move("w", 560, 450)
	want := types.Rect{X: 100, Y: 100, Width: 460, Height: 350}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
}

func TestMinimumFloors(t *testing.T) {
	m := NewManager(nil, 200, 150, nil)
	m.Begin("w", HandleTopLeft, start(), 100, 100)

	// Drag far past the opposite corner; both axes clamp and the fixed
	// edges stay put.
	got, _ := m.Move("w", 1000, 1000)
	want := types.Rect{X: 300, Y: 250, Width: 200, Height: 150}
	if got != want {
		t.Errorf("Expected clamped %+v, got %+v", want, got)
	}
}

func TestMoveWithoutSession(t *testing.T) {
	m := NewManager(nil, 200, 150, nil)
	if _, ok := m.Move("ghost", 10, 10); ok {
		t.Error("Expected no geometry without a session")
	}
}

func TestEndAndCleanup(t *testing.T) {
	m := NewManager(nil, 200, 150, nil)
	m.Begin("a", HandleRight, start(), 0, 0)
	m.Begin("b", HandleLeft, start(), 0, 0)

	if !m.End("a") {
		t.Error("End failed for active session")
	}
	if m.End("a") {
		t.Error("Expected second End to report false")
	}

	m.Cleanup()
	if m.Active("b") {
		t.Error("Expected cleanup to release every session")
	}
}
