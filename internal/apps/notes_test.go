package apps

import "testing"

func TestNotesStateRoundTrip(t *testing.T) {
	n := NewNotes()
	n.SetBody("breach at 0400, lateral movement via smb")

	restored := NewNotes()
	restored.SetState(n.State())
	if restored.Body() != n.Body() {
		t.Errorf("restored body = %q, want %q", restored.Body(), n.Body())
	}

	doc := restored.CreateWindow()
	if doc["kind"] != "notes" {
		t.Errorf("document kind = %v", doc["kind"])
	}
	if doc["body"] != n.Body() {
		t.Errorf("document body = %v, want %q", doc["body"], n.Body())
	}
}

func TestNotesSetStateTolerant(t *testing.T) {
	n := NewNotes()
	n.SetBody("keep")

	n.SetState(nil)
	if n.Body() != "keep" {
		t.Error("nil state wiped the body")
	}
	n.SetState(map[string]interface{}{"body": 42})
	if n.Body() != "keep" {
		t.Error("wrongly typed body was applied")
	}
	n.SetState(map[string]interface{}{"unrelated": "x"})
	if n.Body() != "keep" {
		t.Error("unrelated state wiped the body")
	}
}
