package internal

import "testing"

func TestSessionUserIDStable(t *testing.T) {
	a := sessionUserID("session-one")
	b := sessionUserID("session-one")
	if a != b {
		t.Errorf("same session mapped to different ids: %d vs %d", a, b)
	}

	if sessionUserID("session-one") == sessionUserID("session-two") {
		t.Error("distinct sessions mapped to the same id")
	}

	if sessionUserID("") != sessionUserID("mcp") {
		t.Error("empty session should use the default id")
	}
}
