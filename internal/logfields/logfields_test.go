package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Page", KeyPage, "struct.Button.html", Page("struct.Button.html")},
		{"URL", KeyURL, "https://x", URL("https://x")},
		{"Section", KeySection, "implementations", Section("implementations")},
		{"Property", KeyProperty, "enabled", Property("enabled")},
		{"Inherit", KeyInherit, "Container", Inherit("Container")},
		{"State", KeyState, "merged", State("merged")},
		{"Path", KeyPath, "/tmp/doc", Path("/tmp/doc")},
	}
	for _, c := range cases {
		if c.attr.Key != c.attrKey {
			t.Fatalf("%s key=%s want %s", c.name, c.attr.Key, c.attrKey)
		}
		if c.attr.Value.String() != c.attrVal {
			t.Fatalf("%s val=%s want %s", c.name, c.attr.Value.String(), c.attrVal)
		}
	}
}

func TestErrorNil(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("nil error rendered %q", got)
	}
	if got := Error(errors.New("x")).Value.String(); got != "x" {
		t.Fatalf("error rendered %q", got)
	}
}
