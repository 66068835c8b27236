package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	Version = "v1.2.3"
	defer func() { Version = old }()

	if GetVersion() != "v1.2.3" {
		t.Errorf("GetVersion() = %q", GetVersion())
	}
	if !strings.HasPrefix(String(), "prism v1.2.3 (commit ") {
		t.Errorf("unexpected version line %q", String())
	}
}
