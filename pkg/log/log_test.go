package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestForComponentMemoizes(t *testing.T) {
	a := ForComponent("memoize-test")
	b := ForComponent("memoize-test")
	if a != b {
		t.Error("ForComponent should return the same logger for the same name")
	}
}

func TestPrefixAndLevels(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(bytes.NewBuffer(nil))

	l := ForComponent("prefix-test")
	l.Infof("hello %d", 42)
	l.Warnf("careful")
	l.Errorf("broken")

	out := buf.String()
	for _, want := range []string{"INFO [prefix-test>] hello 42", "WARN [prefix-test>] careful", "ERROR [prefix-test>] broken"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(bytes.NewBuffer(nil))

	l := ForComponent("debug-default")
	l.Debugf("should not appear")

	if strings.Contains(buf.String(), "should not appear") {
		t.Error("Debug output should be suppressed by default")
	}
}

func TestDebugPerComponent(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(bytes.NewBuffer(nil))

	EnableDebugFor("debug-on")
	ForComponent("debug-on").Debugf("visible")
	ForComponent("debug-off").Debugf("hidden")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Error("Debug output should appear for the enabled component")
	}
	if strings.Contains(out, "hidden") {
		t.Error("Debug output should stay suppressed for other components")
	}
}

func TestGlobalDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(bytes.NewBuffer(nil))

	SetGlobalDebug(true)
	defer SetGlobalDebug(false)

	ForComponent("debug-global").Debugf("globally visible")
	if !strings.Contains(buf.String(), "globally visible") {
		t.Error("Global debug should enable debug output everywhere")
	}
}
