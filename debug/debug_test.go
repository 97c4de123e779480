package debug

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDropErrorLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev)

	DropError("journal open", errors.New("disk gone"))
	DropError("GC tag", nil)

	entries := logs.AllUntimed()
	if len(entries) != 2 {
		t.Fatalf("got %d entries; want 2", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel || entries[0].Message != "journal open" {
		t.Errorf("first entry = %v %q", entries[0].Level, entries[0].Message)
	}
	if entries[0].ContextMap()["error"] != "disk gone" {
		t.Errorf("error field = %v", entries[0].ContextMap()["error"])
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].Message != "GC tag" {
		t.Errorf("second entry = %v %q", entries[1].Level, entries[1].Message)
	}
}

func TestDropMessageTag(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := SetLogger(zap.New(core))
	defer SetLogger(prev)

	DropMessage("REPLAY", "order verified")

	entries := logs.FilterField(zap.String("tag", "REPLAY")).AllUntimed()
	if len(entries) != 1 || entries[0].Message != "order verified" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestSetLoggerNilInstallsNop(t *testing.T) {
	prev := SetLogger(nil)
	defer SetLogger(prev)
	if Logger() == nil {
		t.Fatal("Logger() is nil after SetLogger(nil)")
	}
	DropMessage("NOP", "discarded")
}

func TestSetVerboseBuildFailureKeepsLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	installed := zap.New(core)
	prev := SetLogger(installed)
	defer SetLogger(prev)

	build := buildVerbose
	buildVerbose = func() (*zap.Logger, error) { return nil, errors.New("no sink") }
	defer func() { buildVerbose = build }()

	SetVerbose(true)

	if Logger() != installed {
		t.Fatal("SetVerbose replaced the logger after a failed build")
	}
	entries := logs.FilterMessage("verbose logger").AllUntimed()
	if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
		t.Fatalf("build failure not reported: %+v", logs.AllUntimed())
	}
}

func TestSetVerboseOverridesInstalledLogger(t *testing.T) {
	installed := zap.NewNop()
	prev := SetLogger(installed)
	defer SetLogger(prev)

	SetVerbose(false)
	if Logger() != installed {
		t.Fatal("SetVerbose(false) replaced the logger")
	}
	SetVerbose(true)
	if Logger() == installed {
		t.Fatal("SetVerbose(true) kept the installed logger")
	}
	if !Logger().Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("verbose logger is not at debug level")
	}
}
