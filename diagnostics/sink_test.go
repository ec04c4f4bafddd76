package diagnostics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-lab/go/rtx"

	"github.com/uwan-net/dflood/diagnostics"
)

func TestSinkWritesOnlyEnabledFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestSink")
	rtx.Must(err, "could not create tempdir")
	defer os.RemoveAll(dir)

	cwd, err := os.Getwd()
	rtx.Must(err, "could not get cwd")
	rtx.Must(os.Chdir(dir), "could not chdir")
	defer os.Chdir(cwd)

	s, err := diagnostics.NewSink(7, true, false)
	rtx.Must(err, "could not create sink")
	defer s.Close()

	s.LogError("something went wrong: %d", 42)
	s.LogData([]byte{0x01, 0x02}) // no-op: data file not enabled

	if _, err := os.Stat(filepath.Join(dir, "data_7.txt")); !os.IsNotExist(err) {
		t.Errorf("expected data_7.txt not to be created, stat err = %v", err)
	}

	contents, err := os.ReadFile(filepath.Join(dir, "errors_7.txt"))
	rtx.Must(err, "could not read errors_7.txt")
	if !strings.Contains(string(contents), "something went wrong: 42") {
		t.Errorf("errors_7.txt missing expected line, got: %q", contents)
	}
}

func TestSinkBothFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "TestSinkBoth")
	rtx.Must(err, "could not create tempdir")
	defer os.RemoveAll(dir)

	cwd, err := os.Getwd()
	rtx.Must(err, "could not get cwd")
	rtx.Must(os.Chdir(dir), "could not chdir")
	defer os.Chdir(cwd)

	s, err := diagnostics.NewSink(3, true, true)
	rtx.Must(err, "could not create sink")
	s.LogData([]byte{0xDE, 0xAD})
	rtx.Must(s.Close(), "could not close sink")

	contents, err := os.ReadFile(filepath.Join(dir, "data_3.txt"))
	rtx.Must(err, "could not read data_3.txt")
	if !strings.Contains(string(contents), "dead") {
		t.Errorf("data_3.txt missing expected hex dump, got: %q", contents)
	}
}
