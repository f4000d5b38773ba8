package testutil

import (
	"io"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// Test binaries log at trace level, but only print with -test.v.
func init() {
	logrus.SetLevel(logrus.TraceLevel)

	for _, arg := range os.Args {
		if arg == "-test.v=true" {
			return
		}
	}
	logrus.StandardLogger().Out = io.Discard
}

// CaptureLogs records entries written to the standard logger until the test
// ends.
func CaptureLogs(t *testing.T) *test.Hook {
	hook := new(test.Hook)

	logger := logrus.StandardLogger()
	original := logger.ReplaceHooks(logrus.LevelHooks{})
	logger.AddHook(hook)
	t.Cleanup(func() {
		logger.ReplaceHooks(original)
	})

	return hook
}
