package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// logLevels are the accepted values of --log-level.
var logLevels = []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}

var logLevelsList = strings.Join(logLevels, ", ")

// configureLogging sets up the standard logrus logger. Logs go to w, which
// is stderr outside of tests.
func configureLogging(level string, w io.Writer) error {
	found := false
	for _, l := range logLevels {
		if l == strings.ToLower(level) {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("log level %q is not supported, choose from: %s", level, logLevelsList)
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	logrus.SetLevel(lvl)
	logrus.SetOutput(w)
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debugf("logging at level %s", logrus.GetLevel())
	}
	return nil
}
