package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	once sync.Once
	base *logrus.Logger
)

// GetProjectLogger returns the shared project logger.
func GetProjectLogger() *logrus.Entry {
	once.Do(func() {
		base = logrus.New()
		base.SetOutput(os.Stderr)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if os.Getenv("NOTECAST_DEBUG") != "" {
			base.SetLevel(logrus.DebugLevel)
		}
	})
	return base.WithField("name", "notecast")
}
