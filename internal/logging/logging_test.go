package logging

import (
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSetup(t *testing.T) {
	Setup("debug", "json")
	if logrus.GetLevel() != logrus.DebugLevel {
		t.Errorf("level: got %s", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.JSONFormatter); !ok {
		t.Errorf("formatter: got %T", logrus.StandardLogger().Formatter)
	}

	Setup("nonsense", "text")
	if logrus.GetLevel() != logrus.InfoLevel {
		t.Errorf("level: got %s", logrus.GetLevel())
	}
	if _, ok := logrus.StandardLogger().Formatter.(*logrus.TextFormatter); !ok {
		t.Errorf("formatter: got %T", logrus.StandardLogger().Formatter)
	}
}
