package database

import (
	"testing"

	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogMode(t *testing.T) {
	cases := map[string]gormlogger.LogLevel{
		"debug": gormlogger.Info,
		"info":  gormlogger.Warn,
		"warn":  gormlogger.Warn,
		"error": gormlogger.Error,
		"":      gormlogger.Error,
	}
	for level, want := range cases {
		if got := gormLogMode(level); got != want {
			t.Errorf("level=%q 期望 %v，实际 %v", level, want, got)
		}
	}
}
