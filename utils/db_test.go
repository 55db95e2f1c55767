package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// TestCustomLogger_SharesPackageWithZap GORM 日志器和 zap 全局日志器在同一个包里共存
func TestCustomLogger_SharesPackageWithZap(t *testing.T) {
	l := &CustomLogger{SlowThreshold: time.Second}

	var iface gormlogger.Interface = l
	assert.Same(t, l, iface.LogMode(gormlogger.Info))
	assert.NotNil(t, Logger())

	ctx := context.Background()
	sqlFn := func() (string, int64) { return "SELECT 1", 1 }
	assert.NotPanics(t, func() {
		l.Trace(ctx, time.Now(), sqlFn, nil)
		l.Trace(ctx, time.Now(), sqlFn, gorm.ErrRecordNotFound)
		l.Trace(ctx, time.Now(), sqlFn, errors.New("boom"))
		l.Error(ctx, "record not found")
	})
}
