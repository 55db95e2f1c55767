package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, levelFromString("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, levelFromString("warning"))
	assert.Equal(t, zapcore.ErrorLevel, levelFromString("error"))
	assert.Equal(t, zapcore.InfoLevel, levelFromString("nonsense"))
}

func TestLogger_NopBeforeInit(t *testing.T) {
	logger = nil
	assert.NotNil(t, Logger())
	SyncLogger()
}

// TestInitLogger_WritesRotatedFile 配置日志文件时写入按天切分的文件
func TestInitLogger_WritesRotatedFile(t *testing.T) {
	t.Cleanup(func() { logger = nil })

	file := filepath.Join(t.TempDir(), "sandy_cal.log")
	require.NoError(t, InitLogger("info", false, file))

	Logger().Info("rating saved", zap.String("date", "2024-03-05"))
	SyncLogger()

	matches, err := filepath.Glob(file + ".*")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"msg":"rating saved"`), string(data))
}
