package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("board imported", zap.String("board", "demo_board"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"board imported"`)
	assert.Contains(t, string(data), `"board":"demo_board"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_BadOutput(t *testing.T) {
	_, err := New(Config{Output: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestGormLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormLevel("debug"))
	assert.Equal(t, gormlogger.Error, GormLevel("error"))
	assert.Equal(t, gormlogger.Warn, GormLevel("info"))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), gormlogger.Warn)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(context.Background(), time.Now(), sql, nil)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(context.Background(), time.Now(), sql, errors.New("disk I/O error"))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL error", logs.All()[0].Message)

	l.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "slow SQL", logs.All()[1].Message)

	silent := l.LogMode(gormlogger.Silent)
	silent.Trace(context.Background(), time.Now(), sql, errors.New("ignored"))
	assert.Equal(t, 2, logs.Len())
}

func TestTaskLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewTaskLogger(zap.New(core))

	l.Info("task processed", "queue", "import_document", "id", 7)
	l.Error("task failed", "odd")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "import_document", entries[0].ContextMap()["queue"])
	assert.Equal(t, int64(7), entries[0].ContextMap()["id"])
	assert.Equal(t, "odd", entries[1].ContextMap()["extra"])
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	router := gin.New()
	router.Use(GinMiddleware(zap.New(core)), Recovery(zap.New(core)))
	router.GET("/ok", func(c *gin.Context) {
		FromGin(c).Info("inside handler")
		c.Status(http.StatusOK)
	})
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	assert.Equal(t, 1, logs.FilterMessage("inside handler").Len())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
	assert.Equal(t, 2, logs.FilterMessage("HTTP request").Len())
}

func TestFromGin_WithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, FromGin(c))
}
