package common

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	SetLogLevel(Debug)
	Debugf("this is a test")
	assert.True(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	SetLogLevel(Info)
	assert.False(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	Debugf("this is a test, no debug")
	Infof("this is a test, info")
	SetLogLevel(0)
	assert.False(t, DebugEnabled())
	assert.True(t, InfoEnabled())
	Infof("this is a test, no level")
	Logf(Warn, "The is a test, warn")
	SetLogLevel(Error)
	assert.False(t, DebugEnabled())
	assert.False(t, InfoEnabled())
	assert.False(t, WarnEnabled())
	assert.True(t, ErrorEnabled())
	Infof("this is a test, no error")
	Errorf("this is a test, error")
	Criticalf("this is a test, critical")
	SetLogLevel(Debug)
}

func TestParseLogLevel(t *testing.T) {
	l, ok := ParseLogLevel(" WARN ")
	assert.True(t, ok)
	assert.Equal(t, Warn, l)
	assert.Equal(t, "warn", l.String())

	_, ok = ParseLogLevel("verbose")
	assert.False(t, ok)
	assert.Equal(t, "LogLevel(42)", LogLevel(42).String())
}

func TestInitLoggerWithFile(t *testing.T) {
	old := currentLogger()
	defer func() {
		loggerLock.Lock()
		logger = old
		loggerLock.Unlock()
	}()

	conf := &LogConfig{
		Env:      EnvProduction,
		FileName: filepath.Join(t.TempDir(), "counters.log"),
		MaxSize:  1,
		Level:    "warn",
	}
	require.NoError(t, conf.Parse())
	assert.False(t, InfoEnabled())
	assert.True(t, WarnEnabled())
	Warnf("write to file")
	SyncLog()

	assert.Error(t, (&LogConfig{Level: "verbose"}).Parse())
}
