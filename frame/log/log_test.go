package log

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestConfigYAML(t *testing.T) {
	data := `
name: tagtool
level: debug
json: true
file:
  path: ./logs
  rotate: true
  json: false
  maxsize: 64
logstash:
  addr: localhost:5000
`
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	assert.Equal(t, "tagtool", cfg.Name)
	assert.True(t, cfg.UseJSON)
	require.NotNil(t, cfg.File)
	assert.Equal(t, "./logs", cfg.File.Path)
	assert.Equal(t, 64, cfg.File.MaxSize)
	require.NotNil(t, cfg.File.JSON)
	assert.False(t, *cfg.File.JSON)
	require.NotNil(t, cfg.Logstash)
	assert.Equal(t, "localhost:5000", cfg.Logstash.Addr)

	lvl, err := cfg.ParseLevel()
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, lvl)
}

func TestParseLevel(t *testing.T) {
	lvl, err := (&Config{}).ParseLevel()
	require.NoError(t, err)
	assert.Equal(t, logrus.InfoLevel, lvl)

	_, err = (&Config{Level: "loud"}).ParseLevel()
	assert.Error(t, err)
}

func TestInitFileOutput(t *testing.T) {
	tests := []struct {
		name    string
		file    FileConfig
		logFile string
	}{
		{"plain", FileConfig{}, "plain.log"},
		{"size", FileConfig{Rotate: true, MaxSize: 1}, "size.log"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.file.Path = dir
			logger := logrus.New()
			logger.SetOutput(os.Stderr)

			close, err := Init(logger, &Config{Name: tt.name, Level: "info", File: &tt.file})
			require.NoError(t, err)
			logger.WithField("tag", "#2PP").Info("decoded")
			logger.Debug("filtered")
			close()

			data, err := os.ReadFile(filepath.Join(dir, tt.logFile))
			require.NoError(t, err)
			assert.Contains(t, string(data), "decoded")
			assert.Contains(t, string(data), "#2PP")
			assert.NotContains(t, string(data), "filtered")
		})
	}
}

func TestFileHookJSON(t *testing.T) {
	dir := t.TempDir()
	hook, close, err := NewFileLogHook(dir, "json", true, false, 0)
	require.NoError(t, err)

	logger := logrus.New()
	logger.AddHook(hook)
	logger.WithField("offset", 4).Warn("bad tag")
	close()

	data, err := os.ReadFile(filepath.Join(dir, "json.log"))
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	assert.True(t, strings.HasPrefix(line, "{"))
	assert.Contains(t, line, `"offset":4`)
	assert.Contains(t, line, `"level":"warning"`)
}

func TestFileHookErrors(t *testing.T) {
	_, _, err := NewFileLogHook(t.TempDir(), "", false, false, 0)
	assert.Error(t, err)

	// 目录路径被普通文件占用
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, _, err = NewFileLogHook(filepath.Join(f, "sub"), "x", false, false, 0)
	assert.Error(t, err)
}

func TestInitLogstashUnreachable(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	dir := t.TempDir()
	// 先成功添加文件输出, logstash 失败后它应被关闭
	_, err := Init(logger, &Config{
		Name:     "x",
		File:     &FileConfig{Path: dir},
		Logstash: &LogstashConfig{Addr: "127.0.0.1:1"},
	})
	assert.Error(t, err)
}
