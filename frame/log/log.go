package log

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Config 日志配置
// example:
//
//	log:
//	  name: tagtool
//	  level: info
//	  json: false
//	  file:
//	    path: ./logs
//	    rotate: true
//	    maxsize: 64
//	  logstash:
//	    addr: localhost:5000
type Config struct {
	Name     string          `yaml:"name"`
	Level    string          `yaml:"level"`
	UseJSON  bool            `yaml:"json"`
	File     *FileConfig     `yaml:"file"`
	Logstash *LogstashConfig `yaml:"logstash"`
}

// FileConfig 本地文件输出
type FileConfig struct {
	Path    string `yaml:"path"`
	Rotate  bool   `yaml:"rotate"`
	JSON    *bool  `yaml:"json"`    // 为空时跟随 Config.UseJSON
	MaxSize int    `yaml:"maxsize"` // MB, 大于 0 时按大小切分, 否则按天切分
}

// LogstashConfig logstash 输出
type LogstashConfig struct {
	Addr string `yaml:"addr"`
}

// ParseLevel 空串视为 info
func (cfg *Config) ParseLevel() (logrus.Level, error) {
	if cfg.Level == "" {
		return logrus.InfoLevel, nil
	}
	lvl, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		return 0, errors.Wrap(err, "log level")
	}
	return lvl, nil
}

// InitLogrus 根据配置初始化 logrus, 添加配置的 Hooks
func InitLogrus(cfg *Config) (close func(), err error) {
	return Init(logrus.StandardLogger(), cfg)
}

// Init 同 InitLogrus, 作用于指定的 logger
func Init(logger *logrus.Logger, cfg *Config) (close func(), err error) {
	lvl, err := cfg.ParseLevel()
	if err != nil {
		return nil, err
	}
	logger.SetLevel(lvl)
	if cfg.UseJSON {
		logger.SetFormatter(new(logrus.JSONFormatter))
	} else {
		text := new(logrus.TextFormatter)
		text.FullTimestamp = true
		logger.SetFormatter(text)
	}
	return addLogHooks(logger, cfg)
}

func addLogHooks(logger *logrus.Logger, cfg *Config) (close func(), err error) {
	var fcloses []func()
	defer func() {
		if err != nil {
			for _, f := range fcloses {
				f()
			}
		}
	}()
	if cfg.File != nil {
		close, err = addFileHook(logger, cfg)
		if err != nil {
			return nil, err
		}
		fcloses = append(fcloses, close)
	}
	if cfg.Logstash != nil {
		close, err = addLogstashHook(logger, cfg)
		if err != nil {
			return nil, err
		}
		fcloses = append(fcloses, close)
	}
	return func() {
		for _, f := range fcloses {
			f()
		}
	}, nil
}

func addFileHook(logger *logrus.Logger, cfg *Config) (close func(), err error) {
	useJSON := cfg.UseJSON
	if cfg.File.JSON != nil {
		useJSON = *cfg.File.JSON
	}

	hook, close, err := NewFileLogHook(cfg.File.Path, cfg.Name, useJSON, cfg.File.Rotate, cfg.File.MaxSize)
	if err != nil {
		return nil, err
	}

	logger.AddHook(hook)

	return close, nil
}

func addLogstashHook(logger *logrus.Logger, cfg *Config) (close func(), err error) {
	log := logger.WithField("addr", cfg.Logstash.Addr)

	log.Info("Connecting logstash...")
	hook, close, err := NewLogstashHook(cfg.Logstash.Addr, cfg.Name)
	if err != nil {
		log.WithError(err).Error("Connect logstash failed")
		return nil, err
	}
	log.Info("Connect logstash succ")

	logger.AddHook(hook)

	return close, nil
}
