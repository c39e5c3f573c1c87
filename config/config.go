package config

import (
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/beijian128/bytestream/frame/bytestream"
	"github.com/beijian128/bytestream/frame/log"
	"github.com/beijian128/bytestream/frame/logiclong"
)

// CodecConfig 编解码相关设置
type CodecConfig struct {
	MaxHigh          uint32 `yaml:"max_high"`          // LogicLong high 上限, 默认 logiclong.MaxHigh
	CompressionLevel *int   `yaml:"compression_level"` // 压缩字符串的 zlib 级别, 为空时用库默认值
	MaxStringLength  int    `yaml:"max_string_length"` // 解码时字符串的最大字节数, 0 表示不限制
	Transcript       bool   `yaml:"transcript"`        // 解码时以 Trace 级别记录每个字段
}

// AppConfig  共用配置项
type AppConfig struct {
	Develop bool        `yaml:"develop"`
	Log     *log.Config `yaml:"log"`
	Codec   CodecConfig `yaml:"codec"`

	// 固定的测试/调试标识, 以 tag 形式书写
	Fixtures []logiclong.LogicLong `yaml:"fixtures"`
}

// LoadConfig 加载节点配置文件并检查有效性
func LoadConfig(fileName string) (*AppConfig, error) {
	cfg, err := ParseConfigFile(fileName)
	if err != nil {
		return nil, err
	}

	if err := cfg.Check(); err != nil {
		return nil, errors.Wrapf(err, "config %s", fileName)
	}

	return cfg, nil
}

func parseConfigData(data []byte) (*AppConfig, error) {
	cfg := AppConfig{
		Codec: CodecConfig{MaxHigh: logiclong.MaxHigh},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseConfigFile ...
func ParseConfigFile(fileName string) (*AppConfig, error) {
	abs, err := filepath.Abs(fileName)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	cfg, err := parseConfigData(data)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", abs)
	}

	return cfg, nil
}

// Check 检查取值范围
func (cfg *AppConfig) Check() error {
	if cfg.Log != nil {
		if _, err := cfg.Log.ParseLevel(); err != nil {
			return err
		}
	}
	return cfg.Codec.Check(cfg.Fixtures...)
}

// Check 检查取值范围, fixtures 必须满足 MaxHigh
func (c *CodecConfig) Check(fixtures ...logiclong.LogicLong) error {
	if c.MaxHigh > logiclong.MaxHigh {
		return errors.Errorf("codec.max_high %d exceeds %d", c.MaxHigh, logiclong.MaxHigh)
	}
	if c.CompressionLevel != nil {
		lvl := *c.CompressionLevel
		if lvl < zlib.HuffmanOnly || lvl > zlib.BestCompression {
			return errors.Errorf("codec.compression_level %d out of range [%d, %d]", lvl, zlib.HuffmanOnly, zlib.BestCompression)
		}
	}
	if c.MaxStringLength < 0 {
		return errors.Errorf("codec.max_string_length %d is negative", c.MaxStringLength)
	}
	for _, l := range fixtures {
		if err := l.Validate(c.MaxHigh); err != nil {
			return errors.Wrapf(err, "fixture %s", l)
		}
	}
	return nil
}

// Options 转成 ByteStream 选项. transcript 为 Transcript=true 时使用的记录目标.
func (c *CodecConfig) Options(transcript bytestream.Transcript) []bytestream.Option {
	var opts []bytestream.Option
	if c.CompressionLevel != nil {
		opts = append(opts, bytestream.WithCompressionLevel(*c.CompressionLevel))
	}
	if c.MaxStringLength > 0 {
		opts = append(opts, bytestream.WithMaxStringLength(c.MaxStringLength))
	}
	if c.Transcript && transcript != nil {
		opts = append(opts, bytestream.WithTranscript(transcript))
	}
	return opts
}
