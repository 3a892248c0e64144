// Copyright © 2025 tjj
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cloner

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config 注册表的声明式配置，可从 yaml 文件加载
type Config struct {
	UnexportedFields bool   `yaml:"unexported_fields"`
	TagKey           string `yaml:"tag_key"`
	LogLevel         string `yaml:"log_level"` // 为空时不输出日志
}

// LoadConfig 读取 yaml 配置，空输入得到零值配置
func LoadConfig(r io.Reader) (Config, error) {
	var raw map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode config")
	}
	return ConfigFromMap(raw)
}

// ConfigFromMap 宽松地解析配置，"true"、1 等都可以作为布尔值
func ConfigFromMap(m map[string]any) (Config, error) {
	var cfg Config
	for key, value := range m {
		var err error
		switch strings.ToLower(key) {
		case "unexported_fields":
			cfg.UnexportedFields, err = cast.ToBoolE(value)
		case "tag_key":
			cfg.TagKey, err = cast.ToStringE(value)
		case "log_level":
			cfg.LogLevel, err = cast.ToStringE(value)
		default:
			return Config{}, errors.Errorf("unknown config key <%s>", key)
		}
		if err != nil {
			return Config{}, errors.Wrapf(err, "config key <%s>", key)
		}
	}
	return cfg, nil
}

// Options 转为 NewRegistry 的选项
func (c Config) Options() ([]Option, error) {
	var options []Option
	if c.UnexportedFields {
		options = append(options, WithUnexportedFields())
	}
	if c.TagKey != "" {
		options = append(options, WithTagKey(c.TagKey))
	}
	if c.LogLevel != "" {
		level, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, errors.Wrap(err, "config log_level")
		}
		zapConfig := zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(level)
		logger, err := zapConfig.Build()
		if err != nil {
			return nil, errors.Wrap(err, "build logger")
		}
		options = append(options, WithLogger(logger))
	}
	return options, nil
}

// NewRegistryFromConfig 按配置创建注册表，extra 在配置之后应用
func NewRegistryFromConfig(c Config, extra ...Option) (*Registry, error) {
	options, err := c.Options()
	if err != nil {
		return nil, err
	}
	return NewRegistry(append(options, extra...)...), nil
}
