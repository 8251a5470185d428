package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var GConfig *Config

func Init(filePath string) {
	config, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}
	initFromYaml(config)
	err = GConfig.Verify()
	if err != nil {
		panic(err)
	}
}

func initFromYaml(config []byte) {
	err := yaml.Unmarshal(config, &GConfig)
	if err != nil {
		panic(err)
	}
}

type Config struct {
	StorageEnabled  bool   `yaml:"storage_enabled"`
	StorageSupplier string `yaml:"storage_supplier"`
	URLExpires      string `yaml:"url_expires"`
	AliOss          `yaml:"ali_oss"`
	MySQL           `yaml:"mysql"`
	Log             `yaml:"log"`
	Ideogram        `yaml:"ideogram"`
	Replicate       `yaml:"replicate"`
	InfiniAI        `yaml:"infini_ai"`
	TheNewBlack     `yaml:"thenewblack"`
	Dispatch        `yaml:"dispatch"`
	Sweep           `yaml:"sweep"`
	Generation      `yaml:"generation"`
}

func (c *Config) Verify() error {
	if c.StorageEnabled {
		if c.StorageSupplier != "ali_oss" && c.StorageSupplier != "local" {
			return fmt.Errorf("storage_supplier must be ali_oss or local")
		}
		if _, err := time.ParseDuration(c.URLExpires); err != nil {
			return err
		}
	}
	if c.Dispatch.QueueSize <= 0 {
		c.Dispatch.QueueSize = 100
	}
	if c.Dispatch.Workers <= 0 {
		c.Dispatch.Workers = 10
	}
	if c.Sweep.IntervalSeconds <= 0 {
		c.Sweep.IntervalSeconds = 30
	}
	if c.Generation.EstimatedSeconds <= 0 {
		c.Generation.EstimatedSeconds = 60
	}
	return nil
}

type AliOss struct {
	AccessKeyId     string `yaml:"access_key_id"`
	AccessKeySecret string `yaml:"access_key_secret"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	Directory       string `yaml:"directory"`
}

type MySQL struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	Charset      string `yaml:"charset"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

type Log struct {
	LogLevel      string `yaml:"level"`
	LogFile       string `yaml:"file"`
	LogMaxSize    int    `yaml:"max_size"`
	LogMaxBackups int    `yaml:"max_backups"`
	LogMaxAge     int    `yaml:"max_age"`
}

type Ideogram struct {
	ApiKey string `yaml:"api_key"`
}

type Replicate struct {
	Token string `yaml:"token"`
}

type InfiniAI struct {
	ApiKey string `yaml:"api_key"`
}

type TheNewBlack struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Dispatch struct {
	QueueSize int `yaml:"queue_size"`
	Workers   int `yaml:"workers"`
}

type Sweep struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

type Generation struct {
	EstimatedSeconds int `yaml:"estimated_seconds"`
}
