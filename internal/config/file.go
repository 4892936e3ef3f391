package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/rxkeeper/internal/flagx"
	"github.com/dmitrijs2005/rxkeeper/internal/timex"
	"gopkg.in/yaml.v3"
)

// FileConfig is a DTO used exclusively for file unmarshalling. Absent keys
// stay nil and leave the corresponding Config field untouched.
type FileConfig struct {
	Storage *struct {
		Driver *string `json:"driver" yaml:"driver"`
		DSN    *string `json:"dsn" yaml:"dsn"`
		Redis  *struct {
			Addr     *string `json:"addr" yaml:"addr"`
			Password *string `json:"password" yaml:"password"`
			DB       *int    `json:"db" yaml:"db"`
			Prefix   *string `json:"prefix" yaml:"prefix"`
		} `json:"redis" yaml:"redis"`
	} `json:"storage" yaml:"storage"`

	Scheduler *struct {
		Kind         *string `json:"kind" yaml:"kind"`
		AMQPURL      *string `json:"amqp_url" yaml:"amqp_url"`
		AMQPExchange *string `json:"amqp_exchange" yaml:"amqp_exchange"`
	} `json:"scheduler" yaml:"scheduler"`

	Report *struct {
		Target *string `json:"target" yaml:"target"`
		Dir    *string `json:"dir" yaml:"dir"`
		Days   *int    `json:"days" yaml:"days"`
		S3     *struct {
			Region    *string         `json:"region" yaml:"region"`
			AccessKey *string         `json:"access_key" yaml:"access_key"`
			SecretKey *string         `json:"secret_key" yaml:"secret_key"`
			Endpoint  *string         `json:"endpoint" yaml:"endpoint"`
			Bucket    *string         `json:"bucket" yaml:"bucket"`
			Prefix    *string         `json:"prefix" yaml:"prefix"`
			LinkTTL   *timex.Duration `json:"link_ttl" yaml:"link_ttl"`
		} `json:"s3" yaml:"s3"`
	} `json:"report" yaml:"report"`

	MetricsAddr *string `json:"metrics_addr" yaml:"metrics_addr"`
	LogLevel    *string `json:"log_level" yaml:"log_level"`
	LogFormat   *string `json:"log_format" yaml:"log_format"`
	Timezone    *string `json:"timezone" yaml:"timezone"`
}

// parseFile overlays Config with values loaded from the file named by -c or
// -config. Without either flag it does nothing. Read and decode errors
// panic.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (fc *FileConfig) apply(cfg *Config) {
	if s := fc.Storage; s != nil {
		set(&cfg.StorageDriver, s.Driver)
		set(&cfg.StorageDSN, s.DSN)
		if r := s.Redis; r != nil {
			set(&cfg.RedisAddr, r.Addr)
			set(&cfg.RedisPassword, r.Password)
			set(&cfg.RedisDB, r.DB)
			set(&cfg.RedisPrefix, r.Prefix)
		}
	}

	if s := fc.Scheduler; s != nil {
		set(&cfg.Scheduler, s.Kind)
		set(&cfg.AMQPURL, s.AMQPURL)
		set(&cfg.AMQPExchange, s.AMQPExchange)
	}

	if r := fc.Report; r != nil {
		set(&cfg.ReportTarget, r.Target)
		set(&cfg.ReportDir, r.Dir)
		set(&cfg.ReportDays, r.Days)
		if s3 := r.S3; s3 != nil {
			set(&cfg.S3Region, s3.Region)
			set(&cfg.S3AccessKey, s3.AccessKey)
			set(&cfg.S3SecretKey, s3.SecretKey)
			set(&cfg.S3Endpoint, s3.Endpoint)
			set(&cfg.S3Bucket, s3.Bucket)
			set(&cfg.S3Prefix, s3.Prefix)
			if s3.LinkTTL != nil {
				cfg.S3LinkTTL = s3.LinkTTL.Duration
			}
		}
	}

	set(&cfg.MetricsAddr, fc.MetricsAddr)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.Timezone, fc.Timezone)
}
