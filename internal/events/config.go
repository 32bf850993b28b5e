package events

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config provides sink and dispatcher settings.
type Config struct {
	Sinks struct {
		Webhook WebhookConfig `yaml:"webhook"`
		Redis   RedisConfig   `yaml:"redis"`
		Kafka   KafkaConfig   `yaml:"kafka"`
	} `yaml:"sinks"`
	Retry RetryConfig `yaml:"retry"`
}

// LoadConfig reads YAML from file path. If path is empty, returns zero value.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}

// BuildSinks assembles every enabled sink from config.
func BuildSinks(c Config) ([]Sink, error) {
	var sinks []Sink
	if s := NewWebhookSink(c.Sinks.Webhook); s != nil {
		sinks = append(sinks, s)
	}
	if s, err := NewRedisSink(c.Sinks.Redis); err != nil {
		return nil, err
	} else if s != nil {
		sinks = append(sinks, s)
	}
	if s, err := NewKafkaSink(c.Sinks.Kafka); err != nil {
		return nil, err
	} else if s != nil {
		sinks = append(sinks, s)
	}
	return sinks, nil
}
