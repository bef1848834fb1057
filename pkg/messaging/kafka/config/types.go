package config

import "time"

type Config struct {
	Brokers         string          `mapstructure:"brokers"`
	ConsumersConfig ConsumersConfig `mapstructure:"consumers-config"`
	ProducerConfig  ProducerConfig  `mapstructure:"producer-config"`
}

// ConsumersConfig holds defaults shared by every consumer in the process.
type ConsumersConfig struct {
	GroupID                  string           `mapstructure:"group-id"`
	AutoOffsetReset          string           `mapstructure:"auto-offset-reset"`
	DefaultMaxRetryAttempts  int              `mapstructure:"max-retry-attempts"`
	DefaultInitialBackoff    time.Duration    `mapstructure:"initial-backoff"`
	DefaultMaxBackoff        time.Duration    `mapstructure:"max-backoff"`
	DefaultProcessingTimeout time.Duration    `mapstructure:"processing-timeout"`
	DefaultChannelBufferSize int              `mapstructure:"channel-buffer-size"`
	ConsumerConfig           []ConsumerConfig `mapstructure:"consumers"`
}

type ConsumerConfig struct {
	Name string `mapstructure:"name"`
	// Topics are the routing keys the consumer is bound to.
	Topics          []string `mapstructure:"topics"`
	GroupID         string   `mapstructure:"group-id"`
	AutoOffsetReset string   `mapstructure:"auto-offset-reset"`
	// Exclusive gives the consumer its own throwaway group that starts at the
	// latest offset, so every replica sees every message.
	Exclusive bool `mapstructure:"exclusive"`

	EnableDLQ bool   `mapstructure:"enable-dlq"`
	DLQTopic  string `mapstructure:"dlq-topic"`

	ReadinessTimeoutSeconds int  `mapstructure:"readiness-timeout-seconds"` // 0 = no timeout
	FailOnTopicError        bool `mapstructure:"fail-on-topic-error"`

	MaxRetryAttempts  int           `mapstructure:"max-retry-attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial-backoff"`
	MaxBackoff        time.Duration `mapstructure:"max-backoff"`
	ProcessingTimeout time.Duration `mapstructure:"processing-timeout"`
	ChannelBufferSize int           `mapstructure:"channel-buffer-size"`
}

type ProducerConfig struct {
	ReadinessTimeoutSeconds int   `mapstructure:"readiness-timeout-seconds"` // 0 = no timeout
	FailOnBrokerError       *bool `mapstructure:"fail-on-broker-error"`
}

// GetConsumer returns the consumer named name.
func (c Config) GetConsumer(name string) (ConsumerConfig, bool) {
	for _, cc := range c.ConsumersConfig.ConsumerConfig {
		if cc.Name == name {
			return cc, true
		}
	}
	return ConsumerConfig{}, false
}
