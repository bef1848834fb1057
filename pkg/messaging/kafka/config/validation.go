package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

func validateConfig(cfg *Config) error {
	if strings.TrimSpace(cfg.Brokers) == "" {
		return fmt.Errorf("kafka brokers cannot be empty")
	}
	if err := validateOffsetReset(cfg.ConsumersConfig.AutoOffsetReset); err != nil {
		return err
	}

	names := make(map[string]struct{}, len(cfg.ConsumersConfig.ConsumerConfig))
	for i := range cfg.ConsumersConfig.ConsumerConfig {
		consumer := &cfg.ConsumersConfig.ConsumerConfig[i]
		if _, dup := names[consumer.Name]; dup {
			return fmt.Errorf("duplicate consumer name: %s", consumer.Name)
		}
		names[consumer.Name] = struct{}{}
		if err := validateConsumer(consumer); err != nil {
			return fmt.Errorf("consumer %q: %w", consumer.Name, err)
		}
	}

	if cfg.ProducerConfig.ReadinessTimeoutSeconds < 0 || cfg.ProducerConfig.ReadinessTimeoutSeconds > maxReadinessTimeout {
		return fmt.Errorf("producer readiness timeout must be between 0 and %d seconds, got: %d",
			maxReadinessTimeout, cfg.ProducerConfig.ReadinessTimeoutSeconds)
	}
	return nil
}

func validateConsumer(cfg *ConsumerConfig) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(cfg.Topics) == 0 {
		return fmt.Errorf("at least one topic is required")
	}
	for _, topic := range cfg.Topics {
		if strings.TrimSpace(topic) == "" {
			return fmt.Errorf("topic cannot be empty")
		}
	}
	if !cfg.Exclusive && strings.TrimSpace(cfg.GroupID) == "" {
		return fmt.Errorf("group id cannot be empty")
	}
	if err := validateOffsetReset(cfg.AutoOffsetReset); err != nil {
		return err
	}
	if cfg.EnableDLQ && slices.Contains(cfg.Topics, cfg.DLQTopic) {
		return fmt.Errorf("dlq topic %q cannot be one of the consumed topics", cfg.DLQTopic)
	}
	if cfg.ReadinessTimeoutSeconds < 0 || cfg.ReadinessTimeoutSeconds > maxReadinessTimeout {
		return fmt.Errorf("readiness timeout must be between 0 and %d seconds, got: %d",
			maxReadinessTimeout, cfg.ReadinessTimeoutSeconds)
	}
	if cfg.MaxRetryAttempts < minMaxRetryAttempts || cfg.MaxRetryAttempts > maxMaxRetryAttempts {
		return fmt.Errorf("max retry attempts must be between %d and %d, got: %d",
			minMaxRetryAttempts, maxMaxRetryAttempts, cfg.MaxRetryAttempts)
	}
	if err := inRange("initial backoff", cfg.InitialBackoff, minInitialBackoff, maxInitialBackoff); err != nil {
		return err
	}
	if err := inRange("max backoff", cfg.MaxBackoff, minMaxBackoff, maxMaxBackoffDuration); err != nil {
		return err
	}
	if cfg.InitialBackoff > cfg.MaxBackoff {
		return fmt.Errorf("initial backoff (%v) cannot be greater than max backoff (%v)", cfg.InitialBackoff, cfg.MaxBackoff)
	}
	if err := inRange("processing timeout", cfg.ProcessingTimeout, minProcessingTimeout, maxProcessingTimeout); err != nil {
		return err
	}
	if cfg.ChannelBufferSize < minChannelBufferSize || cfg.ChannelBufferSize > maxChannelBufferSize {
		return fmt.Errorf("channel buffer size must be between %d and %d, got: %d",
			minChannelBufferSize, maxChannelBufferSize, cfg.ChannelBufferSize)
	}
	return nil
}

func validateOffsetReset(value string) error {
	if value != "earliest" && value != "latest" {
		return fmt.Errorf("auto offset reset must be 'earliest' or 'latest', got: %q", value)
	}
	return nil
}

func inRange(name string, value, lo, hi time.Duration) error {
	if value < lo || value > hi {
		return fmt.Errorf("%s must be between %v and %v, got: %v", name, lo, hi, value)
	}
	return nil
}
