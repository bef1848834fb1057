package config

func applyDefaults(cfg *Config) {
	applyGlobalConsumerDefaults(&cfg.ConsumersConfig)
	for i := range cfg.ConsumersConfig.ConsumerConfig {
		applyConsumerDefaults(&cfg.ConsumersConfig.ConsumerConfig[i], &cfg.ConsumersConfig)
	}
	applyProducerDefaults(&cfg.ProducerConfig)
}

func applyGlobalConsumerDefaults(cfg *ConsumersConfig) {
	if cfg.AutoOffsetReset == "" {
		cfg.AutoOffsetReset = defaultAutoOffsetReset
	}
	if cfg.DefaultMaxRetryAttempts == 0 {
		cfg.DefaultMaxRetryAttempts = defaultMaxRetryAttempts
	}
	if cfg.DefaultInitialBackoff == 0 {
		cfg.DefaultInitialBackoff = defaultInitialBackoff
	}
	if cfg.DefaultMaxBackoff == 0 {
		cfg.DefaultMaxBackoff = defaultMaxBackoff
	}
	if cfg.DefaultProcessingTimeout == 0 {
		cfg.DefaultProcessingTimeout = defaultProcessingTimeout
	}
	if cfg.DefaultChannelBufferSize == 0 {
		cfg.DefaultChannelBufferSize = defaultChannelBufferSize
	}
}

func applyConsumerDefaults(consumer *ConsumerConfig, global *ConsumersConfig) {
	if consumer.GroupID == "" {
		consumer.GroupID = global.GroupID
	}
	if consumer.AutoOffsetReset == "" {
		consumer.AutoOffsetReset = global.AutoOffsetReset
	}
	if consumer.EnableDLQ && consumer.DLQTopic == "" {
		consumer.DLQTopic = consumer.Name + dlqSuffix
	}
	if consumer.ReadinessTimeoutSeconds == 0 {
		consumer.ReadinessTimeoutSeconds = defaultConsumerReadinessTimeout
	}
	if consumer.MaxRetryAttempts == 0 {
		consumer.MaxRetryAttempts = global.DefaultMaxRetryAttempts
	}
	if consumer.InitialBackoff == 0 {
		consumer.InitialBackoff = global.DefaultInitialBackoff
	}
	if consumer.MaxBackoff == 0 {
		consumer.MaxBackoff = global.DefaultMaxBackoff
	}
	if consumer.ProcessingTimeout == 0 {
		consumer.ProcessingTimeout = global.DefaultProcessingTimeout
	}
	if consumer.ChannelBufferSize == 0 {
		consumer.ChannelBufferSize = global.DefaultChannelBufferSize
	}
}

func applyProducerDefaults(cfg *ProducerConfig) {
	if cfg.ReadinessTimeoutSeconds == 0 {
		cfg.ReadinessTimeoutSeconds = defaultProducerReadinessTimeout
	}
	if cfg.FailOnBrokerError == nil {
		failOnBrokerError := true
		cfg.FailOnBrokerError = &failOnBrokerError
	}
}
