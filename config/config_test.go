package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CONFIG_TEST_KEY", "set")
	assert.Equal(t, "set", getEnv("CONFIG_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getEnv("CONFIG_TEST_MISSING_KEY", "fallback"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("PRICING_CACHE_TTL_SECONDS", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 300, cfg.Pricing.CacheTTLSeconds)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pricing-events", cfg.Kafka.TopicPricing)
	assert.Equal(t, "order-events", cfg.Kafka.TopicOrder)
}

func TestLoadKafkaBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker-a:9092,broker-b:9092")

	cfg := Load()
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.Kafka.Brokers)
}
