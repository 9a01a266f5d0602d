package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	AppPort    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret     string
	TokenTTLHours string

	AdminAccount  string
	AdminPassword string

	KafkaBrokers           string
	KafkaClientID          string
	AuditTopic             string
	AuditTopicPartitions   string
	KafkaReplicationFactor string
	AuditEnabled           string
}

func Load() *Config {
	return &Config{
		AppPort:    getEnv("APP_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "coupondb"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:     getEnv("JWT_SECRET", "coupon-distributor-secret"),
		TokenTTLHours: getEnv("TOKEN_TTL_HOURS", "24"),

		AdminAccount:  getEnv("ADMIN_ACCOUNT", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		KafkaBrokers:           getEnv("KAFKA_BROKERS", "kafka:9092"),
		KafkaClientID:          getEnv("KAFKA_CLIENT_ID", "coupon-distributor"),
		AuditTopic:             getEnv("AUDIT_TOPIC", "coupon.audit"),
		AuditTopicPartitions:   getEnv("AUDIT_TOPIC_PARTITIONS", "3"),
		KafkaReplicationFactor: getEnv("KAFKA_REPLICATION_FACTOR", "1"),
		AuditEnabled:           getEnv("AUDIT_ENABLED", "true"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) TokenTTL() time.Duration {
	return time.Duration(parseInt(c.TokenTTLHours, 24)) * time.Hour
}

func (c *Config) TopicPartitions() int {
	return parseInt(c.AuditTopicPartitions, 3)
}

func (c *Config) ReplicationFactor() int16 {
	return int16(parseInt(c.KafkaReplicationFactor, 1))
}

func (c *Config) AuditOn() bool {
	return c.AuditEnabled == "true"
}

func parseInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
