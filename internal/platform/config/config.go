package config

import "time"

// Config is the service's complete environment-driven configuration,
// overridable through the env-tagged variables (MONGO_URI,
// KAFKA_BOOTSTRAP_SERVERS, and so on).
type Config struct {
	Mongo    MongoConfig
	Kafka    KafkaConfig
	API      APIConfig
	LogLevel string `env:"LOG_LEVEL" yaml:"log_level"`
}

// MongoConfig configures the document store connection.
type MongoConfig struct {
	URI    string `env:"MONGO_URI"     yaml:"uri"`
	DBName string `env:"MONGO_DB_NAME" yaml:"db_name"`
}

// KafkaConfig configures the queue producer, consumer, and topics.
type KafkaConfig struct {
	BootstrapServers string `env:"KAFKA_BOOTSTRAP_SERVERS" yaml:"bootstrap_servers"`
	Topic            string `env:"KAFKA_TOPIC"             yaml:"topic"`
	ConsumerGroup    string `env:"KAFKA_CONSUMER_GROUP"    yaml:"consumer_group"`
	DLQTopic         string `env:"KAFKA_DLQ_TOPIC"         yaml:"dlq_topic"`
	MaxRetries       int    `env:"KAFKA_MAX_RETRIES"       yaml:"max_retries"`
}

// APIConfig configures the HTTP surface.
type APIConfig struct {
	Host        string        `env:"API_HOST"     yaml:"host"`
	Port        int           `env:"API_PORT"     yaml:"port"`
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" yaml:"http_timeout"`
}

// Defaults fills in the values the service assumes when the environment
// leaves a knob unset.
func Defaults(c *Config) {
	if c.Mongo.DBName == "" {
		c.Mongo.DBName = "metadata_service"
	}
	if c.API.HTTPTimeout == 0 {
		c.API.HTTPTimeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
	if c.API.Host == "" {
		c.API.Host = "0.0.0.0"
	}
	if c.API.Port == 0 {
		c.API.Port = 8000
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "metadata-tasks"
	}
	if c.Kafka.ConsumerGroup == "" {
		c.Kafka.ConsumerGroup = "metadata-workers"
	}
	if c.Kafka.DLQTopic == "" {
		c.Kafka.DLQTopic = "metadata-tasks-dlq"
	}
	if c.Kafka.MaxRetries == 0 {
		c.Kafka.MaxRetries = 3
	}
}

// LoadFromEnv loads Config from an optional YAML file (pass "" to skip)
// plus environment overrides, with Defaults applied before the override
// pass so environment variables always win.
func LoadFromEnv(path string) (*Config, error) {
	return Load(path, Defaults)
}
