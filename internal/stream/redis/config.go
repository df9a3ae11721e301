package redis

import "os"

const (
	defaultStream       = "benchmark-events"
	defaultGroup        = "benchmark-group"
	defaultConsumerName = "medbench-consumer"
)

type RedisStreamConfig struct {
	RedisAddr     string
	RedisPassword string
	Stream        string
	Group         string
	ConsumerName  string
}

// NewRedisStreamConfig fills benchmark intake defaults for any empty
// field; the consumer name falls back to the hostname so parallel workers
// stay distinguishable within the group.
func NewRedisStreamConfig(redisAddr string, redisPassword string, stream string, group string, consumerName string) *RedisStreamConfig {
	if stream == "" {
		stream = defaultStream
	}
	if group == "" {
		group = defaultGroup
	}
	if consumerName == "" {
		if host, err := os.Hostname(); err == nil && host != "" {
			consumerName = host
		} else {
			consumerName = defaultConsumerName
		}
	}

	return &RedisStreamConfig{
		RedisAddr:     redisAddr,
		RedisPassword: redisPassword,
		Stream:        stream,
		Group:         group,
		ConsumerName:  consumerName,
	}
}
