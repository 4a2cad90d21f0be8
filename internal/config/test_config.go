package config

import "time"

func LoadTestConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8081,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			Name:     "brandops_test",
			User:     "test_user",
			Password: "test_password",
		},
		Session: SessionConfig{
			Timeout:       time.Hour,
			CacheTTL:      5 * time.Minute,
			WatchInterval: time.Minute,
			CacheSize:     128,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			Password: "",
			DB:       0,
		},
	}
}
