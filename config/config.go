package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "CLASSROOM"

// Storage drivers
const (
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config is the resolved server configuration
type Config struct {
	ServerAddr    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	StorageDriver string
	KeyPrefix     string
	Seed          bool
	LogLevel      string
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 8)
	v.SetDefault("storage.driver", DriverRedis)
	v.SetDefault("storage.keyPrefix", "classroom_")
	v.SetDefault("seed", true)
	v.SetDefault("log.level", "info")

	// CLASSROOM_REDIS_ADDR overrides redis.addr, and so on
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from defaults and the environment. When
// dotEnvPath names an existing file it is loaded into the environment first;
// a missing file is not an error.
func Load(dotEnvPath string) (*Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
		}
	}

	v := newViper()
	cfg := &Config{
		ServerAddr:    v.GetString("server.addr"),
		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),
		StorageDriver: strings.ToLower(v.GetString("storage.driver")),
		KeyPrefix:     v.GetString("storage.keyPrefix"),
		Seed:          v.GetBool("seed"),
		LogLevel:      v.GetString("log.level"),
	}
	switch cfg.StorageDriver {
	case DriverRedis, DriverMemory:
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
	return cfg, nil
}
