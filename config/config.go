package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Redis     RedisConfig     `mapstructure:"redis"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Payment   PaymentConfig   `mapstructure:"payment"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // gin mode: debug/release
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type JWTConfig struct {
	Secret   string        `mapstructure:"secret"`
	Lifetime time.Duration `mapstructure:"lifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	From string `mapstructure:"from"`
	User string `mapstructure:"user"`
	Pass string `mapstructure:"pass"`
}

type SchedulerConfig struct {
	Interval  time.Duration `mapstructure:"interval"`   // sweep cadence
	LookAhead time.Duration `mapstructure:"look_ahead"` // promote orders due within this much
}

type PaymentConfig struct {
	Secret string `mapstructure:"secret"` // HMAC key for gateway callback signatures
}

// Load reads config.yaml (optional) with env-var overrides, e.g.
// FOODAPP_SERVER_PORT=9090 overrides server.port.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FOODAPP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.path", "food_delivery.db")
	v.SetDefault("jwt.secret", "food_delivery_super_secret_2024")
	v.SetDefault("jwt.lifetime", 24*time.Hour)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.from", "orders@fooddelivery.local")
	v.SetDefault("scheduler.interval", 15*time.Minute)
	v.SetDefault("scheduler.look_ahead", 15*time.Minute)
	v.SetDefault("payment.secret", "payment_gateway_secret")

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; defaults + env are enough
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
