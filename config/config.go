// server/config/config.go
package config

import (
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string `mapstructure:"secret"`
	Expiration string `mapstructure:"expiration"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	// DirectoryTTL is the cache lifetime for identity lookups, e.g. "5m".
	DirectoryTTL string `mapstructure:"directoryTTL"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Sender   string `mapstructure:"sender"`
	Password string `mapstructure:"password"`
}

type SeedConfig struct {
	SuperAdminUserID   string `mapstructure:"superAdminUserID"`
	SuperAdminPassword string `mapstructure:"superAdminPassword"`
}

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Mongo  MongoConfig  `mapstructure:"mongo"`
	JWT    JWTConfig    `mapstructure:"jwt"`
	Redis  RedisConfig  `mapstructure:"redis"`
	SMTP   SMTPConfig   `mapstructure:"smtp"`
	Seed   SeedConfig   `mapstructure:"seed"`
}

// LoadConfig reads configuration from file and overrides with environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.directoryTTL", "REDIS_DIRECTORY_TTL")
	viper.BindEnv("smtp.host", "SMTP_HOST")
	viper.BindEnv("smtp.port", "SMTP_PORT")
	viper.BindEnv("smtp.sender", "SMTP_SENDER")
	viper.BindEnv("smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("seed.superAdminUserID", "SEED_SUPERADMIN_USERID")
	viper.BindEnv("seed.superAdminPassword", "SEED_SUPERADMIN_PASSWORD")

	// If the config file is missing, Viper falls back to environment variables only.
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
