package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string
	RedisPassword string
	ServerAddr    string
	JWTSecret     string
	AllowOrigins  string
}

func LoadConfig() *Config {
	godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "connectly")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("PORT", ":8080")
	v.SetDefault("ALLOW_ORIGINS", "http://localhost:3000")

	return &Config{
		DBHost:        v.GetString("DB_HOST"),
		DBPort:        v.GetString("DB_PORT"),
		DBUser:        v.GetString("DB_USER"),
		DBPassword:    v.GetString("DB_PASS"),
		DBName:        v.GetString("DB_NAME"),
		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASS"),
		ServerAddr:    v.GetString("PORT"),
		JWTSecret:     v.GetString("JWT_SECRET"),
		AllowOrigins:  v.GetString("ALLOW_ORIGINS"),
	}
}

// DSN builds the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}
