// Package config предоставялет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env             string `yaml:"env" env-default:"local"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	Backend         `yaml:"backend"`
	Session         `yaml:"session"`
	Gate            `yaml:"gate"`
	Poller          `yaml:"poller"`
	RateLimit       `yaml:"rate_limit"`
	SPA             `yaml:"spa"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает хранение состояния в памяти процесса.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Backend структура для настройки клиента внешнего REST API
type Backend struct {
	BaseURL        string        `yaml:"base_url"`
	TimeoutBackend time.Duration `yaml:"timeout" env-default:"10s"`
	// BreakerFailures — число подряд идущих сбоев, после которого размыкается предохранитель.
	BreakerFailures uint32        `yaml:"breaker_failures" env-default:"5"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" env-default:"30s"`
}

// Session структура для настройки cookie сессии и устройства
type Session struct {
	SessionCookie string        `yaml:"session_cookie" env-default:"np_session"`
	DeviceCookie  string        `yaml:"device_cookie" env-default:"np_device"`
	SecretKey     string        `yaml:"secret_key"`
	SessionTTL    time.Duration `yaml:"session_ttl" env-default:"12h"`
	DeviceTTL     time.Duration `yaml:"device_ttl" env-default:"8760h"`
	Secure        bool          `yaml:"secure"`
}

// Gate структура с параметрами льготного периода и проверки маршрутов
type Gate struct {
	GraceDuration   time.Duration `yaml:"grace_duration" env-default:"180s"`
	RecheckInterval time.Duration `yaml:"recheck_interval" env-default:"5s"`
	PendingDelay    time.Duration `yaml:"pending_delay" env-default:"60s"`
	// PendingTTL ограничивает жизнь записи о регистрации, ушедшей на оплату.
	PendingTTL time.Duration `yaml:"pending_ttl" env-default:"24h"`
}

// Poller структура с параметрами опроса статуса задач
type Poller struct {
	PollInterval time.Duration `yaml:"interval" env-default:"2s"`
}

// RateLimit структура для настройки ограничения частоты запросов
type RateLimit struct {
	RPS   float64 `yaml:"rps" env-default:"20"`
	Burst int     `yaml:"burst" env-default:"40"`
}

// SPA структура с путями статики и служебных страниц фронтенда
type SPA struct {
	StaticDir      string `yaml:"static_dir" env-default:"./web/dist"`
	IndexPage      string `yaml:"index_page" env-default:"index.html"`
	ActivatingPage string `yaml:"activating_page" env-default:"activating.html"`
	LoginPath      string `yaml:"login_path" env-default:"/login"`
	PricingPath    string `yaml:"pricing_path" env-default:"/pricing"`
}

// MustLoad функция для загрузки конфига, путь к файлу берётся из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"Backend:\n"+
			"  BaseURL: %s\n"+
			"  Timeout: %s\n"+
			"Gate:\n"+
			"  GraceDuration: %s\n"+
			"  RecheckInterval: %s\n"+
			"  PendingDelay: %s\n"+
			"  PendingTTL: %s\n"+
			"Poller:\n"+
			"  Interval: %s\n",
		c.Env,
		c.AddressRedis,
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.BaseURL,
		c.TimeoutBackend,
		c.GraceDuration,
		c.RecheckInterval,
		c.PendingDelay,
		c.PendingTTL,
		c.PollInterval,
	)
}
