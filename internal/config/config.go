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
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Auth                    Auth      `yaml:"auth"`
	Mail                    Mail      `yaml:"mail"`
	RabbitMQ                RabbitMQ  `yaml:"rabbitmq"`
	GenAI                   GenAI     `yaml:"genai"`
	Notes                   Notes     `yaml:"notes"`
	Telemetry               Telemetry `yaml:"telemetry"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP    string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP    time.Duration `yaml:"timeouthttp" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env-default:"60s"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps" env-default:"5"`
	RateLimitBurst int           `yaml:"rate_limit_burst" env-default:"10"`
	// TrustedProxies подсети прокси, чьим заголовкам X-Forwarded-For верит лимитер.
	TrustedProxies []string `yaml:"trusted_proxies" env:"HTTP_TRUSTED_PROXIES" env-separator:","`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET" env-required:"true"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"1h"`
}

// Auth настройки жизненного цикла учетных данных.
type Auth struct {
	BcryptCost           int           `yaml:"bcrypt_cost" env-default:"10"`
	VerificationTokenTTL time.Duration `yaml:"verification_token_ttl" env-default:"24h"`
	ResetTokenTTL        time.Duration `yaml:"reset_token_ttl" env-default:"1h"`
	ClientURL            string        `yaml:"client_url" env:"CLIENT_URL" env-default:"http://localhost:5173"`
	// UniformResponses скрывает существование аккаунта в forgot-password,
	// resend-verification и ветке неподтвержденного логина.
	UniformResponses bool `yaml:"uniform_responses" env:"AUTH_UNIFORM_RESPONSES" env-default:"false"`
}

// Mail настройки провайдеров почты. Используется первый провайдер,
// для которого заданы учетные данные: Resend, SendGrid, SMTP.
type Mail struct {
	FromAddress    string        `yaml:"from_address" env:"MAIL_FROM" env-default:"no-reply@notegenius.local"`
	FromName       string        `yaml:"from_name" env-default:"Note Genius"`
	ResendAPIKey   string        `yaml:"resend_api_key" env:"RESEND_API_KEY"`
	SendGridAPIKey string        `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	SMTPHost       string        `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort       string        `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser       string        `yaml:"smtp_user" env:"SMTP_EMAIL"`
	SMTPPass       string        `yaml:"smtp_pass" env:"SMTP_PASSWORD"`
	LogoPath       string        `yaml:"logo_path" env:"MAIL_LOGO_PATH"`
	SendTimeout    time.Duration `yaml:"send_timeout" env-default:"30s"`
}

// RabbitMQ настройки очереди асинхронной отправки писем.
// Пустой URL означает отправку в фоновой горутине без брокера.
type RabbitMQ struct {
	URL        string        `yaml:"url" env:"RABBITMQ_URL"`
	MaxRetries int           `yaml:"max_retries" env-default:"5"`
	RetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// GenAI настройки генеративной модели.
type GenAI struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env-default:"gemini-flash-latest"`
}

// Notes настройки работы с конспектами.
type Notes struct {
	HistoryTTL     time.Duration `yaml:"history_ttl" env-default:"1h"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" env-default:"10485760"`
}

// Telemetry настройки трассировки OpenTelemetry.
type Telemetry struct {
	ServiceName  string `yaml:"service_name" env-default:"notegenius"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load читает конфиг из файла и переменных окружения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "***"
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"RedisConnection:\n"+
			"  Addr: %s\n"+
			"  Password: %s\n"+
			"  DB: %d\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  TokenTTL: %s\n"+
			"Mail:\n"+
			"  Resend: %s\n"+
			"  SendGrid: %s\n"+
			"  SMTP: %s@%s:%s\n"+
			"RabbitMQ: %s\n"+
			"GenAI:\n"+
			"  Model: %s\n"+
			"  APIKey: %s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.AddressRedis,
		mask(c.Password),
		c.DB,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		mask(c.JWTSecretKey),
		c.TokenTTL,
		mask(c.Mail.ResendAPIKey),
		mask(c.Mail.SendGridAPIKey),
		c.Mail.SMTPUser,
		c.Mail.SMTPHost,
		c.Mail.SMTPPort,
		mask(c.RabbitMQ.URL),
		c.GenAI.Model,
		mask(c.GenAI.APIKey),
	)
}
