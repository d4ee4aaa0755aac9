package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort        string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL     string `env:"DATABASE_URL,required,notEmpty"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MediaPath       string `env:"MEDIA_PATH" envDefault:"/media/"`
	JWTSecret       string `env:"JWT_SECRET,required,notEmpty"`
	TokenTTLMinutes int    `env:"TOKEN_TTL_MINUTES" envDefault:"10080"`
	PhoneRegion     string `env:"PHONE_REGION" envDefault:"NG"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SMSAPIURL   string `env:"SMS_API_URL" envDefault:"https://app.smartsmssolutions.com/io/api/client/v1/sms/"`
	SMSAPIToken string `env:"SMS_API_TOKEN"`
	SMSSenderID string `env:"SMS_SENDER_ID"`
	SMSRouting  string `env:"SMS_ROUTING" envDefault:"3"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`
	S3URLTTLMinutes int    `env:"S3_URL_TTL_MINUTES" envDefault:"15"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SMSEnabled indica si hay credenciales para el gateway de SMS.
func (c *Config) SMSEnabled() bool {
	return c.SMSAPIToken != "" && c.SMSSenderID != ""
}

func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}
