package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	ServerPort string

	// AccessSecret and RefreshSecret sign separate trust domains and must
	// never be equal: a leaked access secret must not allow minting
	// refresh tokens.
	AccessSecret  string
	RefreshSecret string

	AccessTokenMaxAge  int // seconds
	RefreshTokenMaxAge int // seconds
	VerifyTokenMaxAge  int // seconds

	FrontendURL string

	RedisURL string

	SMTPHost string
	SMTPPort string
	SMTPFrom string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	accessTokenMaxAge, err := strconv.Atoi(os.Getenv("ACCESS_TOKEN_MAX_AGE"))
	if err != nil || accessTokenMaxAge <= 0 {
		accessTokenMaxAge = 30
	}

	refreshTokenMaxAge, err := strconv.Atoi(os.Getenv("REFRESH_TOKEN_MAX_AGE"))
	if err != nil || refreshTokenMaxAge <= 0 {
		refreshTokenMaxAge = 604800 // 7 days
	}

	verifyTokenMaxAge, err := strconv.Atoi(os.Getenv("VERIFY_TOKEN_MAX_AGE"))
	if err != nil || verifyTokenMaxAge <= 0 {
		verifyTokenMaxAge = 86400 // 24 hours
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	frontendURL := os.Getenv("FRONTEND_URL")
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}

	accessSecret := os.Getenv("ACCESS_SECRET")
	refreshSecret := os.Getenv("REFRESH_SECRET")
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("ACCESS_SECRET and REFRESH_SECRET must be set")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("ACCESS_SECRET and REFRESH_SECRET must differ")
	}

	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		ServerPort: serverPort,

		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,

		AccessTokenMaxAge:  accessTokenMaxAge,
		RefreshTokenMaxAge: refreshTokenMaxAge,
		VerifyTokenMaxAge:  verifyTokenMaxAge,

		FrontendURL: frontendURL,

		RedisURL: os.Getenv("REDIS_URL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: os.Getenv("SMTP_PORT"),
		SMTPFrom: os.Getenv("SMTP_FROM"),

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicURL:       os.Getenv("R2_PUBLIC_URL"),
	}, nil
}
