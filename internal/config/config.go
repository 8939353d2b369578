package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const configFileEnvName = "MARKET_CONFIG_FILE"

type Config struct {
	Env   string
	Port  int
	DBURL string

	// postgres | memory
	StoreDriver string
	AutoMigrate bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	SessionTTL time.Duration

	// firebase | local
	ObjectStoreDriver        string
	ObjectStoreLocalDir      string
	ObjectStorePublicBaseURL string
	FirebaseProjectID        string
	FirebaseStorageBucket    string
	GoogleCredentialsFile    string
	FirebaseCredentialsB64   string
	MaxUploadBytes           int64

	CORSAllowedOrigins []string
	OTELEndpoint       string
	CatalogCacheTTL    time.Duration
	LoginRateLimit     int
	LoginRateWindow    time.Duration

	SeedSellerEmail    string
	SeedSellerPassword string
	SeedSellerName     string
	SeedSellerStore    string
}

func Load() Config {
	return load(os.Args[1:])
}

func load(args []string) Config {
	// a missing .env is normal outside local dev
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := configFilePath(args); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			fmt.Printf("failed to read config file %q: %v\n", path, err)
		}
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		dbURL = buildDBURL(v)
	}

	return Config{
		Env:         v.GetString("APP_ENV"),
		Port:        v.GetInt("PORT"),
		DBURL:       dbURL,
		StoreDriver: strings.ToLower(v.GetString("STORE_DRIVER")),
		AutoMigrate: v.GetBool("AUTO_MIGRATE"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		SessionTTL: time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour,

		ObjectStoreDriver:        strings.ToLower(v.GetString("OBJECTSTORE_DRIVER")),
		ObjectStoreLocalDir:      v.GetString("OBJECTSTORE_LOCAL_DIR"),
		ObjectStorePublicBaseURL: v.GetString("OBJECTSTORE_PUBLIC_BASE_URL"),
		FirebaseProjectID:        v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseStorageBucket:    v.GetString("FIREBASE_STORAGE_BUCKET"),
		GoogleCredentialsFile:    v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseCredentialsB64:   v.GetString("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"),
		MaxUploadBytes:           v.GetInt64("MAX_UPLOAD_BYTES"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		OTELEndpoint:       v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		CatalogCacheTTL:    time.Duration(v.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
		LoginRateLimit:     v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow:    time.Duration(v.GetInt("LOGIN_RATE_WINDOW_SECONDS")) * time.Second,

		SeedSellerEmail:    v.GetString("SEED_SELLER_EMAIL"),
		SeedSellerPassword: v.GetString("SEED_SELLER_PASSWORD"),
		SeedSellerName:     v.GetString("SEED_SELLER_NAME"),
		SeedSellerStore:    v.GetString("SEED_SELLER_STORE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "quickkart")
	v.SetDefault("DB_PASSWORD", "quickkart")
	v.SetDefault("DB_NAME", "quickkart")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("SESSION_TTL_HOURS", 24)
	v.SetDefault("OBJECTSTORE_DRIVER", "local")
	v.SetDefault("OBJECTSTORE_LOCAL_DIR", "./data/objects")
	v.SetDefault("OBJECTSTORE_PUBLIC_BASE_URL", "http://localhost:8080/objects")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	v.SetDefault("CATALOG_CACHE_TTL_SECONDS", 5)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW_SECONDS", 60)
}

func buildDBURL(v *viper.Viper) string {
	host := v.GetString("DB_HOST")
	port := v.GetString("DB_PORT")
	user := v.GetString("DB_USER")
	pass := v.GetString("DB_PASSWORD")
	name := v.GetString("DB_NAME")
	ssl := v.GetString("DB_SSLMODE")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

// configFilePath prefers the env var over --config, matching how deploys override images.
func configFilePath(args []string) string {
	if env, ok := os.LookupEnv(configFileEnvName); ok {
		return env
	}

	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	path := fs.String("config", "", "config file (yaml, json or env)")
	_ = fs.Parse(args)

	return *path
}

func splitList(raw string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WithTimeout bounds one request's store work. A nil parent means background.
func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}
