package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	GCS       GCSConfig       `json:"gcs"`
	Gotenberg GotenbergConfig `json:"gotenberg"`
	Storage   StorageConfig   `json:"storage"`
	Engine    EngineConfig    `json:"engine"`
}

type ServerConfig struct {
	Port         string   `json:"port"`
	Environment  string   `json:"environment"`
	BaseURL      string   `json:"base_url"`
	AllowOrigins []string `json:"allow_origins"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
}

// GCSConfig selects Cloud Storage for generated documents. When BucketName
// is empty documents are written to Storage.LocalDir instead.
type GCSConfig struct {
	BucketName      string `json:"bucket_name"`
	ProjectID       string `json:"project_id"`
	CredentialsPath string `json:"credentials_path"`
}

// GotenbergConfig points at the HTML to PDF converter. An empty URL disables
// PDF output and documents are stored as HTML only.
type GotenbergConfig struct {
	URL     string `json:"url"`
	Timeout string `json:"timeout"`
}

type StorageConfig struct {
	LocalDir string        `json:"local_dir"`
	MaxAge   time.Duration `json:"max_age"`
}

type EngineConfig struct {
	MaxDepth       int `json:"max_depth"`
	MaxIterations  int `json:"max_iterations"`
	MaxOutputBytes int `json:"max_output_bytes"`
	CacheSize      int `json:"cache_size"`
}

func (d *DatabaseConfig) DSN() string {
	// Cloud SQL Unix socket support
	if len(d.Host) > 0 && d.Host[0] == '/' {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.DBName)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User, d.Password, d.Host, d.Port, d.DBName)
}

func (g *GCSConfig) Enabled() bool {
	return g.BucketName != ""
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Failed to load .env file: %v, using system environment variables\n", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			BaseURL:      getEnv("BASE_URL", ""),
			AllowOrigins: parseAllowOrigins(),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "dr_contracts"),
		},
		GCS: GCSConfig{
			BucketName:      getEnv("GCS_BUCKET_NAME", ""),
			ProjectID:       getEnv("GOOGLE_CLOUD_PROJECT", ""),
			CredentialsPath: getEnv("GCS_CREDENTIALS_PATH", ""),
		},
		Gotenberg: GotenbergConfig{
			URL:     getEnv("GOTENBERG_URL", "http://localhost:3000"),
			Timeout: getEnv("GOTENBERG_TIMEOUT", "30s"),
		},
		Storage: StorageConfig{
			LocalDir: getEnv("STORAGE_LOCAL_DIR", "outputs"),
			MaxAge:   getEnvDuration("STORAGE_MAX_AGE", 24*time.Hour),
		},
		Engine: EngineConfig{
			MaxDepth:       getEnvInt("ENGINE_MAX_DEPTH", 64),
			MaxIterations:  getEnvInt("ENGINE_MAX_ITERATIONS", 10000),
			MaxOutputBytes: getEnvInt("ENGINE_MAX_OUTPUT_BYTES", 4<<20),
			CacheSize:      getEnvInt("ENGINE_CACHE_SIZE", 256),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		fmt.Printf("Warning: invalid %s=%q, using default %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		fmt.Printf("Warning: invalid %s=%q, using default %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func parseAllowOrigins() []string {
	if origins := os.Getenv("ALLOW_ORIGINS"); origins != "" {
		var allowOrigins []string
		for _, origin := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(origin); trimmed != "" {
				allowOrigins = append(allowOrigins, trimmed)
			}
		}
		return allowOrigins
	}

	// Fallback to the editor URL variables used by older deployments
	var allowOrigins []string
	if url := getEnv("EDITOR_URL", ""); url != "" {
		allowOrigins = append(allowOrigins, url)
	}
	if url := getEnv("BACKOFFICE_URL", ""); url != "" {
		allowOrigins = append(allowOrigins, url)
	}

	if len(allowOrigins) == 0 {
		allowOrigins = []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}
	}

	return allowOrigins
}
