package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	ConvertAPI ConvertAPIConfig
	YtDlp      YtDlpConfig
	FFmpeg     FFmpegConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	StaticDir string
}

type StorageConfig struct {
	Dir           string
	MaxFileAge    time.Duration // sweep evicts artifacts older than this
	SweepInterval time.Duration
	DeleteDelay   time.Duration // grace after a download before the file is removed
}

type ConvertAPIConfig struct {
	BaseURL string
	APIKey  string
	Timeout int // seconds
}

type YtDlpConfig struct {
	Path    string
	Timeout int // seconds, per sub-attempt
}

type FFmpegConfig struct {
	Path    string
	Timeout int // seconds, hard wall-clock bound on a transcode
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	ConvertPerMin int
	FetchPerMin   int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("CONVERT_API_KEY")
	readSecret("REDIS_PASSWORD")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.static_dir", "STATIC_DIR")
	_ = viper.BindEnv("storage.dir", "DOWNLOADS_DIR")
	_ = viper.BindEnv("storage.max_file_age_ms", "MAX_FILE_AGE_MS")
	_ = viper.BindEnv("storage.sweep_interval_ms", "CLEANUP_INTERVAL_MS")
	_ = viper.BindEnv("storage.delete_delay_ms", "DELETE_DELAY_MS")
	_ = viper.BindEnv("convertapi.base_url", "CONVERT_API_BASE_URL")
	_ = viper.BindEnv("convertapi.api_key", "CONVERT_API_KEY")
	_ = viper.BindEnv("convertapi.timeout", "CONVERT_API_TIMEOUT")
	_ = viper.BindEnv("ytdlp.path", "YTDLP_PATH")
	_ = viper.BindEnv("ytdlp.timeout", "YTDLP_TIMEOUT")
	_ = viper.BindEnv("ffmpeg.path", "FFMPEG_PATH")
	_ = viper.BindEnv("ffmpeg.timeout", "FFMPEG_TIMEOUT")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("ratelimit.convert_per_min", "RATELIMIT_CONVERT_PER_MIN")
	_ = viper.BindEnv("ratelimit.fetch_per_min", "RATELIMIT_FETCH_PER_MIN")

	// Defaults
	viper.SetDefault("server.port", "3000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("server.static_dir", "./public")
	viper.SetDefault("storage.dir", "./downloads")
	viper.SetDefault("storage.max_file_age_ms", 3600000) // 1 hour
	viper.SetDefault("storage.sweep_interval_ms", 600000) // 10 minutes
	viper.SetDefault("storage.delete_delay_ms", 1000)
	viper.SetDefault("convertapi.base_url", "")
	viper.SetDefault("convertapi.timeout", 120)
	viper.SetDefault("ytdlp.path", "yt-dlp")
	viper.SetDefault("ytdlp.timeout", 180)
	viper.SetDefault("ffmpeg.path", "ffmpeg")
	viper.SetDefault("ffmpeg.timeout", 300)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("ratelimit.convert_per_min", 10)
	viper.SetDefault("ratelimit.fetch_per_min", 30)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			StaticDir: viper.GetString("server.static_dir"),
		},
		Storage: StorageConfig{
			Dir:           viper.GetString("storage.dir"),
			MaxFileAge:    time.Duration(viper.GetInt64("storage.max_file_age_ms")) * time.Millisecond,
			SweepInterval: time.Duration(viper.GetInt64("storage.sweep_interval_ms")) * time.Millisecond,
			DeleteDelay:   time.Duration(viper.GetInt64("storage.delete_delay_ms")) * time.Millisecond,
		},
		ConvertAPI: ConvertAPIConfig{
			BaseURL: viper.GetString("convertapi.base_url"),
			APIKey:  viper.GetString("convertapi.api_key"),
			Timeout: viper.GetInt("convertapi.timeout"),
		},
		YtDlp: YtDlpConfig{
			Path:    viper.GetString("ytdlp.path"),
			Timeout: viper.GetInt("ytdlp.timeout"),
		},
		FFmpeg: FFmpegConfig{
			Path:    viper.GetString("ffmpeg.path"),
			Timeout: viper.GetInt("ffmpeg.timeout"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			ConvertPerMin: viper.GetInt("ratelimit.convert_per_min"),
			FetchPerMin:   viper.GetInt("ratelimit.fetch_per_min"),
		},
	}

	return cfg, nil
}
