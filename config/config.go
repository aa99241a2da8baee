package config

import (
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where LoadConfig looks for the YAML file.
const DefaultPath = "config/config.yaml"

// Config application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
	Media    MediaConfig    `yaml:"media"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port         string        `yaml:"port"`         // listen port
	ReadTimeout  time.Duration `yaml:"readTimeout"`  // read timeout
	WriteTimeout time.Duration `yaml:"writeTimeout"` // write timeout
	IdleTimeout  time.Duration `yaml:"idleTimeout"`  // keep-alive idle timeout
	StaticDir    string        `yaml:"staticDir"`    // overrides the embedded /static assets when set
}

// DatabaseConfig database settings
// Driver is one of mysql, postgres or sqlite. Path is only used by sqlite.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
	Path     string `yaml:"path"`
	MaxIdle  int    `yaml:"maxIdle"` // max idle connections
	MaxOpen  int    `yaml:"maxOpen"` // max open connections
	LogSQL   bool   `yaml:"logSQL"`  // print every statement
}

// JWTConfig session token signing settings
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	ExpireTime time.Duration `yaml:"expireTime"`
	Issuer     string        `yaml:"issuer"`
}

// SessionConfig cookie settings for the session and flash cookies
type SessionConfig struct {
	CookieName      string `yaml:"cookieName"`
	FlashCookieName string `yaml:"flashCookieName"`
	Secure          bool   `yaml:"secure"`
	Domain          string `yaml:"domain"`
}

// LogConfig log settings
type LogConfig struct {
	Level      string `yaml:"level"`
	Filename   string `yaml:"filename"`
	MaxSize    int    `yaml:"maxSize"`    // MB per file
	MaxBackups int    `yaml:"maxBackups"` // rotated files kept
	MaxAge     int    `yaml:"maxAge"`     // days
	Compress   bool   `yaml:"compress"`
	Console    bool   `yaml:"console"` // also write to stdout
}

// RedisConfig Redis settings
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MediaConfig uploaded file settings
type MediaConfig struct {
	Dir           string `yaml:"dir"`           // where avatars are written, served under /media
	MaxUploadSize int64  `yaml:"maxUploadSize"` // bytes
	DefaultAvatar string `yaml:"defaultAvatar"`
}

// LoadConfig loads config/config.yaml and applies environment overrides
func LoadConfig() *Config {
	return Load(DefaultPath)
}

// Load reads the YAML file at path (defaults when missing or invalid) and
// then lets environment variables override individual fields.
func Load(path string) *Config {
	config := loadFromYAML(path)
	overrideWithEnvVars(config)
	return config
}

// loadFromYAML reads the YAML file on top of the defaults
func loadFromYAML(filePath string) *Config {
	config := getDefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		return config
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return getDefaultConfig()
	}

	return config
}

// overrideWithEnvVars applies environment variables, which win over the file
func overrideWithEnvVars(config *Config) {
	// server
	if port := getEnv("SERVER_PORT", ""); port != "" {
		config.Server.Port = port
	}
	if timeout := getEnvDuration("SERVER_READ_TIMEOUT", 0); timeout > 0 {
		config.Server.ReadTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_WRITE_TIMEOUT", 0); timeout > 0 {
		config.Server.WriteTimeout = timeout
	}
	if timeout := getEnvDuration("SERVER_IDLE_TIMEOUT", 0); timeout > 0 {
		config.Server.IdleTimeout = timeout
	}
	if dir := getEnv("SERVER_STATIC_DIR", ""); dir != "" {
		config.Server.StaticDir = dir
	}

	// database
	if driver := getEnv("DB_DRIVER", ""); driver != "" {
		config.Database.Driver = driver
	}
	if host := getEnv("DB_HOST", ""); host != "" {
		config.Database.Host = host
	}
	if port := getEnvInt("DB_PORT", 0); port > 0 {
		config.Database.Port = port
	}
	if username := getEnv("DB_USERNAME", ""); username != "" {
		config.Database.Username = username
	}
	if password := getEnv("DB_PASSWORD", ""); password != "" {
		config.Database.Password = password
	}
	if database := getEnv("DB_DATABASE", ""); database != "" {
		config.Database.Database = database
	}
	if charset := getEnv("DB_CHARSET", ""); charset != "" {
		config.Database.Charset = charset
	}
	if path := getEnv("DB_PATH", ""); path != "" {
		config.Database.Path = path
	}
	if maxIdle := getEnvInt("DB_MAX_IDLE", 0); maxIdle > 0 {
		config.Database.MaxIdle = maxIdle
	}
	if maxOpen := getEnvInt("DB_MAX_OPEN", 0); maxOpen > 0 {
		config.Database.MaxOpen = maxOpen
	}
	config.Database.LogSQL = getEnvBool("DB_LOG_SQL", config.Database.LogSQL)

	// jwt
	if secret := getEnv("JWT_SECRET", ""); secret != "" {
		config.JWT.Secret = secret
	}
	if expireTime := getEnvDuration("JWT_EXPIRE_TIME", 0); expireTime > 0 {
		config.JWT.ExpireTime = expireTime
	}
	if issuer := getEnv("JWT_ISSUER", ""); issuer != "" {
		config.JWT.Issuer = issuer
	}

	// session
	if name := getEnv("SESSION_COOKIE_NAME", ""); name != "" {
		config.Session.CookieName = name
	}
	if domain := getEnv("SESSION_COOKIE_DOMAIN", ""); domain != "" {
		config.Session.Domain = domain
	}
	config.Session.Secure = getEnvBool("SESSION_COOKIE_SECURE", config.Session.Secure)

	// log
	if level := getEnv("LOG_LEVEL", ""); level != "" {
		config.Log.Level = level
	}
	if filename := getEnv("LOG_FILENAME", ""); filename != "" {
		config.Log.Filename = filename
	}
	if maxSize := getEnvInt("LOG_MAX_SIZE", 0); maxSize > 0 {
		config.Log.MaxSize = maxSize
	}
	if maxBackups := getEnvInt("LOG_MAX_BACKUPS", 0); maxBackups > 0 {
		config.Log.MaxBackups = maxBackups
	}
	if maxAge := getEnvInt("LOG_MAX_AGE", 0); maxAge > 0 {
		config.Log.MaxAge = maxAge
	}
	config.Log.Console = getEnvBool("LOG_CONSOLE", config.Log.Console)

	// redis
	if host := getEnv("REDIS_HOST", ""); host != "" {
		config.Redis.Host = host
	}
	if port := getEnvInt("REDIS_PORT", 0); port > 0 {
		config.Redis.Port = port
	}
	if password := getEnv("REDIS_PASSWORD", ""); password != "" {
		config.Redis.Password = password
	}
	if db := getEnvInt("REDIS_DB", -1); db >= 0 {
		config.Redis.DB = db
	}

	// media
	if dir := getEnv("MEDIA_DIR", ""); dir != "" {
		config.Media.Dir = dir
	}
	if size := getEnvInt("MEDIA_MAX_UPLOAD_SIZE", 0); size > 0 {
		config.Media.MaxUploadSize = int64(size)
	}
}

// getDefaultConfig returns the built-in defaults
func getDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			StaticDir:    "",
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     3306,
			Username: "forum_user",
			Password: "forum_password",
			Database: "forum",
			Charset:  "utf8mb4",
			Path:     "forum.db",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		JWT: JWTConfig{
			Secret:     "change-me-in-production",
			ExpireTime: 14 * 24 * time.Hour,
			Issuer:     "forum-system",
		},
		Session: SessionConfig{
			CookieName:      "sessionid",
			FlashCookieName: "flashid",
		},
		Log: LogConfig{
			Level:      "info",
			Filename:   "logs/app.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Media: MediaConfig{
			Dir:           "media",
			MaxUploadSize: 2 << 20,
			DefaultAvatar: "avatar.svg",
		},
	}
}

// getEnv returns the variable or defaultValue when unset
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt integer variable
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool boolean variable
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration duration variable
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
