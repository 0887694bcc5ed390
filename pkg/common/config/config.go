package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServerConfig struct {
	Address string `json:"address"`
}

// BackendConfig 后端 REST 服务
type BackendConfig struct {
	BaseURL         string        `json:"baseURL"`
	DialTimeout     time.Duration `json:"dialTimeout"` // 仅限制建立连接，请求本身不设超时
	UserAgent       string        `json:"userAgent"`
	MaxConnsPerHost int           `json:"maxConnsPerHost"`
}

// TransferConfig 页面间中转通道
type TransferConfig struct {
	Driver     string        `json:"driver"`     // badger | mysql | sqlite
	Dir        string        `json:"dir"`        // badger 数据目录，空表示内存模式
	SQLitePath string        `json:"sqlitePath"` // sqlite 文件路径
	TTL        time.Duration `json:"ttl"`
}

type SecurityConfig struct {
	MaxBodySize    int64    `json:"maxBodySize"` // 单位：字节
	AllowedHosts   []string `json:"allowedHosts"`
	AllowedMethods []string `json:"allowedMethods"`
}

type CORSConfig struct {
	AllowOrigins     []string      `json:"allowOrigins"`
	AllowMethods     []string      `json:"allowMethods"`
	AllowHeaders     []string      `json:"allowHeaders"`
	ExposeHeaders    []string      `json:"exposeHeaders"`
	AllowCredentials bool          `json:"allowCredentials"`
	MaxAge           time.Duration `json:"maxAge"`
	TrustedDomains   []string      `json:"trustedDomains"`
}

type RateLimitConfig struct {
	Rate     int           `json:"rate"`
	Interval time.Duration `json:"interval"`
}

type MiddlewareConfig struct {
	Security  SecurityConfig  `json:"security"`
	CORS      CORSConfig      `json:"cors"`
	RateLimit RateLimitConfig `json:"rateLimit"`
}

// 数据库配置，供 mysql 中转通道使用
type DatabaseConfig struct {
	Host        string `json:"host"`        // 数据库主机地址
	Port        int    `json:"port"`        // 数据库端口
	Username    string `json:"username"`    // 数据库用户名
	Password    string `json:"password"`    // 数据库密码
	DBName      string `json:"dbname"`      // 数据库名称
	UseUnixSock bool   `json:"useUnixSock"` // 是否使用Unix套接字连接
	MinPoolSize int    `json:"minPoolSize"` // 连接池最小连接数
	MaxPoolSize int    `json:"maxPoolSize"` // 连接池最大连接数
	LogLevel    string `json:"logLevel"`    // GORM日志级别
}

type StatusConfig struct {
	TransientDelay time.Duration `json:"transientDelay"`
}

type UploadConfig struct {
	MaxFileSize int64 `json:"maxFileSize"` // 单个文件上限，单位：字节
	PreviewSize uint  `json:"previewSize"` // 预览图最长边
}

type PageConfig struct {
	IdleTTL time.Duration `json:"idleTTL"` // 页面上下文闲置回收时间
}

type Config struct {
	Server     ServerConfig     `json:"server"`
	Backend    BackendConfig    `json:"backend"`
	Transfer   TransferConfig   `json:"transfer"`
	Database   DatabaseConfig   `json:"database"`
	Status     StatusConfig     `json:"status"`
	Upload     UploadConfig     `json:"upload"`
	Page       PageConfig       `json:"page"`
	Middleware MiddlewareConfig `json:"middleware"`
	LogLevel   string           `json:"logLevel"`
	Env        string           `json:"env"` // 环境标识
}

var defaultConfig = Config{
	Server: ServerConfig{
		Address: ":8080",
	},
	Backend: BackendConfig{
		BaseURL:         "http://localhost:8081",
		DialTimeout:     3 * time.Second,
		UserAgent:       "eventshare-web",
		MaxConnsPerHost: 64,
	},
	Transfer: TransferConfig{
		Driver:     "badger",
		Dir:        "",
		SQLitePath: "transfer.db",
		TTL:        10 * time.Minute,
	},
	Database: DatabaseConfig{
		Host:        "localhost",
		Port:        3306,
		Username:    "root",
		Password:    "root",
		DBName:      "eventshare",
		UseUnixSock: false,
		MinPoolSize: 2,
		MaxPoolSize: 10,
		LogLevel:    "warn",
	},
	Status: StatusConfig{
		TransientDelay: 3 * time.Second,
	},
	Upload: UploadConfig{
		MaxFileSize: 10 << 20, // 10MB
		PreviewSize: 300,
	},
	Page: PageConfig{
		IdleTTL: 2 * time.Hour,
	},
	Middleware: MiddlewareConfig{
		Security: SecurityConfig{
			// 一次可选多张图片，每张不超过 10MB
			MaxBodySize:    64 << 20,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		},
		CORS: CORSConfig{
			AllowOrigins:     []string{"http://localhost:8080"},
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
			TrustedDomains:   []string{"localhost"},
		},
		RateLimit: RateLimitConfig{
			Rate:     50,
			Interval: 100 * time.Millisecond,
		},
	},
	LogLevel: "info",
	Env:      "development",
}

// Default 返回默认配置的副本
func Default() *Config {
	config := defaultConfig
	return &config
}

// IsProd 判断当前是否生产环境
func (c *Config) IsProd() bool {
	return c.Env == "production"
}

// Load 加载配置（优先级：环境变量 > .env > 配置文件 > 默认值）
func Load() *Config {
	config := defaultConfig

	// 1. 尝试从配置文件加载
	configPath := getConfigPath()
	if configPath != "" {
		if err := loadFromFile(&config, configPath); err != nil {
			hlog.Warnf("Failed to load config file: %v", err)
		}
	}

	// 2. .env 只补充尚未设置的环境变量
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		hlog.Warnf("Failed to load .env file: %v", err)
	}

	// 3. 从环境变量覆盖
	loadFromEnv(&config)

	return &config
}

// getConfigPath 获取配置文件路径
func getConfigPath() string {
	// 优先使用环境变量指定的配置文件路径
	if path := os.Getenv("APP_CONFIG"); path != "" {
		return path
	}

	// 依次查找可能的配置文件位置
	searchPaths := []string{
		"./config.json",                   // 当前目录
		"../config.json",                  // 上级目录
		"/etc/eventshare-web/config.json", // 系统配置目录
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadFromFile 从文件加载配置
func loadFromFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, config)
}

// loadFromEnv 从环境变量加载配置
func loadFromEnv(config *Config) {
	// 服务器配置
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		config.Server.Address = v
	}

	// 环境配置
	if v := os.Getenv("APP_ENV"); v != "" {
		config.Env = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = strings.ToLower(v)
	}

	// 后端配置
	if v := os.Getenv("BACKEND_URL"); v != "" {
		config.Backend.BaseURL = strings.TrimRight(v, "/")
	}

	if v := os.Getenv("BACKEND_DIAL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Backend.DialTimeout = d
		} else {
			hlog.Warnf("Invalid BACKEND_DIAL_TIMEOUT format: %v", err)
		}
	}

	if v := os.Getenv("BACKEND_USER_AGENT"); v != "" {
		config.Backend.UserAgent = v
	}

	// 中转通道配置
	if v := os.Getenv("TRANSFER_DRIVER"); v != "" {
		driver := strings.ToLower(strings.TrimSpace(v))
		switch driver {
		case "badger", "mysql", "sqlite":
			config.Transfer.Driver = driver
		default:
			hlog.Warnf("Unsupported TRANSFER_DRIVER: %s", v)
		}
	}

	if v := os.Getenv("TRANSFER_DIR"); v != "" {
		config.Transfer.Dir = v
	}

	if v := os.Getenv("TRANSFER_SQLITE_PATH"); v != "" {
		config.Transfer.SQLitePath = v
	}

	if v := os.Getenv("TRANSFER_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.Transfer.TTL = d
		} else {
			hlog.Warnf("Invalid TRANSFER_TTL: %s", v)
		}
	}

	// 提示信息与上传配置
	if v := os.Getenv("STATUS_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Status.TransientDelay = d
		} else {
			hlog.Warnf("Invalid STATUS_DELAY format: %v", err)
		}
	}

	if v := os.Getenv("UPLOAD_MAX_FILE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Upload.MaxFileSize = size
		}
	}

	if v := os.Getenv("PAGE_IDLE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.Page.IdleTTL = d
		}
	}

	// 中间件配置
	if v := os.Getenv("MAX_BODY_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Middleware.Security.MaxBodySize = size
		}
	}

	if v := os.Getenv("RATE_LIMIT"); v != "" {
		if rate, err := strconv.Atoi(v); err == nil {
			config.Middleware.RateLimit.Rate = rate
		}
	}

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.Middleware.CORS.AllowOrigins = splitEnvList(v)
	}

	if v := os.Getenv("CORS_TRUSTED_DOMAINS"); v != "" {
		config.Middleware.CORS.TrustedDomains = splitEnvList(v)
	}

	// 数据库配置
	if v := os.Getenv("DB_HOST"); v != "" {
		config.Database.Host = v
	}

	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Database.Port = port
		}
	}

	if v := os.Getenv("DB_USER"); v != "" {
		config.Database.Username = v
	}

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		config.Database.Password = v
	}

	if v := os.Getenv("DB_NAME"); v != "" {
		config.Database.DBName = v
	}

	if v := os.Getenv("DB_SOCKET"); v != "" {
		config.Database.UseUnixSock = parseBool(v)
	}

	if v := os.Getenv("DB_MIN_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MinPoolSize = size
		}
	}

	if v := os.Getenv("DB_MAX_POOL"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			config.Database.MaxPoolSize = size
		}
	}

	if v := os.Getenv("DB_LOG_LEVEL"); v != "" {
		config.Database.LogLevel = strings.ToLower(v)
	}
}

// 分割环境变量列表（支持逗号分隔的字符串）
func splitEnvList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// 转换字符串为布尔值
func parseBool(value string) bool {
	value = strings.ToLower(value)
	return value == "true" || value == "1" || value == "yes"
}

// HlogLevel 将配置的日志级别转换为 hlog 级别
func (c *Config) HlogLevel() hlog.Level {
	switch c.LogLevel {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "warn":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	default:
		return hlog.LevelInfo
	}
}

// DSN 根据配置生成 mysql 连接串
func (c *Config) DSN() string {
	charsetParam := "charset=utf8mb4&parseTime=True&loc=Local"

	// 自动切换连接方式
	if c.Database.UseUnixSock {
		return fmt.Sprintf("%s:%s@unix(%s)/%s?%s",
			c.Database.Username,
			c.Database.Password,
			c.Database.Host, // 这里host存储的是socket路径
			c.Database.DBName,
			charsetParam)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		c.Database.Username,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		charsetParam)
}

// InitDB 为 SQL 中转通道打开数据库（mysql 或 sqlite）
func (c *Config) InitDB() (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Transfer.Driver {
	case "mysql":
		dialector = mysql.Open(c.DSN())
	case "sqlite":
		dialector = sqlite.Open(c.Transfer.SQLitePath)
	default:
		return nil, fmt.Errorf("transfer driver %q has no SQL database", c.Transfer.Driver)
	}

	// 配置GORM日志级别
	gormConfig := &gorm.Config{}
	switch c.Database.LogLevel {
	case "silent":
		gormConfig.Logger = logger.Default.LogMode(logger.Silent)
	case "error":
		gormConfig.Logger = logger.Default.LogMode(logger.Error)
	case "warn":
		gormConfig.Logger = logger.Default.LogMode(logger.Warn)
	case "info":
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	// 初始化数据库连接
	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxIdleConns(c.Database.MinPoolSize)
	sqlDB.SetMaxOpenConns(c.Database.MaxPoolSize)
	if c.Transfer.Driver == "sqlite" {
		// sqlite 单写者
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}
