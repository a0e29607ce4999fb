package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Services ServicesConfig `mapstructure:"services"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Sqlite SqliteConfig `mapstructure:"sqlite"`
	Redis  RedisConfig  `mapstructure:"redis"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServicesConfig 定义了外部服务相关的配置
type ServicesConfig struct {
	Template  TemplateConfig  `mapstructure:"template"`
	ImageHost ImageHostConfig `mapstructure:"imageHost"`
}

// TemplateConfig 定义了模板服务(Imgflip)的配置
type TemplateConfig struct {
	BaseURL      string        `mapstructure:"baseURL"`
	Timeout      time.Duration `mapstructure:"timeout"`
	SyncInterval time.Duration `mapstructure:"syncInterval"`
}

// ImageHostConfig 定义了图床服务(ImgBB)的配置
// APIKey 可以通过环境变量 IMGBB_API_KEY 覆盖，避免将密钥写入配置文件
type ImageHostConfig struct {
	UploadURL string        `mapstructure:"uploadURL"`
	APIKey    string        `mapstructure:"apiKey"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// AuthConfig 定义了认证相关的配置
type AuthConfig struct {
	SessionTTL time.Duration `mapstructure:"sessionTTL"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config") // 文件名 (不带扩展名)
	v.SetConfigType("yaml")   // 文件类型

	// 2. 添加配置文件搜索路径
	// 可以添加多个路径，Viper会按顺序查找
	v.AddConfigPath("./config") // `config/config.yaml`
	v.AddConfigPath(".")        // `./config.yaml` (如果在根目录)

	// 3. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 SERVER_ADDRESS=:8888
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 5. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 6. 图床密钥优先从环境变量读取 (配合godotenv加载的.env文件)
	if key := os.Getenv("IMGBB_API_KEY"); key != "" {
		cfg.Services.ImageHost.APIKey = key
	}

	// 7. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}
