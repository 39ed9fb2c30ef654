package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 结构体包含所有应用的配置
type Config struct {
	Server    ServerConfig    `mapstructure:"server"` // `mapstructure` 标签用于Viper绑定结构体
	MySQL     MySQLConfig     `mapstructure:"mysql"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	AliyunOSS AliyunOSSConfig `mapstructure:"aliyun_oss"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Detection DetectionConfig `mapstructure:"detection"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// MySQLConfig 数据库配置
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MinIOConfig MinIO配置
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

type AliyunOSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"` // 例如: oss-cn-hangzhou.aliyuncs.com
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	SecretKey string        `mapstructure:"secret_key"`
	ExpiresIn time.Duration `mapstructure:"expires_in"`
	Issuer    string        `mapstructure:"issuer"`
}

// StorageConfig 对象存储网关配置
type StorageConfig struct {
	Type               string `mapstructure:"type"`                 // minio 或 aliyun_oss
	Workers            int    `mapstructure:"workers"`              // 批量资源校验/拉取的并发度
	PresignedURLExpiry int    `mapstructure:"presigned_url_expiry"` // 预签名URL有效期(分钟)
}

// DetectionConfig 标签识别服务配置
type DetectionConfig struct {
	Endpoint      string  `mapstructure:"endpoint"`
	APIKey        string  `mapstructure:"api_key"`
	Workers       int     `mapstructure:"workers"`         // 批量识别的并发度
	MaxLabels     int     `mapstructure:"max_labels"`      // 每个文件建议标签的上限
	MinConfidence float64 `mapstructure:"min_confidence"`  // 置信度阈值(0-100)
	TimeoutSec    int     `mapstructure:"timeout_seconds"` // 单次识别请求超时
}

// zap日志配置
type LogConfig struct {
	OutputPath string `mapstructure:"output_path"`
	ErrorPath  string `mapstructure:"error_path"`
	Level      string `mapstructure:"level"`
}

var AppConfig *Config // 全局应用配置实例

// LoadConfig 加载配置
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")             // 配置文件名 (不带扩展名)
	viper.SetConfigType("yaml")               // 配置文件类型
	viper.AddConfigPath(".")                  // 在当前目录查找配置文件
	viper.AddConfigPath("./configs")          // 也可以添加其他路径
	viper.AddConfigPath("/etc/go-filelabel/") // 生产环境常见路径

	// 读取环境变量,例如 GO_FILELABEL_SERVER_PORT 对应 server.port
	viper.SetEnvPrefix("GO_FILELABEL")
	viper.AutomaticEnv()

	// 替换环境变量中的点为下划线,确保 MYSQL_DSN 能映射到 mysql.dsn
	replacer := strings.NewReplacer(".", "_")
	viper.SetEnvKeyReplacer(replacer)

	// 默认值:保证缺省配置下批处理并发与识别阈值可用
	viper.SetDefault("storage.type", "minio")
	viper.SetDefault("storage.workers", 8)
	viper.SetDefault("storage.presigned_url_expiry", 15)
	viper.SetDefault("detection.workers", 4)
	viper.SetDefault("detection.max_labels", 5)
	viper.SetDefault("detection.min_confidence", 80)
	viper.SetDefault("detection.timeout_seconds", 10)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// 配置文件未找到,但这不是致命错误,可以依赖环境变量或默认值
			log.Println("Warning: config file not found, using environment variables or default values.")
			return nil, err
		} else {
			log.Fatalf("Fatal error reading config file: %s \n", err)
			return nil, err
		}
	}

	// 将读取到的配置绑定到结构体
	AppConfig = &Config{}
	if err := viper.Unmarshal(AppConfig); err != nil {
		log.Fatalf("Fatal error unmarshaling config: %s \n", err)
		return nil, err
	}

	log.Println("Configuration loaded successfully with Viper.")
	return AppConfig, nil
}
