package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Canteen  CanteenConfig  `mapstructure:"canteen"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Report   ReportConfig   `mapstructure:"report"`
	OSS      OSSConfig      `mapstructure:"oss"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, sqlite
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// AdminConfig 管理端共享密钥，KeyHash（bcrypt）优先于明文 Key
type AdminConfig struct {
	Key     string `mapstructure:"key"`
	KeyHash string `mapstructure:"key_hash"`
}

type CanteenConfig struct {
	Timezone          string   `mapstructure:"timezone"`
	Cutoff            string   `mapstructure:"cutoff"` // HH:MM，本地时间
	WeekendDays       []string `mapstructure:"weekend_days"`
	ValidityDays      int      `mapstructure:"validity_days"`
	DefaultTotalMeals int      `mapstructure:"default_total_meals"`
}

type QueueConfig struct {
	ReportQueue string `mapstructure:"report_queue"`
	MaxWorkers  int    `mapstructure:"max_workers"`
}

type ReportConfig struct {
	TempDir     string `mapstructure:"temp_dir"`
	ExpireHours int    `mapstructure:"expire_hours"`
	AutoEnqueue bool   `mapstructure:"auto_enqueue"` // 截止时间自动生成次日厨房报表
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type LogConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

const (
	DefaultCutoff       = "22:30"
	DefaultValidityDays = 25
	DefaultTotalMeals   = 20
)

// Location 解析食堂所在时区，未配置时使用本地时区
func (c CanteenConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid canteen timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// CutoffClock 解析截止时间为时、分
func (c CanteenConfig) CutoffClock() (hour, minute int, err error) {
	cutoff := c.Cutoff
	if cutoff == "" {
		cutoff = DefaultCutoff
	}
	t, err := time.Parse("15:04", cutoff)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid canteen cutoff %q: %w", cutoff, err)
	}
	return t.Hour(), t.Minute(), nil
}

// Weekend 返回休息日集合，默认周六、周日
func (c CanteenConfig) Weekend() (map[time.Weekday]bool, error) {
	days := c.WeekendDays
	if len(days) == 0 {
		days = []string{"saturday", "sunday"}
	}

	weekend := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		wd, ok := weekdays[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, fmt.Errorf("invalid weekend day %q", d)
		}
		weekend[wd] = true
	}
	return weekend, nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("jwt.expire_hours", 12)
	v.SetDefault("canteen.cutoff", DefaultCutoff)
	v.SetDefault("canteen.weekend_days", []string{"saturday", "sunday"})
	v.SetDefault("canteen.validity_days", DefaultValidityDays)
	v.SetDefault("canteen.default_total_meals", DefaultTotalMeals)
	v.SetDefault("queue.report_queue", "kitchen_reports")
	v.SetDefault("queue.max_workers", 2)
	v.SetDefault("report.temp_dir", filepath.Join(os.TempDir(), "rollbowl_reports"))
	v.SetDefault("report.expire_hours", 72)
	v.SetDefault("log.env", "development")
	v.SetDefault("log.level", "info")
}

func Load(configPath string) (*Config, error) {
	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// 环境变量覆盖
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
