package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config 描述了 chatpayd 在启动阶段需要加载的全部配置。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	LLM       LLMConfig       `yaml:"llm"`
	TxService TxServiceConfig `yaml:"tx_service"`
	Pinning   PinningConfig   `yaml:"pinning"`
	Store     StoreConfig     `yaml:"store"`
	Indexer   IndexerConfig   `yaml:"indexer"`
	Notify    NotifyConfig    `yaml:"notify"`
	History   HistoryConfig   `yaml:"history"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig 控制 API 服务的监听地址等参数。
type ServerConfig struct {
	Address        string   `yaml:"address"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// LLMConfig 用于配置意图识别所用的大模型补全接口。
type LLMConfig struct {
	APIKey         string `yaml:"api_key"`
	BaseURL        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	MaxTokens      int    `yaml:"max_tokens"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout 返回调用大模型的超时时间。
func (c LLMConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds)
}

// Enabled 表示是否配置了大模型凭证。
func (c LLMConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// TxServiceConfig 描述交易构建/提交微服务。
type TxServiceConfig struct {
	BaseURL              string `yaml:"base_url"`
	BuildTimeoutSeconds  int    `yaml:"build_timeout_seconds"`
	SubmitTimeoutSeconds int    `yaml:"submit_timeout_seconds"`
	LookupTimeoutSeconds int    `yaml:"lookup_timeout_seconds"`
}

// PinningConfig 描述内容寻址存储（web3.storage）的上传参数。
type PinningConfig struct {
	Token          string `yaml:"token"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Enabled 表示是否配置了存储凭证。
func (c PinningConfig) Enabled() bool {
	return strings.TrimSpace(c.Token) != ""
}

// Timeout 返回上传超时时间。
func (c PinningConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds)
}

// 关系型存储驱动。
const (
	StoreDriverSupabase = "supabase"
	StoreDriverPostgres = "postgres"
	StoreDriverMySQL    = "mysql"
)

// StoreConfig 描述交易记录落库的方式。
type StoreConfig struct {
	Driver         string `yaml:"driver"`
	SupabaseURL    string `yaml:"supabase_url"`
	SupabaseKey    string `yaml:"supabase_key"`
	Table          string `yaml:"table"`
	DSN            string `yaml:"dsn"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RESTEnabled 表示 Supabase REST 接口的地址与密钥是否都已配置。
func (c StoreConfig) RESTEnabled() bool {
	return strings.TrimSpace(c.SupabaseURL) != "" && strings.TrimSpace(c.SupabaseKey) != ""
}

// Enabled 表示当前驱动所需的连接信息是否齐全。
func (c StoreConfig) Enabled() bool {
	switch c.Driver {
	case StoreDriverPostgres, StoreDriverMySQL:
		return strings.TrimSpace(c.DSN) != ""
	default:
		return c.RESTEnabled()
	}
}

// Timeout 返回单次写入的超时时间。
func (c StoreConfig) Timeout() time.Duration {
	return seconds(c.TimeoutSeconds)
}

// IndexerConfig 描述 Koios 账本索引服务。
type IndexerConfig struct {
	BaseURL             string `yaml:"base_url"`
	InfoEndpoint        string `yaml:"info_endpoint"`
	UTXOEndpoint        string `yaml:"utxo_endpoint"`
	UTXOFallback        string `yaml:"utxo_fallback_endpoint"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	BatchTimeoutSeconds int    `yaml:"batch_timeout_seconds"`
}

// 通知驱动。
const (
	NotifyDriverRedis    = "redis"
	NotifyDriverRabbitMQ = "rabbitmq"
)

// NotifyConfig 描述回执事件的投递目标。
type NotifyConfig struct {
	Driver   string         `yaml:"driver"`
	Queue    string         `yaml:"queue"`
	Redis    RedisConfig    `yaml:"redis"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
}

// RedisConfig 描述 Redis 连接参数。
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RabbitMQConfig 描述 RabbitMQ 连接参数。
type RabbitMQConfig struct {
	URL     string `yaml:"url"`
	Durable bool   `yaml:"durable"`
}

// HistoryConfig 控制 /save-history 的本地兜底文件。
type HistoryConfig struct {
	File string `yaml:"file"`
}

// LoggingConfig 控制结构化日志输出。
type LoggingConfig struct {
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	Outputs   []string `yaml:"outputs"`
	AuditPath string   `yaml:"audit_path"`
}

// env 列出兼容原有部署方式的环境变量，仅覆盖显式设置的项。
type env struct {
	Port               string   `envconfig:"PORT"`
	Address            string   `envconfig:"CHATPAY_ADDRESS"`
	AllowedOrigins     []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	OpenAIAPIKey       string   `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL      string   `envconfig:"OPENAI_BASE_URL"`
	OpenAIModel        string   `envconfig:"OPENAI_MODEL"`
	MeshServiceURL     string   `envconfig:"MESHJS_SERVICE_URL"`
	Web3StorageToken   string   `envconfig:"WEB3_STORAGE_TOKEN"`
	Web3StorageURL     string   `envconfig:"WEB3_STORAGE_URL"`
	SupabaseURL        string   `envconfig:"SUPABASE_URL"`
	SupabaseServiceKey string   `envconfig:"SUPABASE_SERVICE_KEY"`
	StoreDriver        string   `envconfig:"STORE_DRIVER"`
	StoreDSN           string   `envconfig:"STORE_DSN"`
	KoiosBase          string   `envconfig:"KOIOS_BASE"`
	KoiosUTXOEndpoint  string   `envconfig:"KOIOS_UTXO_ENDPOINT"`
	KoiosUTXOFallback  string   `envconfig:"KOIOS_UTXO_FALLBACK_ENDPOINT"`
	NotifyDriver       string   `envconfig:"NOTIFY_DRIVER"`
	NotifyQueue        string   `envconfig:"NOTIFY_QUEUE"`
	RedisAddr          string   `envconfig:"REDIS_ADDR"`
	RedisPassword      string   `envconfig:"REDIS_PASSWORD"`
	RedisDB            *int     `envconfig:"REDIS_DB"`
	RabbitMQURL        string   `envconfig:"RABBITMQ_URL"`
	HistoryFile        string   `envconfig:"HISTORY_FILE"`
	LogLevel           string   `envconfig:"LOG_LEVEL"`
	LogFormat          string   `envconfig:"LOG_FORMAT"`
	AuditLogPath       string   `envconfig:"AUDIT_LOG_PATH"`
}

// Load 依次读取配置文件（可选）与环境变量，并补齐默认值。
func Load(path string) (*Config, error) {
	var cfg Config
	baseDir := "."

	if strings.TrimSpace(path) != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置失败: %w", err)
		}
		baseDir = filepath.Dir(path)
	}

	var overrides env
	if err := envconfig.Process("", &overrides); err != nil {
		return nil, fmt.Errorf("解析环境变量失败: %w", err)
	}
	cfg.applyEnv(overrides)
	cfg.applyDefaults(baseDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验已显式填写但取值非法的配置项。
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverSupabase, StoreDriverPostgres, StoreDriverMySQL:
	default:
		return fmt.Errorf("未知的存储驱动: %s", c.Store.Driver)
	}
	switch c.Notify.Driver {
	case "", NotifyDriverRedis, NotifyDriverRabbitMQ:
	default:
		return fmt.Errorf("未知的通知驱动: %s", c.Notify.Driver)
	}
	if c.Notify.Driver == NotifyDriverRedis && c.Notify.Redis.Address == "" {
		return errors.New("redis 通知驱动需要配置 REDIS_ADDR")
	}
	if c.Notify.Driver == NotifyDriverRabbitMQ && c.Notify.RabbitMQ.URL == "" {
		return errors.New("rabbitmq 通知驱动需要配置 RABBITMQ_URL")
	}
	return nil
}

func (c *Config) applyEnv(e env) {
	if e.Address != "" {
		c.Server.Address = e.Address
	} else if e.Port != "" {
		c.Server.Address = ":" + e.Port
	}
	if len(e.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = e.AllowedOrigins
	}
	setString(&c.LLM.APIKey, e.OpenAIAPIKey)
	setString(&c.LLM.BaseURL, e.OpenAIBaseURL)
	setString(&c.LLM.Model, e.OpenAIModel)
	setString(&c.TxService.BaseURL, e.MeshServiceURL)
	setString(&c.Pinning.Token, e.Web3StorageToken)
	setString(&c.Pinning.BaseURL, e.Web3StorageURL)
	setString(&c.Store.SupabaseURL, e.SupabaseURL)
	setString(&c.Store.SupabaseKey, e.SupabaseServiceKey)
	setString(&c.Store.Driver, strings.ToLower(strings.TrimSpace(e.StoreDriver)))
	setString(&c.Store.DSN, e.StoreDSN)
	setString(&c.Indexer.BaseURL, e.KoiosBase)
	setString(&c.Indexer.UTXOEndpoint, e.KoiosUTXOEndpoint)
	setString(&c.Indexer.UTXOFallback, e.KoiosUTXOFallback)
	setString(&c.Notify.Driver, strings.ToLower(strings.TrimSpace(e.NotifyDriver)))
	setString(&c.Notify.Queue, e.NotifyQueue)
	setString(&c.Notify.Redis.Address, e.RedisAddr)
	setString(&c.Notify.Redis.Password, e.RedisPassword)
	if e.RedisDB != nil {
		c.Notify.Redis.DB = *e.RedisDB
	}
	setString(&c.Notify.RabbitMQ.URL, e.RabbitMQURL)
	setString(&c.History.File, e.HistoryFile)
	setString(&c.Logging.Level, e.LogLevel)
	setString(&c.Logging.Format, e.LogFormat)
	setString(&c.Logging.AuditPath, e.AuditLogPath)
}

// applyDefaults 在用户未填写部分字段时设置与原有服务一致的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Server.Address == "" {
		c.Server.Address = ":8000"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"*"}
	}

	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 150
	}
	defaultSeconds(&c.LLM.TimeoutSeconds, 10)

	if c.TxService.BaseURL == "" {
		c.TxService.BaseURL = "http://localhost:3001"
	}
	defaultSeconds(&c.TxService.BuildTimeoutSeconds, 30)
	defaultSeconds(&c.TxService.SubmitTimeoutSeconds, 30)
	defaultSeconds(&c.TxService.LookupTimeoutSeconds, 10)

	if c.Pinning.BaseURL == "" {
		c.Pinning.BaseURL = "https://api.web3.storage"
	}
	defaultSeconds(&c.Pinning.TimeoutSeconds, 10)

	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverSupabase
	}
	if c.Store.Table == "" {
		c.Store.Table = "transactions"
	}
	defaultSeconds(&c.Store.TimeoutSeconds, 8)

	if c.Indexer.BaseURL == "" {
		c.Indexer.BaseURL = "https://api.koios.rest/api/v0"
	}
	if c.Indexer.InfoEndpoint == "" {
		c.Indexer.InfoEndpoint = "address_info"
	}
	if c.Indexer.UTXOEndpoint == "" {
		c.Indexer.UTXOEndpoint = "address_utxos"
	}
	if c.Indexer.UTXOFallback == "" {
		c.Indexer.UTXOFallback = "address_utxo_history"
	}
	defaultSeconds(&c.Indexer.TimeoutSeconds, 20)
	defaultSeconds(&c.Indexer.BatchTimeoutSeconds, 25)

	if c.Notify.Queue == "" {
		c.Notify.Queue = "chatpay.receipts"
	}

	if c.History.File == "" {
		c.History.File = "history_local.json"
	}
	if !filepath.IsAbs(c.History.File) && baseDir != "." {
		c.History.File = filepath.Join(baseDir, c.History.File)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func defaultSeconds(dst *int, fallback int) {
	if *dst <= 0 {
		*dst = fallback
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
