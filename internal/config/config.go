package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
	units "github.com/docker/go-units"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server  ServerConfig
	AI      AIConfig
	Catalog CatalogConfig
	Orders  OrdersConfig
	Speech  SpeechConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	catalog, err := loadCatalogConfig()
	if err != nil {
		return nil, err
	}

	orders, err := loadOrdersConfig()
	if err != nil {
		return nil, err
	}

	speech, err := loadSpeechConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, AI: ai, Catalog: catalog, Orders: orders, Speech: speech}, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// loadServerConfig 解析服务器监听地址。
func loadServerConfig() (ServerConfig, error) {
	origins := splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"))

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return ServerConfig{Addr: port, AllowedOrigins: origins}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, AllowedOrigins: origins}, nil
}

const (
	ProviderGemini = "gemini"
	ProviderArk    = "ark"
)

// AIConfig 描述大模型相关配置。Gemini 为默认后端，Ark 作为备用后端。
type AIConfig struct {
	Provider string

	APIKey             string
	ChatModel          string
	TranscriptionModel string
	Temperature        *float64
	MaxTokens          *int
	MapsGrounding      bool
	MaxTurns           int
	RetryAttempts      int
	RetryBaseDelay     time.Duration

	ArkAPIKey    string
	ArkAccessKey string
	ArkSecretKey string
	ArkModel     string
	ArkBaseURL   string
	ArkRegion    string
	ArkTopP      *float64
}

// Enabled 表示当前后端是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	switch c.Provider {
	case ProviderArk:
		return c.ArkModel != "" && (c.ArkAPIKey != "" || (c.ArkAccessKey != "" && c.ArkSecretKey != ""))
	default:
		return c.APIKey != ""
	}
}

// NewChatModel 使用 Ark 配置创建一个模型实例。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if c.ArkModel == "" || (c.ArkAPIKey == "" && (c.ArkAccessKey == "" || c.ArkSecretKey == "")) {
		return nil, fmt.Errorf("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + ARK_MODEL 或 AK/SK 组合")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	var topP *float32
	if c.ArkTopP != nil {
		val := float32(*c.ArkTopP)
		topP = &val
	}

	var maxTokens *int
	if c.MaxTokens != nil {
		val := *c.MaxTokens
		maxTokens = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.ArkBaseURL,
		Region:      c.ArkRegion,
		APIKey:      c.ArkAPIKey,
		AccessKey:   c.ArkAccessKey,
		SecretKey:   c.ArkSecretKey,
		Model:       c.ArkModel,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		TopP:        topP,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderGemini))
	if provider != ProviderGemini && provider != ProviderArk {
		return AIConfig{}, fmt.Errorf("invalid AI_PROVIDER value %q", provider)
	}

	temperature, err := parseOptionalFloatEnv("AI_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("AI_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	maps, err := parseBoolEnv("AI_MAPS_GROUNDING", true)
	if err != nil {
		return AIConfig{}, err
	}

	maxTurns := 5
	if override, err := parseOptionalIntEnv("AI_MAX_TURNS"); err != nil {
		return AIConfig{}, err
	} else if override != nil {
		if *override < 1 {
			maxTurns = 1
		} else {
			maxTurns = *override
		}
	}

	attempts := 3
	if override, err := parseOptionalIntEnv("AI_RETRY_ATTEMPTS"); err != nil {
		return AIConfig{}, err
	} else if override != nil && *override > 0 {
		attempts = *override
	}

	baseDelay, err := parseDurationEnv("AI_RETRY_BASE_DELAY", 2*time.Second)
	if err != nil {
		return AIConfig{}, err
	}

	topP, err := parseOptionalFloatEnv("ARK_TOP_P")
	if err != nil {
		return AIConfig{}, err
	}

	apiKey := strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}

	arkModel := strings.TrimSpace(os.Getenv("ARK_MODEL"))
	if arkModel == "" {
		arkModel = strings.TrimSpace(os.Getenv("Model"))
	}

	return AIConfig{
		Provider:           provider,
		APIKey:             apiKey,
		ChatModel:          getEnvOrDefault("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		TranscriptionModel: getEnvOrDefault("GEMINI_TRANSCRIPTION_MODEL", "gemini-3-flash-preview"),
		Temperature:        temperature,
		MaxTokens:          maxTokens,
		MapsGrounding:      maps,
		MaxTurns:           maxTurns,
		RetryAttempts:      attempts,
		RetryBaseDelay:     baseDelay,
		ArkAPIKey:          strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		ArkAccessKey:       strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		ArkSecretKey:       strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		ArkModel:           arkModel,
		ArkBaseURL:         getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		ArkRegion:          getEnvOrDefault("ARK_REGION", "cn-beijing"),
		ArkTopP:            topP,
	}, nil
}

// CatalogConfig 描述菜单文件的位置与热加载开关。
type CatalogConfig struct {
	Path  string
	Watch bool
}

func loadCatalogConfig() (CatalogConfig, error) {
	watch, err := parseBoolEnv("MENU_WATCH", true)
	if err != nil {
		return CatalogConfig{}, err
	}
	return CatalogConfig{
		Path:  strings.TrimSpace(os.Getenv("MENU_PATH")),
		Watch: watch,
	}, nil
}

// OrdersConfig 描述订单存储后端。优先 Redis，其次 SQLite，都未配置时使用模拟存储。
type OrdersConfig struct {
	RedisURL       string
	RedisPrefix    string
	SQLitePath     string
	SimulatedDelay time.Duration
}

func loadOrdersConfig() (OrdersConfig, error) {
	delay, err := parseDurationEnv("ORDER_SIMULATED_DELAY", 500*time.Millisecond)
	if err != nil {
		return OrdersConfig{}, err
	}
	return OrdersConfig{
		RedisURL:       strings.TrimSpace(os.Getenv("REDIS_URL")),
		RedisPrefix:    getEnvOrDefault("ORDER_REDIS_PREFIX", "jockey:orders"),
		SQLitePath:     strings.TrimSpace(os.Getenv("ORDER_DB_PATH")),
		SimulatedDelay: delay,
	}, nil
}

// SpeechConfig 描述语音转写相关配置
type SpeechConfig struct {
	MaxUploadBytes int64
	Timeout        int
}

func loadSpeechConfig() (SpeechConfig, error) {
	// 解析超时设置
	timeout, err := parseOptionalIntEnv("SPEECH_TIMEOUT")
	if err != nil {
		return SpeechConfig{}, err
	}
	timeoutSeconds := 30 // 默认30秒
	if timeout != nil {
		timeoutSeconds = *timeout
	}

	rawLimit := getEnvOrDefault("SPEECH_MAX_UPLOAD", "10MB")
	limit, err := units.RAMInBytes(rawLimit)
	if err != nil {
		return SpeechConfig{}, fmt.Errorf("invalid SPEECH_MAX_UPLOAD value %q: %w", rawLimit, err)
	}
	if limit <= 0 {
		return SpeechConfig{}, fmt.Errorf("invalid SPEECH_MAX_UPLOAD value %q: must be positive", rawLimit)
	}

	return SpeechConfig{
		MaxUploadBytes: limit,
		Timeout:        timeoutSeconds,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(part); value != "" {
			values = append(values, value)
		}
	}
	return values
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}
