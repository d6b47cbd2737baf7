package mealcraft

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// AgentConfig selects and configures the agent backend.
type AgentConfig struct {
	Backend         string        `env:"AGENT_BACKEND,default=http"`
	Endpoint        string        `env:"AGENT_ENDPOINT,default=http://localhost:8787/v1/agent/chat"`
	APIKey          string        `env:"AGENT_API_KEY"`
	ManagerAgentID  string        `env:"AGENT_MANAGER_ID,default=6988bf3a6f6e7c67fe7e8b53"`
	Timeout         time.Duration `env:"AGENT_TIMEOUT,default=180s"`
	MockShape       string        `env:"AGENT_MOCK_SHAPE,default=fenced"`
	MockPayloadPath string        `env:"AGENT_MOCK_PAYLOAD_PATH"`
	MockS3Bucket    string        `env:"AGENT_MOCK_S3_BUCKET"`
	MockS3Key       string        `env:"AGENT_MOCK_S3_KEY"`
	Instrumented    bool          `env:"AGENT_INSTRUMENTED,default=false"`
}

// ModelConfig holds the settings of the LLM-backed agents (bedrock, gemini, ollama).
type ModelConfig struct {
	ModelID      string  `env:"MODEL_ID"`
	MaxTokens    int32   `env:"MAX_TOKENS,default=8192"`
	Temperature  float32 `env:"TEMPERATURE,default=0.4"`
	TopP         float32 `env:"TOP_P,default=0.9"`
	GeminiAPIKey string  `env:"GEMINI_API_KEY"`
	// OllamaEndpoint is the base URL of a local Ollama server.
	OllamaEndpoint string `env:"OLLAMA_ENDPOINT,default=http://localhost:11434"`
}

type UIConfig struct {
	LoadingInterval  time.Duration `env:"LOADING_MESSAGE_INTERVAL,default=3500ms"`
	CopiedResetDelay time.Duration `env:"COPIED_RESET_DELAY,default=2s"`
}

// ExportConfig selects where a copied shopping list ends up.
type ExportConfig struct {
	Sink             string `env:"SHOPPING_LIST_SINK,default=stdout"`
	FilePath         string `env:"SHOPPING_LIST_FILE,default=shopping-list.txt"`
	S3Bucket         string `env:"SHOPPING_LIST_S3_BUCKET"`
	S3Key            string `env:"SHOPPING_LIST_S3_KEY,default=shopping-list.txt"`
	SlackWebhookURL  string `env:"SLACK_WEBHOOK_URL"`
	SlackChannel     string `env:"SLACK_CHANNEL,default=#groceries"`
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

// ServerConfig configures the HTTP API. Origins are separated by semicolons.
type ServerConfig struct {
	Addr           string   `env:"SERVER_ADDR,default=:8080"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=*"`
}

type LogConfig struct {
	// Generations is one of none, stdout or file.
	Generations string `env:"GENERATION_LOG,default=none"`
	Dir         string `env:"GENERATION_LOG_DIR,default=./logs"`
}

// Config groups every configuration section read from the environment.
type Config struct {
	Agent  AgentConfig
	Model  ModelConfig
	UI     UIConfig
	Export ExportConfig
	Server ServerConfig
	Log    LogConfig
}

// LoadConfig decodes all configuration sections from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
