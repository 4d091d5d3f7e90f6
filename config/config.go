// Package config loads application configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration for the assistant and gateway processes.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Assistant AssistantConfig `mapstructure:"assistant"`
	Model     ModelConfig     `mapstructure:"model"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Server    ServerConfig    `mapstructure:"server"`
	Bank      BankConfig      `mapstructure:"bank"`
	RAG       RAGConfig       `mapstructure:"rag"`
}

// AssistantConfig stores the conversational routing settings: the default
// user, the account name mappings, and the phrase lists the intent detector
// matches against.
type AssistantConfig struct {
	DefaultUserID   string            `mapstructure:"default_user_id"`
	AccountMappings map[string]string `mapstructure:"account_mappings"`
	BankingDomains  []string          `mapstructure:"banking_domains"`
	Greetings       []string          `mapstructure:"greetings"`
	Farewells       []string          `mapstructure:"farewells"`
	ExitCommands    []string          `mapstructure:"exit_commands"`
	ClearCommands   []string          `mapstructure:"clear_commands"`
	TaskKeywords    []string          `mapstructure:"task_keywords"`
}

// ModelConfig stores Claude model settings.
type ModelConfig struct {
	Name        string  `mapstructure:"name"`
	MaxTokens   int64   `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// GatewayConfig stores the tool gateway endpoint.
type GatewayConfig struct {
	Addr string `mapstructure:"addr"`
}

// ServerConfig stores the web surface settings.
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes"`
	TurnTimeoutSecs int    `mapstructure:"turn_timeout_seconds"`
}

// BankConfig stores the account database settings.
type BankConfig struct {
	DBFile string `mapstructure:"db_file"`
}

// RAGConfig stores the knowledge base settings.
type RAGConfig struct {
	DocsDir         string `mapstructure:"docs_dir"`
	TopK            int    `mapstructure:"top_k"`
	ChunkSize       int    `mapstructure:"chunk_size"`
	ChunkOverlap    int    `mapstructure:"chunk_overlap"`
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds"`
}

// Load reads configuration from the given file, or from ./config.yaml and
// environment variables when path is empty.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/bankassist")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BANKASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// The defaults are a complete configuration; a missing file is fine.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("assistant.default_user_id", "test1")
	v.SetDefault("assistant.account_mappings", map[string]string{
		"checking":    "1234567890",
		"chequing":    "1234567890",
		"cheque":      "1234567890",
		"saving":      "2345678901",
		"savings":     "2345678901",
		"credit":      "3456789012",
		"credit card": "3456789012",
	})
	v.SetDefault("assistant.banking_domains", []string{
		"account", "balance", "transfer", "payment", "deposit", "withdraw",
		"credit", "debit", "mortgage", "loan", "interest", "fee", "card",
		"statement", "transaction", "banking", "rbc", "royal bank", "invest",
		"saving", "checking", "chequing", "tfsa", "rrsp", "resp", "insurance",
		"online banking", "mobile banking",
	})
	v.SetDefault("assistant.greetings", []string{
		"hi", "hello", "hey", "greetings", "good morning", "good afternoon",
		"good evening", "yo", "sup", "howdy", "hi there", "hello there",
	})
	v.SetDefault("assistant.farewells", []string{
		"bye", "goodbye", "see you", "farewell", "exit", "quit", "q", "end",
	})
	v.SetDefault("assistant.exit_commands", []string{"exit", "quit", "q", "bye", "goodbye"})
	v.SetDefault("assistant.clear_commands", []string{"clear", "clear history", "start over", "reset"})
	v.SetDefault("assistant.task_keywords", []string{"transfer", "balance", "history", "accounts"})

	v.SetDefault("model.name", "claude-sonnet-4-20250514")
	v.SetDefault("model.max_tokens", 4096)
	v.SetDefault("model.temperature", 0.1)

	v.SetDefault("gateway.addr", "127.0.0.1:8050")

	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.jwt_secret", "change-me")
	v.SetDefault("server.token_ttl_minutes", 15)
	v.SetDefault("server.turn_timeout_seconds", 30)

	v.SetDefault("bank.db_file", "bank.db")

	v.SetDefault("rag.docs_dir", "./rbc_documents")
	v.SetDefault("rag.top_k", 5)
	v.SetDefault("rag.chunk_size", 1000)
	v.SetDefault("rag.chunk_overlap", 200)
	v.SetDefault("rag.cache_ttl_seconds", 600)
}
