package internal

import (
	"fmt"
	"os"

	"github.com/evidex/evidex/internal/config"
)

// LoadConfig 从指定路径读取并解析 YAML 配置文件。
// 返回填充后的 *config.Config 或解析错误。
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// PrintConfigExample 向 stderr 打印一份完整的 YAML 配置示例。
// 供用户快速创建自定义配置文件。
func PrintConfigExample() {
	homeDir, _ := os.UserHomeDir()
	configPath := fmt.Sprintf("%s/.evidex/config/evidex.yaml", homeDir)

	fmt.Fprintf(os.Stderr, `Create a configuration file at %s:

# Embedding service configuration
embedding:
  # Provider: "ollama" | "openai"
  provider: ollama
  endpoint: http://localhost:11434
  model: nomic-embed-text
  dimensions: 768
  batch_size: 10

# Answer generation configuration
generation:
  provider: ollama
  endpoint: http://localhost:11434
  model: llama3.2

# Session data is stored under ~/.evidex/data by default
# storage:
#   data_dir: ~/cases/phone-a

# For OpenAI providers, use:
# embedding:
#   provider: openai
#   api_key: your-openai-api-key
#   model: text-embedding-3-small
#   dimensions: 1536

Usage:
  1. Create the config file
  2. Ingest a report: evidex ingest report.zip
  3. Ask: evidex ask "your question"
`, configPath)
}
