package internal

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SetupLogging 根据子命令与数据目录初始化日志输出。
// 日志同时写入 stderr 与 ~/.evidex/logs 下的文件。
func SetupLogging(subcommand string, dataDir string) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	logDir := filepath.Join(homeDir, ".evidex", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	hash := sha1.Sum([]byte(dataDir))
	suffix := hex.EncodeToString(hash[:])[:8]
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("evidex-%s-%s-%s.log", subcommand, timestamp, suffix)
	logPath := filepath.Join(logDir, filename)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	log.SetOutput(io.MultiWriter(os.Stderr, logFile))
	log.Printf("Log file: %s", logPath)
	return nil
}
