package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	NodeID   string
	HTTPPort int
	Debug    bool
	LogLevel string

	DataDir      string
	WorkspaceDir string
	RulesPath    string

	ToolTimeout time.Duration
	DockerBuild bool
	NpmInstall  bool
	GitInit     bool
}

func Load() *Config {
	return &Config{
		NodeID:       getEnv("NODE_ID", "forge-default"),
		HTTPPort:     getEnvInt("HTTP_PORT", 8000),
		Debug:        getEnvBool("DEBUG", false),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		DataDir:      getEnv("DATA_DIR", "data"),
		WorkspaceDir: getEnv("WORKSPACE_DIR", "workspace"),
		RulesPath:    getEnv("RULES_PATH", ""),
		ToolTimeout:  time.Duration(getEnvInt("TOOL_TIMEOUT", 120)) * time.Second,
		DockerBuild:  getEnvBool("DOCKER_BUILD", false),
		NpmInstall:   getEnvBool("NPM_INSTALL", false),
		GitInit:      getEnvBool("GIT_INIT", true),
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return fallback
}
