package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	apiURLEnvVar       = "TASKS_API_URL"
	legacyAPIURLEnvVar = "VITE_API_URL"
	appNameVar         = "APP_NAME"
	folderEnvVar       = "FOLDER"
	envVar             = "ENV"
)

type EnvVars struct {
	apiBaseURL string
	appName    string
	dataFolder string
	env        string
}

var _ EnvConfig = EnvVars{}

func newEnvVars() EnvVars {
	baseURL := GetEnv(apiURLEnvVar, GetEnv(legacyAPIURLEnvVar, "http://localhost:8080"))
	return EnvVars{
		apiBaseURL: strings.TrimRight(baseURL, "/"),
		appName:    GetEnv(appNameVar, "Tasks"),
		dataFolder: expandHome(GetEnv(folderEnvVar, "~/.tasks")),
		env:        GetEnv(envVar, "DEV"),
	}
}

// GetAPIBaseURL returns the task API root without a trailing slash (e.g. "https://api.example.com").
func (e EnvVars) GetAPIBaseURL() string {
	return e.apiBaseURL
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

// GetDataFolder is where durable client state (the refresh token) is kept.
func (e EnvVars) GetDataFolder() string {
	return e.dataFolder
}

func (e EnvVars) GetEnv() string {
	return e.env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvFiles loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		file = expandHome(file)
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return err
		}
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
