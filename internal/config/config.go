// Package config resolves the backend's runtime configuration: environment
// variables with defaults, and the indexer's own settings.yaml, which this
// service treats as an opaque passthrough document. The settings file is
// parsed only when LoadSettings is called; it is not re-read automatically on
// an artifact reload.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/localgraph/backend/internal/util"
)

// Settings holds the subset of the indexer's settings.yaml this service
// needs to know about; everything else in the document is preserved in Raw
// so it can be round-tripped without this service needing to model fields
// it never reads.
type Settings struct {
	Models struct {
		ChatModel string `yaml:"chat_model"`
	} `yaml:"models"`

	Raw map[string]any `yaml:"-"`
}

// Config is the fully resolved process configuration.
type Config struct {
	Port       string
	CORSOrigin string

	SettingsPath string
	DataDir      string
	InputDir     string

	IndexerExecutable string
	BackendRoot       string

	AIAdapter             string
	AIChatModel           string
	AIChatURL             string
	AIChatKey             string
	AIMaxConcurrentReqs   int64
	SearchDeadlineSeconds int
}

// Load resolves configuration from the environment, applying the defaults
// named in the subprocess/env var contract.
func Load() Config {
	return Config{
		Port:       util.GetEnvString("PORT", "8000"),
		CORSOrigin: util.GetEnvString("CORS_ORIGIN", "http://localhost:5173"),

		SettingsPath: util.GetEnvString("GRAPHRAG_SETTINGS_PATH", "./settings.yaml"),
		DataDir:      util.GetEnvString("GRAPHRAG_DATA_DIR", "./output"),
		InputDir:     util.GetEnvString("GRAPHRAG_INPUT_DIR", "./input"),

		IndexerExecutable: util.GetEnvString("GRAPHRAG_INDEXER_EXECUTABLE", "graphrag-index"),
		BackendRoot:       util.GetEnvString("GRAPHRAG_BACKEND_ROOT", "."),

		AIAdapter:             util.GetEnvString("AI_ADAPTER", "openai"),
		AIChatModel:           util.GetEnvString("AI_CHAT_MODEL", "gpt-4o-mini"),
		AIChatURL:             util.GetEnv("AI_CHAT_URL"),
		AIChatKey:             util.GetEnv("AI_CHAT_KEY"),
		AIMaxConcurrentReqs:   int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
		SearchDeadlineSeconds: int(util.GetEnvNumeric("SEARCH_DEADLINE_SECONDS", 300)),
	}
}

// LoadSettings reads and parses the settings YAML at path. A missing file is
// not an error: the indexer may not have been configured yet, and this
// service only consumes it for display/passthrough purposes.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, err
	}
	if err := yaml.Unmarshal(data, &s.Raw); err != nil {
		return Settings{}, err
	}
	return s, nil
}
