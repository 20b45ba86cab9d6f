package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/airtrack/pkg/logger"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Store     StoreConfig     `mapstructure:"store"`
	Refresh   RefreshConfig   `mapstructure:"refresh"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type CatalogConfig struct {
	BaseURL           string  `mapstructure:"base_url"`
	APIKey            string  `mapstructure:"api_key"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"` // Pacing against the catalog API (0 = unlimited)
}

type StoreConfig struct {
	Path string `mapstructure:"path"` // sqlite database file
}

type RefreshConfig struct {
	MaxAgeHours int `mapstructure:"max_age_hours"` // Cached snapshot is stale after this
	Concurrency int `mapstructure:"concurrency"`   // Parallel catalog fetches per batch
}

type SchedulerConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"` // Force a full refresh at launch
}

// MaxAge returns the staleness cutoff as a duration, defaulting to 24h.
func (r RefreshConfig) MaxAge() time.Duration {
	if r.MaxAgeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(r.MaxAgeHours) * time.Hour
}

// FetchConcurrency returns the fan-out width, defaulting to 4.
func (r RefreshConfig) FetchConcurrency() int {
	if r.Concurrency <= 0 {
		return 4
	}
	return r.Concurrency
}

// ChangeCallback is called when config changes. Receives old and new config.
type ChangeCallback func(old, new *Config)

// Manager handles config loading and hot-reload.
type Manager struct {
	mu        sync.RWMutex
	cfg       *Config
	callbacks []ChangeCallback
}

func setDefaults() {
	viper.SetDefault("server.port", 8484)
	viper.SetDefault("catalog.base_url", "https://api.themoviedb.org/3")
	viper.SetDefault("catalog.requests_per_second", 4)
	viper.SetDefault("store.path", "data/airtrack.db")
	viper.SetDefault("refresh.max_age_hours", 24)
	viper.SetDefault("refresh.concurrency", 4)
	viper.SetDefault("scheduler.cron", "0 * * * *")
}

// NewManager creates a config manager with hot-reload support.
func NewManager(path string) (*Manager, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	// Environment variable override support
	viper.SetEnvPrefix("AIRTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	m := &Manager{cfg: &cfg}

	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Infof("Config file changed: %s", e.Name)
		m.reload()
	})
	viper.WatchConfig()

	return m, nil
}

// NewStatic wraps a fixed config in a Manager without file loading or
// watching. Used by tests and one-shot tooling.
func NewStatic(cfg *Config) *Manager {
	return &Manager{cfg: cfg}
}

// Get returns the current config (thread-safe).
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// OnChange registers a callback for config changes.
func (m *Manager) OnChange(cb ChangeCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// reload re-reads config and notifies subscribers.
func (m *Manager) reload() {
	var newCfg Config
	if err := viper.Unmarshal(&newCfg); err != nil {
		logger.Errorf("Failed to reload config: %v", err)
		return
	}

	m.mu.Lock()
	oldCfg := m.cfg
	m.cfg = &newCfg
	callbacks := m.callbacks
	m.mu.Unlock()

	logChanges(oldCfg, &newCfg, "")

	// Notify subscribers outside lock
	for _, cb := range callbacks {
		cb(oldCfg, &newCfg)
	}
}

// logChanges logs field-level differences between old and new config,
// masking secret-bearing fields.
func logChanges(old, cur any, prefix string) {
	oldVal := reflect.ValueOf(old)
	newVal := reflect.ValueOf(cur)

	if oldVal.Kind() == reflect.Ptr {
		oldVal = oldVal.Elem()
	}
	if newVal.Kind() == reflect.Ptr {
		newVal = newVal.Elem()
	}

	if oldVal.Kind() != reflect.Struct {
		return
	}

	t := oldVal.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		oldField := oldVal.Field(i)
		newField := newVal.Field(i)

		fieldName := field.Name
		if prefix != "" {
			fieldName = prefix + "." + fieldName
		}

		if oldField.Kind() == reflect.Struct {
			logChanges(oldField.Interface(), newField.Interface(), fieldName)
			continue
		}

		if !reflect.DeepEqual(oldField.Interface(), newField.Interface()) {
			if isSensitive(field.Name) {
				logger.Infof("  %s: *** → ***", fieldName)
				continue
			}
			logger.Infof("  %s: %v → %v", fieldName, oldField.Interface(), newField.Interface())
		}
	}
}

func isSensitive(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	return strings.Contains(lower, "key") || strings.Contains(lower, "secret") || strings.Contains(lower, "token")
}

// Validate checks the parts of the config that can't limp along on defaults.
func (c *Config) Validate() error {
	if c.Catalog.APIKey == "" {
		return fmt.Errorf("catalog.api_key is required")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	return nil
}
