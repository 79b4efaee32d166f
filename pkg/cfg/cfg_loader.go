package cfg

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/hatcher/taskpilot/pkg/logs"
)

// Config is the client SDK configuration.
type Config struct {
	// BaseURL is the backend API root, e.g. http://localhost:8000.
	BaseURL string `json:"baseUrl" yaml:"base-url" mapstructure:"base-url"`
	// TimeoutSeconds is the per-request timeout. The default is generous
	// because some backend operations call a slow upstream AI service.
	TimeoutSeconds int `json:"timeoutSeconds" yaml:"timeout-seconds" mapstructure:"timeout-seconds"`
	// TokenFile overrides the default token store location.
	TokenFile string `json:"tokenFile" yaml:"token-file" mapstructure:"token-file"`
	// ReminderIntervalSeconds is the due-reminder polling interval.
	ReminderIntervalSeconds int            `json:"reminderIntervalSeconds" yaml:"reminder-interval-seconds" mapstructure:"reminder-interval-seconds"`
	Log                     logs.LogConfig `json:"log" yaml:"log" mapstructure:"log"`
}

func (c *Config) Prepare() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 60
	}
	if c.ReminderIntervalSeconds <= 0 {
		c.ReminderIntervalSeconds = 60
	}
}

// LoadConfig reads and unmarshals a config file into ptr.
func LoadConfig(configDir, configFile, configSuffix string, ptr interface{}) error {
	viper.SetConfigName(configFile)
	viper.AddConfigPath(configDir)
	viper.SetConfigType(configSuffix)
	err := viper.ReadInConfig()
	if err != nil {
		return errors.WithMessagef(err, "failed to read config file %s in %s (type %s)", configFile, configDir, configSuffix)
	}
	err = viper.Unmarshal(ptr)
	if err != nil {
		return errors.WithMessagef(err, "failed to unmarshal config file %s in %s (type %s)", configFile, configDir, configSuffix)
	}
	return nil
}
