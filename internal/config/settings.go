package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are operator-editable values read from portal.yml. They are
// reloaded when the file changes while the process keeps running.
type Settings struct {
	Organization OrganizationSettings `mapstructure:"organization"`
	Minutes      MinutesSettings      `mapstructure:"minutes"`
}

type OrganizationSettings struct {
	Name    string `mapstructure:"name"`
	Website string `mapstructure:"website"`
}

type MinutesSettings struct {
	// Footer is printed under every exported minutes document.
	Footer string `mapstructure:"footer"`
}

var defaultSettingsPaths = []string{"/etc/hmc-portal", "."}

func DefaultSettings() Settings {
	return Settings{
		Organization: OrganizationSettings{Name: "Health Matters Clinic"},
	}
}

type SettingsHolder struct {
	current atomic.Value // holds Settings
}

func ProvideSettingsHolder(log *zap.Logger) (*SettingsHolder, error) {
	return LoadSettings(log, defaultSettingsPaths...)
}

// LoadSettings reads portal.yml from the first matching path. A missing file
// leaves the defaults in place.
func LoadSettings(log *zap.Logger, paths ...string) (*SettingsHolder, error) {
	log = log.Named("config.settings")

	v := viper.New()
	v.SetConfigName("portal")
	v.SetConfigType("yml")
	for _, path := range paths {
		v.AddConfigPath(path)
	}
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("organization.name", defaults.Organization.Name)
	v.SetDefault("organization.website", defaults.Organization.Website)
	v.SetDefault("minutes.footer", defaults.Minutes.Footer)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeSettings(v)
	if err != nil {
		return nil, err
	}

	holder := &SettingsHolder{}
	holder.current.Store(cfg)

	if found {
		v.OnConfigChange(func(e fsnotify.Event) {
			updated, err := decodeSettings(v)
			if err != nil {
				log.Warn("settings reload failed", zap.String("file", e.Name), zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("settings reloaded", zap.String("file", e.Name))
		})
		v.WatchConfig()
	}
	return holder, nil
}

func (h *SettingsHolder) Get() Settings {
	return h.current.Load().(Settings)
}

func decodeSettings(v *viper.Viper) (Settings, error) {
	var cfg Settings
	if err := v.Unmarshal(&cfg); err != nil {
		return Settings{}, err
	}
	cfg.Organization.Name = strings.TrimSpace(cfg.Organization.Name)
	if cfg.Organization.Name == "" {
		return Settings{}, errors.New("organization.name cannot be empty")
	}
	return cfg, nil
}
