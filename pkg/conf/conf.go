package conf

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/fsnotify/fsnotify"
	"github.com/go-orgsync/orgsync/pkg/log"
	"github.com/spf13/viper"
)

// LoadConfigFile reads a TOML configuration file into cfg and re-reads it
// when the file changes on disk. cfg must be a non-nil pointer.
func LoadConfigFile(confFile string, cfg interface{}) error {
	cfgValue := reflect.ValueOf(cfg)
	if cfgValue.Kind() != reflect.Ptr || cfgValue.IsNil() {
		return errors.New("cfg must be a non-nil pointer")
	}

	vCfg := viper.New()
	vCfg.SetConfigFile(confFile)
	vCfg.SetConfigType("toml")
	vCfg.AutomaticEnv()

	if err := vCfg.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	vCfg.WatchConfig()
	vCfg.OnConfigChange(func(e fsnotify.Event) {
		log.Infof("configuration changed, re-reading: %s", e.Name)
		if err := vCfg.Unmarshal(cfg); err != nil {
			log.Errorf("failed to unmarshal configuration file: %v", err)
		}
	})

	if err := vCfg.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file: %w", err)
	}

	return nil
}
