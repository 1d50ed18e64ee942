package util

import (
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig. read yaml config from ./data/config.yaml, env vars override file values.
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
