package main

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"

	"gbcore/emu/log"
)

type Config struct {
	General GeneralConfig `toml:"general"`
	Trace   TraceConfig   `toml:"trace"`
}

type GeneralConfig struct {
	Model     string `toml:"model"`      // dmg, cgb or auto
	Log       string `toml:"log"`        // comma-separated log modules
	MaxFrames int    `toml:"max_frames"` // 0: no limit
	Serial    bool   `toml:"serial"`     // echo serial output to stdout
}

type TraceConfig struct {
	Format string `toml:"format"` // text, doctor or json
}

func defaultConfig() Config {
	return Config{
		General: GeneralConfig{Model: "auto"},
		Trace:   TraceConfig{Format: "text"},
	}
}

const cfgFilename = "config.toml"

// configPath returns the path of the configuration file in the gbcore user
// config directory.
func configPath() string {
	return filepath.Join(configdir.LocalConfig("gbcore"), cfgFilename)
}

// LoadConfigOrDefault loads the configuration file at path, or from the
// gbcore config directory if path is empty. The default configuration is
// returned if the file doesn't exist.
func LoadConfigOrDefault(path string) (Config, error) {
	if path == "" {
		path = configPath()
	}

	cfg := defaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return defaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	for _, key := range md.Undecoded() {
		log.ModEmu.Warnf("%s: unknown configuration key %s", path, key)
	}
	return cfg, nil
}
