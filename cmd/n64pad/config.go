package main

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gethiox/n64pad/internal/pkg/logger"
	"github.com/go-ini/ini"
	"go.uber.org/zap"
)

type N64Pad struct {
	PollRate         time.Duration
	DiscoveryRate    time.Duration
	LogViewRate      time.Duration
	LogBufferSize    int
	ControllerConfig string
	ProfileDir       string
}

type Device struct {
	Grab bool
	Name string
}

type AppConfig struct {
	N64Pad N64Pad
	Device Device
}

//go:embed n64pad-config/n64pad.config
var templateConfig []byte

func rate(sec *ini.Section, name string) (time.Duration, error) {
	key, err := sec.GetKey(name)
	if err != nil {
		return 0, err
	}
	i, err := key.Int()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if i <= 0 {
		return 0, fmt.Errorf("%s: rate has to be positive, got %d", name, i)
	}
	return time.Second / time.Duration(i), nil
}

// ParseAppConfig reads the application config, relative paths stay relative to the working directory.
func ParseAppConfig(data []byte) (AppConfig, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return AppConfig{}, fmt.Errorf("cannot parse config: %w", err)
	}

	var c AppConfig

	// [n64pad]
	n64pad, err := cfg.GetSection("n64pad")
	if err != nil {
		return AppConfig{}, err
	}
	c.N64Pad.PollRate, err = rate(n64pad, "poll_rate")
	if err != nil {
		return AppConfig{}, err
	}
	c.N64Pad.DiscoveryRate, err = rate(n64pad, "discovery_rate")
	if err != nil {
		return AppConfig{}, err
	}
	c.N64Pad.LogViewRate, err = rate(n64pad, "log_view_rate")
	if err != nil {
		return AppConfig{}, err
	}
	c.N64Pad.LogBufferSize = n64pad.Key("log_buffer_size").MustInt(500)
	if c.N64Pad.LogBufferSize < 1 {
		c.N64Pad.LogBufferSize = 1
	}

	controllerConfig, err := n64pad.GetKey("controller_config")
	if err != nil {
		return AppConfig{}, err
	}
	c.N64Pad.ControllerConfig = controllerConfig.String()
	c.N64Pad.ProfileDir = n64pad.Key("profile_dir").String()

	// [device]
	device, err := cfg.GetSection("device")
	if err != nil {
		return AppConfig{}, err
	}
	grab, err := device.Key("grab").Bool()
	if err != nil {
		return AppConfig{}, fmt.Errorf("grab: %w", err)
	}
	c.Device.Grab = grab
	c.Device.Name = device.Key("name").String()

	return c, nil
}

func LoadAppConfig(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("cannot read config: %w", err)
	}
	return ParseAppConfig(data)
}

// createConfigIfNeeded writes the default application config when path does not exist yet.
func createConfigIfNeeded(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot open config file: %w", err)
	}

	log.Info("config not exist, generating...", zap.String("path", path), logger.Info)
	err = os.MkdirAll(filepath.Dir(path), 0o777)
	if err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	err = os.WriteFile(path, templateConfig, 0o666)
	if err != nil {
		return fmt.Errorf("cannot write data into \"%s\" file: %w", path, err)
	}
	log.Info(fmt.Sprintf("Created \"%s\" file", path), logger.Debug)
	return nil
}
