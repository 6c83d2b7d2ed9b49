package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/vlansync/vlansync/pkg/util"
)

// LoadEnv builds a Config from environment variables, the legacy mode
// kept for deployments predating the YAML file. envFile, when non-empty,
// is loaded first via godotenv without overriding the real environment.
//
// Variables: FG_DEVICES_FILE (JSON device list), NETBOX_URL,
// NETBOX_API_TOKEN or NETBOX_API_TOKEN_FILE, NETBOX_TIMEOUT,
// SYNC_DATA_DIR, CACHE_DIR, USE_CACHED_DATA, LOG_LEVEL, TEST_SWITCH.
// VLAN translations are YAML-only.
func LoadEnv(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		Netbox: NetBoxConfig{
			URL:          os.Getenv("NETBOX_URL"),
			APIToken:     os.Getenv("NETBOX_API_TOKEN"),
			APITokenFile: os.Getenv("NETBOX_API_TOKEN_FILE"),
		},
		Runtime: RuntimeConfig{
			LogLevel:   os.Getenv("LOG_LEVEL"),
			TestSwitch: os.Getenv("TEST_SWITCH"),
			DataDir:    os.Getenv("SYNC_DATA_DIR"),
			CacheDir:   os.Getenv("CACHE_DIR"),
		},
	}

	if raw := os.Getenv("NETBOX_TIMEOUT"); raw != "" {
		timeout, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: NETBOX_TIMEOUT must be an integer (seconds)", util.ErrInvalidConfig)
		}
		cfg.Netbox.Timeout = timeout
	}

	if raw := os.Getenv("USE_CACHED_DATA"); raw != "" {
		b, err := parseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid USE_CACHED_DATA=%q", util.ErrInvalidConfig, raw)
		}
		cfg.Runtime.UseCachedData = b
	}

	devicesFile := os.Getenv("FG_DEVICES_FILE")
	if devicesFile == "" {
		devicesFile = "fortigate_devices.json"
	}
	devices, err := loadDevicesFile(devicesFile)
	if err != nil {
		return nil, err
	}
	cfg.Fortigates = devices

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDevicesFile reads the legacy JSON FortiGate inventory. Entries use
// the YAML field names plus "token_file" as an alias for api_token_file.
func loadDevicesFile(path string) ([]FortiGateDevice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fortigate devices file %s: %w", path, err)
	}

	var raw []struct {
		Name      string `json:"name"`
		Host      string `json:"host"`
		APIToken  string `json:"api_token"`
		TokenFile string `json:"token_file"`
		VerifySSL *bool  `json:"verify_ssl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fortigate devices file %s: %w", path, err)
	}

	devices := make([]FortiGateDevice, 0, len(raw))
	for _, d := range raw {
		devices = append(devices, FortiGateDevice{
			Name:         d.Name,
			Host:         d.Host,
			APIToken:     d.APIToken,
			APITokenFile: d.TokenFile,
			VerifySSL:    d.VerifySSL,
		})
	}
	return devices, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", raw)
}
