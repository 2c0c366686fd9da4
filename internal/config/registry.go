package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/muurk/im920/internal/serial"
)

const (
	appName    = "im920"
	configFile = "config.yaml"

	// registryVersion is the only file layout this package reads and writes
	registryVersion = 1
)

// ConfigEnvVar names a config file that replaces the per-user default.
// Useful when several benches share one host.
const ConfigEnvVar = "IM920_CONFIG"

var (
	// Registry shared by the CLI commands of one process
	globalRegistry     *Registry
	globalRegistryOnce sync.Once
	globalRegistryErr  error

	// Serializes writes so two sessions closing together cannot interleave
	fileMutex sync.Mutex
)

// GetConfigDir returns the per-user directory holding the profile registry.
//   - Windows: %LOCALAPPDATA%\im920
//   - elsewhere: $XDG_CONFIG_HOME/im920, falling back to $HOME/.config/im920
func GetConfigDir() (string, error) {
	if runtime.GOOS == "windows" {
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appName), nil
	}

	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName), nil
}

// GetConfigPath returns the registry file path. IM920_CONFIG wins over the
// per-user directory.
func GetConfigPath() (string, error) {
	if path := os.Getenv(ConfigEnvVar); path != "" {
		return path, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFile), nil
}

// LoadRegistry returns the registry of the current user, reading it on the
// first call only.
func LoadRegistry() (*Registry, error) {
	globalRegistryOnce.Do(func() {
		var configPath string
		configPath, globalRegistryErr = GetConfigPath()
		if globalRegistryErr != nil {
			globalRegistryErr = fmt.Errorf("failed to get config path: %w", globalRegistryErr)
			return
		}
		globalRegistry, globalRegistryErr = LoadRegistryFrom(configPath)
	})
	return globalRegistry, globalRegistryErr
}

// LoadRegistryFrom reads a registry file. A missing or empty file yields an
// empty registry. Unknown keys and profiles that could never open a port
// are rejected, naming the offending profile.
func LoadRegistryFrom(configPath string) (*Registry, error) {
	f, err := os.Open(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return NewRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var registry Registry
	if err := dec.Decode(&registry); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if registry.Version != registryVersion {
		return nil, fmt.Errorf("unsupported config version: %d (expected %d)", registry.Version, registryVersion)
	}

	if registry.Profiles == nil {
		registry.Profiles = make(map[string]*Profile)
	}
	if registry.Preferences == nil {
		registry.Preferences = defaultPreferences()
	}

	if err := registry.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return &registry, nil
}

func (r *Registry) validate() error {
	if d := r.Preferences.DefaultDriver; d != "" && d != serial.DriverBugst && d != serial.DriverTarm {
		return fmt.Errorf("preferences: unknown serial driver %q", d)
	}
	for _, name := range r.ProfileNames() {
		profile := r.Profiles[name]
		if profile == nil {
			return fmt.Errorf("profile %q is empty", name)
		}
		if err := profile.SerialConfig(r.Preferences).Validate(); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	if p := r.Preferences.DefaultProfile; p != "" && r.Profiles[p] == nil {
		return fmt.Errorf("default profile %q does not exist", p)
	}
	return nil
}

// Save writes the registry to GetConfigPath.
func (r *Registry) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return r.SaveTo(configPath)
}

// SaveTo writes the registry to configPath through a temporary file and
// rename, creating the directory with user-only permissions.
func (r *Registry) SaveTo(configPath string) error {
	fileMutex.Lock()
	defer fileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# IM920 Configuration File
# Serial profiles for IM920s radio modules and the values last read from them.
#
# Location: ` + configPath + `

`)
	data = append(header, data...)

	tmpPath := configPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary config file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}
