package config

import (
	"sort"
	"time"

	"github.com/muurk/im920/internal/serial"
)

// Registry represents the entire user configuration file.
// It stores named serial profiles for IM920s modules and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile describes how to reach one module and what was last read from it.
type Profile struct {
	Port             string        `yaml:"port" json:"port"`                                               // Serial device path (e.g., "/dev/ttyUSB0")
	Baud             int           `yaml:"baud,omitempty" json:"baud,omitempty"`                           // Zero means Preferences.DefaultBaud
	Driver           string        `yaml:"driver,omitempty" json:"driver,omitempty"`                       // "bugst" or "tarm"; empty means Preferences.DefaultDriver
	ReadTimeout      time.Duration `yaml:"read_timeout,omitempty" json:"read_timeout,omitempty"`           // Per-line read timeout (e.g., "1s")
	HandshakeTimeout time.Duration `yaml:"handshake_timeout,omitempty" json:"handshake_timeout,omitempty"` // Slave registration wait (e.g., "60s")
	Nickname         string        `yaml:"nickname,omitempty" json:"nickname,omitempty"`                   // User-friendly name

	LastIdentity string    `yaml:"last_identity,omitempty" json:"last_identity,omitempty"` // Last RDID reply
	LastNode     string    `yaml:"last_node,omitempty" json:"last_node,omitempty"`         // Last known node number
	LastGroup    string    `yaml:"last_group,omitempty" json:"last_group,omitempty"`       // Last known group number
	LastSeen     time.Time `yaml:"last_seen,omitempty" json:"last_seen"`                   // Last successful session
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	DefaultBaud    int    `yaml:"default_baud"`              // Baud used when a profile leaves it unset
	DefaultDriver  string `yaml:"default_driver"`            // Serial driver used when a profile leaves it unset
	DefaultProfile string `yaml:"default_profile,omitempty"` // Profile used when --port and --profile are absent
}

func defaultPreferences() *Preferences {
	return &Preferences{
		DefaultBaud:   serial.DefaultBaud,
		DefaultDriver: serial.DriverBugst,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Profiles:    make(map[string]*Profile),
		Preferences: defaultPreferences(),
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// EnsureProfile ensures a profile entry exists in the registry.
// Returns the profile entry (existing or newly created).
func (r *Registry) EnsureProfile(name string) *Profile {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}

	if profile, exists := r.Profiles[name]; exists {
		return profile
	}

	profile := &Profile{}
	r.Profiles[name] = profile
	return profile
}

// SetProfilePort sets the connection parameters of a profile.
// Zero baud and empty driver fall back to the preferences when the port is opened.
func (r *Registry) SetProfilePort(name, port string, baud int, driver string) {
	profile := r.EnsureProfile(name)
	profile.Port = port
	profile.Baud = baud
	profile.Driver = driver
}

// SetProfileNickname sets a user-friendly nickname for a profile.
func (r *Registry) SetProfileNickname(name, nickname string) {
	profile := r.EnsureProfile(name)
	profile.Nickname = nickname
}

// UpdateProfileLastSeen records what was read from the module during a session.
// Empty values leave the stored ones untouched.
func (r *Registry) UpdateProfileLastSeen(name, identity, node, group string) {
	profile := r.EnsureProfile(name)
	profile.LastSeen = time.Now()
	if identity != "" {
		profile.LastIdentity = identity
	}
	if node != "" {
		profile.LastNode = node
	}
	if group != "" {
		profile.LastGroup = group
	}
}

// RemoveProfile deletes a profile. It reports whether the profile existed.
func (r *Registry) RemoveProfile(name string) bool {
	if _, exists := r.Profiles[name]; !exists {
		return false
	}
	delete(r.Profiles, name)
	if r.Preferences != nil && r.Preferences.DefaultProfile == name {
		r.Preferences.DefaultProfile = ""
	}
	return true
}

// ProfileNames returns the profile names in sorted order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SerialConfig converts the profile into a port configuration, filling unset
// fields from prefs and then from the serial package defaults.
func (p *Profile) SerialConfig(prefs *Preferences) *serial.Config {
	cfg := serial.DefaultConfig(p.Port)

	if prefs != nil {
		if prefs.DefaultBaud > 0 {
			cfg.Baud = prefs.DefaultBaud
		}
		if prefs.DefaultDriver != "" {
			cfg.Driver = prefs.DefaultDriver
		}
	}

	if p.Baud > 0 {
		cfg.Baud = p.Baud
	}
	if p.Driver != "" {
		cfg.Driver = p.Driver
	}
	if p.ReadTimeout > 0 {
		cfg.ReadTimeout = p.ReadTimeout
	}
	return cfg
}
