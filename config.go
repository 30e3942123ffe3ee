package igmpsnoop

import (
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// A sensible default configuration for the agent in YAML.
var defaultConfigYAML = `
cache:
    hash_size:          64
    group_pool_size:    512
    member_pool_size:   1024
    host_pool_size:     32
    host_ttl_ticks:     3
    port_max:           31
    timer_hz:           1

debug:
    bind:   0.0.0.0:5380

rate_limit:
    cps:    64.0
    burst:  16
`

// CacheConfig holds the sizing constants spec.md names as compile time
// constants (HASH_SIZE, GROUP_POOL_SIZE, MEMBER_POOL_SIZE, HOST_POOL_SIZE,
// HOST_TTL, PORT_MAX, TIMER_HZ), exposed here as overridable fields.
// HostTTLTicks is multiplied by TimerHz to give the host cache TTL in ticks
// (see GetPort).
type CacheConfig struct {
	HashSize       int    `yaml:"hash_size"`
	GroupPoolSize  int    `yaml:"group_pool_size"`
	MemberPoolSize int    `yaml:"member_pool_size"`
	HostPoolSize   int    `yaml:"host_pool_size"`
	HostTTLTicks   uint64 `yaml:"host_ttl_ticks"`
	PortMax        int    `yaml:"port_max"`
	TimerHz        uint64 `yaml:"timer_hz"`
}

// DebugConfig describes the bind address for the read only debug HTTP API.
type DebugConfig struct {
	Bind string `yaml:"bind"`
}

// RateLimitConfig sets the call rate and burst size above which the default
// switch driver wrapper logs a warning for each further call; calls are
// still forwarded. See RateLimitedDriver.
type RateLimitConfig struct {
	CPS   float64 `yaml:"cps"`
	Burst int     `yaml:"burst"`
}

// Config wraps all of the above and defines the overall configuration for
// an Agent.
type Config struct {
	Cache     CacheConfig     `yaml:"cache"`
	Debug     DebugConfig     `yaml:"debug"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// NewDefaultConfig provides a sensible default Config.
func NewDefaultConfig() (*Config, error) {
	return NewConfig([]byte(defaultConfigYAML))
}

// NewConfig provides a parsed Config based on the provided data, which is
// expected to be a YAML representation of Config.
func NewConfig(data []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return c, fmt.Errorf("failed to parse config: %s", err)
	}
	return c, nil
}

// LoadConfigFromPath reads and parses a Config from the YAML file at path.
func LoadConfigFromPath(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %s", path, err)
	}
	return NewConfig(data)
}
