// Package config loads the optional YAML configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iwanhae/rating-tourniquet/hosts"
	"github.com/iwanhae/rating-tourniquet/lichess"
	"github.com/iwanhae/rating-tourniquet/regulator"
)

type Config struct {
	HostsFile  string        `yaml:"hosts_file"`
	Redirect   string        `yaml:"redirect"`
	Websites   []string      `yaml:"websites"`
	Interval   time.Duration `yaml:"interval"`
	APIURL     string        `yaml:"api_url"`
	StatusAddr string        `yaml:"status_addr"`
	HostKey    string        `yaml:"host_key"`
}

func Default() Config {
	return Config{
		HostsFile: hosts.DefaultPath,
		Redirect:  hosts.DefaultRedirect,
		Websites:  []string{"www.lichess.org", "lichess.org"},
		Interval:  regulator.DefaultInterval,
		APIURL:    lichess.DefaultBaseURL,
		HostKey:   "host.key",
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := cfg.decode(b); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) decode(b []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", c.Interval)
	}
	if c.APIURL == "" {
		return errors.New("api_url must not be empty")
	}
	_, err := c.Blocklist()
	return err
}

// Blocklist builds the hosts blocklist described by c.
func (c Config) Blocklist() (hosts.Blocklist, error) {
	return hosts.NewBlocklist(c.HostsFile, c.Websites, c.Redirect)
}
