// Package config decodes and merges .muse/config.toml the way a repository
// config layers over a global one: fields present locally win, fields
// present only globally survive, and everything has a usable zero value so
// a missing config.toml is never an error.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// User holds the committer identity recorded in new commits' author field
// when the caller does not supply one explicitly.
type User struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

func (u *User) Empty() bool {
	return u == nil || (u.Name == "" && u.Email == "")
}

func overwrite(a, b string) string {
	if b != "" {
		return b
	}
	return a
}

// Overwrite merges o's non-empty fields over u.
func (u *User) Overwrite(o User) {
	u.Name = overwrite(u.Name, o.Name)
	u.Email = overwrite(u.Email, o.Email)
}

// Remote describes a named remote's URL. The transport itself lives outside
// this module; the core only records where a remote lives.
type Remote struct {
	URL string `toml:"url,omitempty"`
}

// Auth holds the optional bearer token a remote-transport consumer would
// attach to requests; the core never reads or validates it.
type Auth struct {
	Token string `toml:"token,omitempty"`
}

func (a *Auth) Overwrite(o Auth) {
	a.Token = overwrite(a.Token, o.Token)
}

// Config is the decoded shape of .muse/config.toml.
type Config struct {
	User    User              `toml:"user,omitempty"`
	Remotes map[string]Remote `toml:"remotes,omitempty"`
	Auth    Auth              `toml:"auth,omitempty"`
}

// Overwrite merges o's fields over c in place, field by field, the way a
// repo-local config overwrites a loaded global config.
func (c *Config) Overwrite(o Config) {
	c.User.Overwrite(o.User)
	c.Auth.Overwrite(o.Auth)
	if len(o.Remotes) > 0 {
		if c.Remotes == nil {
			c.Remotes = make(map[string]Remote, len(o.Remotes))
		}
		for name, r := range o.Remotes {
			c.Remotes[name] = r
		}
	}
}

// Load reads and decodes a config.toml at path. A missing file is not an
// error: it returns a zero-value Config.
func Load(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if _, err := toml.Decode(string(data), &c); err != nil {
		return c, err
	}
	return c, nil
}

// LoadMerged loads the global config (if any) at $HOME/.muse/config.toml,
// then the repo-local config at localPath, and returns the local config
// overwriting the global one field by field.
func LoadMerged(localPath string) (Config, error) {
	merged := Config{}
	if home, err := os.UserHomeDir(); err == nil {
		global, err := Load(filepath.Join(home, ".muse", "config.toml"))
		if err != nil {
			return Config{}, err
		}
		merged = global
	}
	local, err := Load(localPath)
	if err != nil {
		return Config{}, err
	}
	merged.Overwrite(local)
	return merged, nil
}

// Save writes c to path as TOML, creating parent directories as needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
