package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  Server `yaml:"server" json:"server"`
	DataDir string `yaml:"data_dir" json:"data_dir"`
	Limits  Limits `yaml:"limits" json:"limits"`
	Auth    Auth   `yaml:"auth" json:"auth"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Limits are the boundary-layer caps on user-supplied text. The store
// assumes input was validated against these before it is invoked.
type Limits struct {
	TitleMax       int `yaml:"title_max" json:"title_max"`
	DescriptionMax int `yaml:"description_max" json:"description_max"`
	CommentMax     int `yaml:"comment_max" json:"comment_max"`
}

type Auth struct {
	CookieName      string `yaml:"cookie_name" json:"cookie_name"`
	SessionTTLHours int    `yaml:"session_ttl_hours" json:"session_ttl_hours"`
	OTPTTLMinutes   int    `yaml:"otp_ttl_minutes" json:"otp_ttl_minutes"`
	OTPMaxAttempts  int    `yaml:"otp_max_attempts" json:"otp_max_attempts"`
}

func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.Limits.TitleMax == 0 {
		c.Limits.TitleMax = 100
	}
	if c.Limits.DescriptionMax == 0 {
		c.Limits.DescriptionMax = 500
	}
	if c.Limits.CommentMax == 0 {
		c.Limits.CommentMax = 200
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "tasknest_session"
	}
	if c.Auth.SessionTTLHours == 0 {
		c.Auth.SessionTTLHours = 7 * 24
	}
	if c.Auth.OTPTTLMinutes == 0 {
		c.Auth.OTPTTLMinutes = 10
	}
	if c.Auth.OTPMaxAttempts == 0 {
		c.Auth.OTPMaxAttempts = 5
	}
}

// Load reads the YAML config at path and applies defaults and environment
// overrides. A missing file is not an error; the defaults stand.
func Load(path string) (*Config, error) {
	var c Config
	b, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.applyEnv()
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TASKNEST_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TASKNEST_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getEnvInt("TASKNEST_SESSION_TTL_HOURS"); v > 0 {
		c.Auth.SessionTTLHours = v
	}
	if v := getEnvInt("TASKNEST_OTP_TTL_MINUTES"); v > 0 {
		c.Auth.OTPTTLMinutes = v
	}
	if v := getEnvInt("TASKNEST_OTP_MAX_ATTEMPTS"); v > 0 {
		c.Auth.OTPMaxAttempts = v
	}
}

func getEnvInt(key string) int {
	val := os.Getenv(key)
	if val == "" {
		return 0
	}
	num, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return num
}
