package config

import (
	"fmt"
	"os"
	"path"
	"time"
	_ "time/tzdata" // board day boundaries must not depend on the host zoneinfo

	"github.com/itchan-dev/nanashi/shared/utils"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	LogLevel       string         `yaml:"log_level"`
	LogJSON        bool           `yaml:"log_json"`
	Storage        string         `yaml:"storage"` // "pg" or "memory"
	JwtTTL         time.Duration  `yaml:"jwt_ttl"`
	AllowedOrigins []string       `yaml:"allowed_origins"`
	TrustedProxies TrustedProxies `yaml:"trusted_proxies"`
	Http           Http           `yaml:"http"`
	Bbs            Bbs            `yaml:"bbs"`
}

// TrustedProxies lists, per tier, the peers allowed to set X-Forwarded-For.
// Entries are CIDR ranges or bare addresses.
type TrustedProxies struct {
	Api      []string `yaml:"api"`      // the frontend and anything else relaying posts to the api
	Frontend []string `yaml:"frontend"` // reverse proxies in front of the frontend, none by default
}

type Http struct {
	ApiPort      int    `yaml:"api_port"`
	FrontendPort int    `yaml:"frontend_port"`
	ApiBaseURL   string `yaml:"api_base_url"` // used by the frontend to reach the api
	Https        bool   `yaml:"https"`        // frontend served over https: secure cookies, HSTS
}

type Bbs struct {
	MaxResponses   int           `yaml:"max_responses"` // thread stops accepting posts at this count
	Timezone       string        `yaml:"timezone"`      // poster ids roll over at midnight in this zone
	ThreadsPerPage int           `yaml:"threads_per_page"`
	MaxTitleLength int           `yaml:"max_title_length"`
	MaxNameLength  int           `yaml:"max_name_length"`
	MaxEmailLength int           `yaml:"max_email_length"`
	MaxBodyLength  int           `yaml:"max_body_length"`
	PostCooldown   time.Duration `yaml:"post_cooldown"` // per board+ip, 0 disables
	DefaultBoard   DefaultBoard  `yaml:"default_board"`
}

// DefaultBoard is created on first thread creation if it does not exist yet.
type DefaultBoard struct {
	Id           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	DefaultName  string `yaml:"default_name"`
	CategoryId   int64  `yaml:"category_id"`
	CategoryName string `yaml:"category_name"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Redis struct {
	URL string `yaml:"url"` // empty disables the flood guard store
}

type Private struct {
	Pg                Pg     `yaml:"pg"`
	Redis             Redis  `yaml:"redis"`
	JwtKey            string `yaml:"jwt_key"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt, see `nanashictl hash-password`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// Location returns the zone used for the poster id day boundary.
func (b Bbs) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Defaults fills zero values with the classic board settings.
func (p *Public) Defaults() {
	if p.LogLevel == "" {
		p.LogLevel = "info"
	}
	if p.Storage == "" {
		p.Storage = "pg"
	}
	if p.JwtTTL == 0 {
		p.JwtTTL = 12 * time.Hour
	}
	if p.TrustedProxies.Api == nil {
		p.TrustedProxies.Api = []string{"127.0.0.1/32", "::1/128"}
	}
	if p.Http.ApiPort == 0 {
		p.Http.ApiPort = 8080
	}
	if p.Http.FrontendPort == 0 {
		p.Http.FrontendPort = 8081
	}
	if p.Http.ApiBaseURL == "" {
		p.Http.ApiBaseURL = fmt.Sprintf("http://localhost:%d/v1", p.Http.ApiPort)
	}

	b := &p.Bbs
	if b.MaxResponses == 0 {
		b.MaxResponses = 1000
	}
	if b.Timezone == "" {
		b.Timezone = "Asia/Tokyo"
	}
	if b.ThreadsPerPage == 0 {
		b.ThreadsPerPage = 50
	}
	if b.MaxTitleLength == 0 {
		b.MaxTitleLength = 96
	}
	if b.MaxNameLength == 0 {
		b.MaxNameLength = 64
	}
	if b.MaxEmailLength == 0 {
		b.MaxEmailLength = 64
	}
	if b.MaxBodyLength == 0 {
		b.MaxBodyLength = 4096
	}
	d := &b.DefaultBoard
	if d.Id == 0 {
		d.Id = 1
	}
	if d.Name == "" {
		d.Name = "雑談板"
	}
	if d.DefaultName == "" {
		d.DefaultName = "名無しさん"
	}
	if d.CategoryId == 0 {
		d.CategoryId = 1
	}
	if d.CategoryName == "" {
		d.CategoryName = "雑談"
	}
}

func (p *Public) validate() error {
	if p.Storage != "pg" && p.Storage != "memory" {
		return fmt.Errorf("unknown storage %q", p.Storage)
	}
	if p.Bbs.MaxResponses < 1 {
		return fmt.Errorf("bbs.max_responses must be positive, got %d", p.Bbs.MaxResponses)
	}
	if _, err := time.LoadLocation(p.Bbs.Timezone); err != nil {
		return fmt.Errorf("bbs.timezone: %w", err)
	}
	if _, err := utils.ParseProxies(p.TrustedProxies.Api); err != nil {
		return fmt.Errorf("trusted_proxies.api: %w", err)
	}
	if _, err := utils.ParseProxies(p.TrustedProxies.Frontend); err != nil {
		return fmt.Errorf("trusted_proxies.frontend: %w", err)
	}
	return nil
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		panic(fmt.Sprintf("can't unmarshal config file %s: %s", configPath, err))
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.Defaults()
	if err := public.validate(); err != nil {
		panic("invalid public config: " + err.Error())
	}

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)
	if private.JwtKey == "" {
		panic("jwt_key is required in private.yaml")
	}

	return &Config{public, private}
}
