package config

import (
	"time"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OIDC     OIDCConfig     `yaml:"oidc"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
	Sessions SessionConfig  `yaml:"sessions"`
	Cache    CacheConfig    `yaml:"cache"`
	Redis    *RedisConfig   `yaml:"redis"`
	Template TemplateConfig `yaml:"template"`
	Render   RenderConfig   `yaml:"render"`
	Records  RecordsConfig  `yaml:"records"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Viewer   ViewerConfig   `yaml:"viewer"`
}

type ServerConfig struct {
	Port        int                `yaml:"port"`
	ExternalURL string             `yaml:"external_url"`
	Debug       *ServerDebugConfig `yaml:"debug"`
	// TrustedProxies lists the addresses or CIDRs whose forwarding headers
	// are believed. Empty means the peer address is always the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

var DefaultServerConfig = ServerConfig{
	Port: 8080,
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

// OIDCConfig describes the identity provider whose ID tokens identify signers.
type OIDCConfig struct {
	IssuerURL    string   `yaml:"issuer_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURI  string   `yaml:"redirect_uri"`
	Scopes       []string `yaml:"scopes"`
	// Disabled turns off login and bearer token verification. Nobody can
	// sign while it is set.
	Disabled bool `yaml:"disabled"`
}

var DefaultOIDCScopes = []string{"openid", "profile", "email"}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173"},
	AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

type SessionConfig struct {
	Store        string        `yaml:"store"`
	FixedTimeout time.Duration `yaml:"fixed_timeout"`
	Name         string        `yaml:"name"`
	Secure       bool          `yaml:"secure"`
}

var DefaultSessionConfig = SessionConfig{
	Store:        "memory",
	FixedTimeout: 12 * time.Hour,
	Name:         "release_session",
	Secure:       true,
}

type CacheConfig struct {
	Type string `yaml:"type"` //  "memory" or "redis"
}

type RedisConfig struct {
	Address      string               `yaml:"address"`
	Username     string               `yaml:"username"`
	Password     string               `yaml:"password"`
	Sentinel     *RedisSentinelConfig `yaml:"sentinel"`
	SessionIndex int                  `yaml:"session_index"`
	CacheIndex   int                  `yaml:"cache_index"`
}

var DefaultRedisConfig = RedisConfig{
	SessionIndex: 0,
	CacheIndex:   1,
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name"`
	SentinelAddresses []string `yaml:"addresses"`
	SentinelPassword  string   `yaml:"password"`
	SentinelUsername  string   `yaml:"username"`
}

// TemplateConfig locates the pre-printed certificate form.
type TemplateConfig struct {
	Source         string            `yaml:"source"` // "file" or "s3"
	Path           string            `yaml:"path"`
	S3             *S3TemplateConfig `yaml:"s3"`
	MaxUploadBytes int64             `yaml:"max_upload_bytes"`
}

type S3TemplateConfig struct {
	Bucket       string `yaml:"bucket"`
	Key          string `yaml:"key"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

var DefaultTemplateConfig = TemplateConfig{
	Source:         "file",
	Path:           "templates/certificate.pdf",
	MaxUploadBytes: 50 << 20,
}

const (
	RenderModeTemplate = "template"
	RenderModeRemote   = "remote"
)

type RenderConfig struct {
	Mode     string        `yaml:"mode"`
	TimeZone string        `yaml:"time_zone"`
	Timeout  time.Duration `yaml:"timeout"`
}

var DefaultRenderConfig = RenderConfig{
	Mode:     RenderModeTemplate,
	TimeZone: "UTC",
	Timeout:  30 * time.Second,
}

// RecordsConfig points at the upstream tracking API that owns certificate records.
type RecordsConfig struct {
	BaseURL   string        `yaml:"base_url"`
	BasicAuth *BasicAuth    `yaml:"basic_auth"`
	OAuth2    *OAuth2Client `yaml:"oauth2"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

var DefaultRecordsConfig = RecordsConfig{
	Timeout:  15 * time.Second,
	CacheTTL: 5 * time.Minute,
}

type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type OAuth2Client struct {
	TokenURL     string   `yaml:"token_url"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

type GeocoderConfig struct {
	Enabled   bool          `yaml:"enabled"`
	URL       string        `yaml:"url"`
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

var DefaultGeocoderConfig = GeocoderConfig{
	URL:       "https://nominatim.openstreetmap.org",
	UserAgent: "batch-release",
	Timeout:   5 * time.Second,
	CacheTTL:  24 * time.Hour,
}

type ViewerConfig struct {
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	DocumentURLTTL time.Duration `yaml:"document_url_ttl"`
	PrintTokenTTL  time.Duration `yaml:"print_token_ttl"`
	URLSigningKey  string        `yaml:"url_signing_key"`
}

var DefaultViewerConfig = ViewerConfig{
	IdleTimeout:    30 * time.Minute,
	SweepInterval:  time.Minute,
	DocumentURLTTL: 15 * time.Minute,
	PrintTokenTTL:  2 * time.Minute,
}
