package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use -config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvOIDCClientID             = "BATCH_RELEASE_OIDC_CLIENT_ID"
	EnvOIDCIssuerURL            = "BATCH_RELEASE_OIDC_ISSUER_URL"
	EnvOIDCClientSecret         = "BATCH_RELEASE_OIDC_CLIENT_SECRET"
	EnvRecordsBaseURL           = "BATCH_RELEASE_RECORDS_BASE_URL"
	EnvRecordsBasicAuthUsername = "BATCH_RELEASE_RECORDS_BASIC_AUTH_USERNAME"
	EnvRecordsBasicAuthPassword = "BATCH_RELEASE_RECORDS_BASIC_AUTH_PASSWORD"
	EnvRecordsOAuth2Secret      = "BATCH_RELEASE_RECORDS_OAUTH2_CLIENT_SECRET"
	EnvRedisPassword            = "BATCH_RELEASE_REDIS_PASSWORD"
	EnvRedisUsername            = "BATCH_RELEASE_REDIS_USERNAME"
	EnvRedisSentinelUsername    = "BATCH_RELEASE_REDIS_SENTINEL_USERNAME"
	EnvRedisSentinelPassword    = "BATCH_RELEASE_REDIS_SENTINEL_PASSWORD"
	EnvTemplateS3Bucket         = "BATCH_RELEASE_TEMPLATE_S3_BUCKET"
	EnvViewerURLSigningKey      = "BATCH_RELEASE_VIEWER_URL_SIGNING_KEY"
)

func applyEnvironmentOverrides(config *Config) {
	if clientID := os.Getenv(EnvOIDCClientID); clientID != "" {
		config.OIDC.ClientID = clientID
	}

	if issuerURL := os.Getenv(EnvOIDCIssuerURL); issuerURL != "" {
		config.OIDC.IssuerURL = issuerURL
	}

	if clientSecret := os.Getenv(EnvOIDCClientSecret); clientSecret != "" {
		config.OIDC.ClientSecret = clientSecret
	}

	if baseURL := os.Getenv(EnvRecordsBaseURL); baseURL != "" {
		config.Records.BaseURL = baseURL
	}

	if username := os.Getenv(EnvRecordsBasicAuthUsername); username != "" {
		if config.Records.BasicAuth == nil {
			config.Records.BasicAuth = &BasicAuth{}
		}
		config.Records.BasicAuth.Username = username
	}

	if password := os.Getenv(EnvRecordsBasicAuthPassword); password != "" {
		if config.Records.BasicAuth == nil {
			config.Records.BasicAuth = &BasicAuth{}
		}
		config.Records.BasicAuth.Password = password
	}

	if secret := os.Getenv(EnvRecordsOAuth2Secret); secret != "" {
		if config.Records.OAuth2 == nil {
			config.Records.OAuth2 = &OAuth2Client{}
		}
		config.Records.OAuth2.ClientSecret = secret
	}

	if redisPassword := os.Getenv(EnvRedisPassword); redisPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Password = redisPassword
	}

	if redisUsername := os.Getenv(EnvRedisUsername); redisUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Username = redisUsername
	}

	if sentinelUsername := os.Getenv(EnvRedisSentinelUsername); sentinelUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelUsername = sentinelUsername
	}

	if sentinelPassword := os.Getenv(EnvRedisSentinelPassword); sentinelPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		if config.Redis.Sentinel == nil {
			config.Redis.Sentinel = &RedisSentinelConfig{}
		}
		config.Redis.Sentinel.SentinelPassword = sentinelPassword
	}

	if bucket := os.Getenv(EnvTemplateS3Bucket); bucket != "" {
		if config.Template.S3 == nil {
			config.Template.S3 = &S3TemplateConfig{}
		}
		config.Template.S3.Bucket = bucket
	}

	if key := os.Getenv(EnvViewerURLSigningKey); key != "" {
		config.Viewer.URLSigningKey = key
	}
}

func validateConfig(config *Config) error {
	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateOIDCConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	err = config.validateCacheConfig()
	if err != nil {
		return err
	}

	if config.Cache.Type == "redis" || config.Sessions.Store == "redis" {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	err = config.validateTemplateConfig()
	if err != nil {
		return err
	}

	err = config.validateRenderConfig()
	if err != nil {
		return err
	}

	err = config.validateRecordsConfig()
	if err != nil {
		return err
	}

	err = config.validateGeocoderConfig()
	if err != nil {
		return err
	}

	return config.validateViewerConfig()
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.ExternalURL == "" {
		return fmt.Errorf("server.external_url is required")
	}

	if err := validateURL(c.Server.ExternalURL, "server.external_url"); err != nil {
		return err
	}

	if _, err := parsePrefixes(c.Server.TrustedProxies); err != nil {
		return fmt.Errorf("server.trusted_proxies: %w", err)
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateOIDCConfig() error {
	if c.OIDC.Disabled {
		return nil
	}

	if c.OIDC.ClientID == "" {
		return fmt.Errorf("oidc.client_id is required")
	}

	if err := validateURL(c.OIDC.IssuerURL, "oidc.issuer_url"); err != nil {
		return err
	}

	if c.OIDC.RedirectURI == "" {
		c.OIDC.RedirectURI = strings.TrimSuffix(c.Server.ExternalURL, "/") + "/api/v1/auth/callback"
	}
	if err := validateURL(c.OIDC.RedirectURI, "oidc.redirect_uri"); err != nil {
		return err
	}

	if len(c.OIDC.Scopes) == 0 {
		c.OIDC.Scopes = append([]string(nil), DefaultOIDCScopes...)
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	} else {
		switch c.Log.Format {
		case "text", "json":
		default:
			return fmt.Errorf("invalid log format: %s, options are text or json", c.Log.Format)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	} else {
		switch c.Log.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
		}
	}

	return nil
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Sessions.Store == "" {
		c.Sessions.Store = DefaultSessionConfig.Store
	} else {
		switch c.Sessions.Store {
		case "memory", "redis":
		default:
			return fmt.Errorf("invalid session store: %s, options are 'memory' or 'redis'", c.Sessions.Store)
		}
	}

	if c.Sessions.Name == "" {
		c.Sessions.Name = DefaultSessionConfig.Name
	}

	if c.Sessions.FixedTimeout == 0 {
		c.Sessions.FixedTimeout = DefaultSessionConfig.FixedTimeout
	}

	return nil
}

func (c *Config) validateCacheConfig() error {
	if c.Cache.Type == "" {
		c.Cache.Type = "memory"
	}

	switch c.Cache.Type {
	case "memory":
	case "redis":
		if c.Redis == nil {
			return fmt.Errorf("redis configuration must be enabled to use redis for data cache")
		}
	default:
		return fmt.Errorf("invalid cache type: %s, must be 'memory' or 'redis'", c.Cache.Type)
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis config is nil")
	}

	if c.Redis.Sentinel == nil {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}

		if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
			return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
		}
	}

	if c.Redis.SessionIndex == 0 && c.Redis.CacheIndex == 0 {
		c.Redis.SessionIndex = DefaultRedisConfig.SessionIndex
		c.Redis.CacheIndex = DefaultRedisConfig.CacheIndex
	}

	if c.Redis.SessionIndex < 0 {
		return fmt.Errorf("redis session_index must be non-negative, got %d", c.Redis.SessionIndex)
	}

	if c.Redis.CacheIndex < 0 {
		return fmt.Errorf("redis cache_index must be non-negative, got %d", c.Redis.CacheIndex)
	}

	if c.Redis.SessionIndex == c.Redis.CacheIndex {
		return fmt.Errorf("redis session_index and cache_index should be different to avoid data collision (both are %d)", c.Redis.SessionIndex)
	}

	const maxRedisDB = 15
	if c.Redis.SessionIndex > maxRedisDB {
		return fmt.Errorf("redis session_index %d exceeds typical maximum of %d", c.Redis.SessionIndex, maxRedisDB)
	}

	if c.Redis.CacheIndex > maxRedisDB {
		return fmt.Errorf("redis cache_index %d exceeds typical maximum of %d", c.Redis.CacheIndex, maxRedisDB)
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
	}
	return nil
}

func (c *Config) validateTemplateConfig() error {
	if c.Template.Source == "" {
		c.Template.Source = DefaultTemplateConfig.Source
	}

	if c.Template.MaxUploadBytes <= 0 {
		c.Template.MaxUploadBytes = DefaultTemplateConfig.MaxUploadBytes
	}

	switch c.Template.Source {
	case "file":
		if c.Template.Path == "" {
			c.Template.Path = DefaultTemplateConfig.Path
		}
	case "s3":
		if c.Template.S3 == nil {
			return fmt.Errorf("template.s3 is required when template.source is s3")
		}
		if c.Template.S3.Bucket == "" {
			return fmt.Errorf("template.s3.bucket is required")
		}
		if c.Template.S3.Key == "" {
			return fmt.Errorf("template.s3.key is required")
		}
	default:
		return fmt.Errorf("invalid template source: %s, must be 'file' or 's3'", c.Template.Source)
	}

	return nil
}

func (c *Config) validateRenderConfig() error {
	if c.Render.Mode == "" {
		c.Render.Mode = DefaultRenderConfig.Mode
	}

	switch c.Render.Mode {
	case RenderModeTemplate, RenderModeRemote:
	default:
		return fmt.Errorf("invalid render mode: %s, must be '%s' or '%s'", c.Render.Mode, RenderModeTemplate, RenderModeRemote)
	}

	if c.Render.TimeZone == "" {
		c.Render.TimeZone = DefaultRenderConfig.TimeZone
	}

	if _, err := time.LoadLocation(c.Render.TimeZone); err != nil {
		return fmt.Errorf("render.time_zone is not a valid location: %w", err)
	}

	if c.Render.Timeout <= 0 {
		c.Render.Timeout = DefaultRenderConfig.Timeout
	}

	return nil
}

func (c *Config) validateRecordsConfig() error {
	if err := validateURL(c.Records.BaseURL, "records.base_url"); err != nil {
		return err
	}

	if c.Records.BasicAuth != nil && c.Records.OAuth2 != nil {
		return fmt.Errorf("records.basic_auth and records.oauth2 are mutually exclusive")
	}

	if c.Records.BasicAuth != nil {
		if c.Records.BasicAuth.Username == "" {
			return fmt.Errorf("records.basic_auth.username is required")
		}
		if c.Records.BasicAuth.Password == "" {
			return fmt.Errorf("records.basic_auth.password is required")
		}
	}

	if c.Records.OAuth2 != nil {
		if err := validateURL(c.Records.OAuth2.TokenURL, "records.oauth2.token_url"); err != nil {
			return err
		}
		if c.Records.OAuth2.ClientID == "" {
			return fmt.Errorf("records.oauth2.client_id is required")
		}
		if c.Records.OAuth2.ClientSecret == "" {
			return fmt.Errorf("records.oauth2.client_secret is required")
		}
	}

	if c.Records.Timeout <= 0 {
		c.Records.Timeout = DefaultRecordsConfig.Timeout
	}

	if c.Records.CacheTTL < 0 {
		return fmt.Errorf("records.cache_ttl cannot be negative")
	} else if c.Records.CacheTTL == 0 {
		c.Records.CacheTTL = DefaultRecordsConfig.CacheTTL
	}

	return nil
}

func (c *Config) validateGeocoderConfig() error {
	if !c.Geocoder.Enabled {
		return nil
	}

	if c.Geocoder.URL == "" {
		c.Geocoder.URL = DefaultGeocoderConfig.URL
	}

	if err := validateURL(c.Geocoder.URL, "geocoder.url"); err != nil {
		return err
	}

	if c.Geocoder.UserAgent == "" {
		c.Geocoder.UserAgent = DefaultGeocoderConfig.UserAgent
	}

	if c.Geocoder.Timeout <= 0 {
		c.Geocoder.Timeout = DefaultGeocoderConfig.Timeout
	} else if c.Geocoder.Timeout > time.Minute {
		return fmt.Errorf("geocoder.timeout cannot be more than 1 minute")
	}

	if c.Geocoder.CacheTTL <= 0 {
		c.Geocoder.CacheTTL = DefaultGeocoderConfig.CacheTTL
	}

	return nil
}

func (c *Config) validateViewerConfig() error {
	if c.Viewer.IdleTimeout <= 0 {
		c.Viewer.IdleTimeout = DefaultViewerConfig.IdleTimeout
	}

	if c.Viewer.SweepInterval <= 0 {
		c.Viewer.SweepInterval = DefaultViewerConfig.SweepInterval
	} else if c.Viewer.SweepInterval < 5*time.Second {
		return fmt.Errorf("viewer.sweep_interval cannot be less than 5 seconds")
	}

	if c.Viewer.DocumentURLTTL <= 0 {
		c.Viewer.DocumentURLTTL = DefaultViewerConfig.DocumentURLTTL
	}

	if c.Viewer.PrintTokenTTL <= 0 {
		c.Viewer.PrintTokenTTL = DefaultViewerConfig.PrintTokenTTL
	}

	if c.Viewer.URLSigningKey == "" {
		return fmt.Errorf("viewer.url_signing_key is required")
	}

	if len(c.Viewer.URLSigningKey) < 32 {
		return fmt.Errorf("viewer.url_signing_key must be at least 32 characters")
	}

	return nil
}
