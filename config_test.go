package authgate

import (
	"testing"
	"time"
)

func TestDefaultConfigNeedsTokenMaterial(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected default config to fail validation without a secret")
	}

	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.Issuer = "iss"
	cfg.Token.Audience = "aud"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to validate, got %v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
		cfg.Token.Issuer = "iss"
		cfg.Token.Audience = "aud"
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing issuer", func(c *Config) { c.Token.Issuer = "" }},
		{"missing audience", func(c *Config) { c.Token.Audience = "" }},
		{"zero access ttl", func(c *Config) { c.Token.AccessTTL = 0 }},
		{"refresh not longer than access", func(c *Config) { c.Token.RefreshTTL = c.Token.AccessTTL }},
		{"negative leeway", func(c *Config) { c.Token.Leeway = -time.Second }},
		{"empty key prefix", func(c *Config) { c.Session.KeyPrefix = "" }},
		{"negative op timeout", func(c *Config) { c.Session.OpTimeout = -time.Second }},
		{"unknown algorithm", func(c *Config) { c.Password.Algorithm = "md5" }},
		{"audit enabled without buffer", func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation to fail")
			}
		})
	}
}

func TestCloneConfigDetachesSecret(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	clone := cloneConfig(cfg)
	cfg.Token.Secret[0] = 'x'

	if clone.Token.Secret[0] == 'x' {
		t.Fatal("clone shares the secret backing array")
	}
}
