package config

import (
	"testing"

	"github.com/go-text/typesetting/language"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Scale != 1.5 || cfg.ContextRadius != 50 || cfg.Ellipsis != "..." || cfg.MaxFileBytes != 50<<20 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		EnvScale:         "2",
		EnvContextRadius: "10",
		EnvEllipsis:      "…",
		EnvMaxFileBytes:  "1024",
		EnvJoinScripts:   " Thai, ,khmer ",
		EnvLogLevel:      "debug",
	}))
	if cfg.Scale != 2 || cfg.ContextRadius != 10 || cfg.Ellipsis != "…" || cfg.MaxFileBytes != 1024 || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	scripts, err := cfg.Scripts()
	if err != nil {
		t.Fatalf("Scripts: %v", err)
	}
	if len(scripts) != 2 || scripts[0] != language.Thai || scripts[1] != language.Khmer {
		t.Fatalf("scripts: %v", scripts)
	}
}

func TestFromEnvIgnoresInvalid(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		EnvScale:         "-1",
		EnvContextRadius: "many",
		EnvMaxFileBytes:  "0",
	}))
	if cfg.Scale != DefaultScale || cfg.ContextRadius != DefaultContextRadius || cfg.MaxFileBytes != DefaultMaxFileBytes {
		t.Fatalf("invalid values should keep defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Scale = 0
	cfg.ContextRadius = -1
	cfg.JoinScripts = []string{"klingon"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestFromEnvSwitches(t *testing.T) {
	cfg := FromEnv(env(map[string]string{
		EnvNoCJK:         "true",
		EnvCaseSensitive: "1",
		EnvWholeWord:     "yes",
		EnvNoFallback:    "false",
	}))
	if !cfg.Text.NoCJK || cfg.Text.NoSeparators {
		t.Fatalf("text switches: %+v", cfg.Text)
	}
	if !cfg.Match.CaseSensitive || cfg.Match.WholeWord || cfg.Match.NoFallback {
		t.Fatalf("match switches: %+v", cfg.Match)
	}
}

func TestValidateRejectsJoinRulesWithoutSeparators(t *testing.T) {
	cfg := Default()
	cfg.Text.NoSeparators = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("separators off alone: %v", err)
	}
	cfg.JoinScripts = []string{"thai"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for join scripts without separators")
	}
}
