// Package config holds process-wide settings for the search engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-text/typesetting/language"
)

// Environment variable names read by FromEnv.
const (
	EnvScale         = "PDFSEARCH_SCALE"
	EnvContextRadius = "PDFSEARCH_CONTEXT_RADIUS"
	EnvEllipsis      = "PDFSEARCH_ELLIPSIS"
	EnvMaxFileBytes  = "PDFSEARCH_MAX_FILE_BYTES"
	EnvJoinScripts   = "PDFSEARCH_JOIN_SCRIPTS"
	EnvLogLevel      = "PDFSEARCH_LOG_LEVEL"
	EnvNoCJK         = "PDFSEARCH_NO_CJK"
	EnvNoSeparators  = "PDFSEARCH_NO_SEPARATORS"
	EnvCaseSensitive = "PDFSEARCH_CASE_SENSITIVE"
	EnvWholeWord     = "PDFSEARCH_WHOLE_WORD"
	EnvNoFallback    = "PDFSEARCH_NO_FALLBACK"
)

// Defaults.
const (
	DefaultScale               = 1.5
	DefaultContextRadius       = 50
	DefaultEllipsis            = "..."
	DefaultMaxFileBytes  int64 = 50 << 20
	DefaultLogLevel            = "info"
)

// MatchConfig mirrors match.Options.
type MatchConfig struct {
	CaseSensitive bool
	WholeWord     bool
	NoFallback    bool
}

// TextConfig mirrors the linearize options other than JoinScripts.
type TextConfig struct {
	// NoCJK inserts separators between CJK runs too.
	NoCJK bool
	// NoSeparators concatenates runs without separators.
	NoSeparators bool
}

// Config holds runtime settings.
type Config struct {
	// Scale is the zoom used for highlighting and rendering when the caller
	// passes none.
	Scale float64
	// ContextRadius is the number of runes kept on each side of a hit in
	// result snippets.
	ContextRadius int
	Ellipsis      string
	MaxFileBytes  int64
	// JoinScripts names scripts, besides CJK, whose runs are joined without
	// a separator ("thai", "lao", "khmer", "myanmar").
	JoinScripts []string
	LogLevel    string
	Text        TextConfig
	Match       MatchConfig
}

var scriptNames = map[string]language.Script{
	"thai":    language.Thai,
	"lao":     language.Lao,
	"khmer":   language.Khmer,
	"myanmar": language.Myanmar,
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Scale:         DefaultScale,
		ContextRadius: DefaultContextRadius,
		Ellipsis:      DefaultEllipsis,
		MaxFileBytes:  DefaultMaxFileBytes,
		LogLevel:      DefaultLogLevel,
	}
}

// Load returns Default overridden by the process environment.
func Load() Config {
	return FromEnv(os.LookupEnv)
}

// FromEnv applies environment overrides to Default. Invalid values are
// ignored and the default kept.
func FromEnv(lookup func(string) (string, bool)) Config {
	cfg := Default()
	if v, ok := lookup(EnvScale); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f > 0 {
			cfg.Scale = f
		}
	}
	if v, ok := lookup(EnvContextRadius); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n >= 0 {
			cfg.ContextRadius = n
		}
	}
	if v, ok := lookup(EnvEllipsis); ok {
		cfg.Ellipsis = v
	}
	if v, ok := lookup(EnvMaxFileBytes); ok {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n > 0 {
			cfg.MaxFileBytes = n
		}
	}
	if v, ok := lookup(EnvJoinScripts); ok {
		cfg.JoinScripts = SplitList(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	lookupBool(lookup, EnvNoCJK, &cfg.Text.NoCJK)
	lookupBool(lookup, EnvNoSeparators, &cfg.Text.NoSeparators)
	lookupBool(lookup, EnvCaseSensitive, &cfg.Match.CaseSensitive)
	lookupBool(lookup, EnvWholeWord, &cfg.Match.WholeWord)
	lookupBool(lookup, EnvNoFallback, &cfg.Match.NoFallback)
	return cfg
}

func lookupBool(lookup func(string) (string, bool), key string, dst *bool) {
	v, ok := lookup(key)
	if !ok {
		return
	}
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		*dst = b
	}
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Scale <= 0 {
		errs = append(errs, fmt.Errorf("scale must be positive, got %v", c.Scale))
	}
	if c.ContextRadius < 0 {
		errs = append(errs, fmt.Errorf("context radius must not be negative, got %d", c.ContextRadius))
	}
	if c.MaxFileBytes <= 0 {
		errs = append(errs, fmt.Errorf("max file size must be positive, got %d", c.MaxFileBytes))
	}
	if _, err := c.Scripts(); err != nil {
		errs = append(errs, err)
	}
	if c.Text.NoSeparators && (len(c.JoinScripts) > 0 || c.Text.NoCJK) {
		errs = append(errs, errors.New("join scripts and the CJK rule only apply when separators are inserted"))
	}
	return errors.Join(errs...)
}

// Scripts resolves JoinScripts.
func (c Config) Scripts() ([]language.Script, error) {
	out := make([]language.Script, 0, len(c.JoinScripts))
	for _, name := range c.JoinScripts {
		s, ok := scriptNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown join script %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}
