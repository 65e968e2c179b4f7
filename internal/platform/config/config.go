// Package config reads settings from the environment under a namespace
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"prsentinel/internal/platform/logger"
)

// Conf is a prefixed view over environment variables. New() sees everything,
// Prefix("TRAIN_") narrows to one component
type Conf struct{ prefix string }

// New returns the root Conf
func New() Conf { return Conf{} }

// Prefix returns a child Conf, prefixes stack
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) lookup(key string) (string, string) {
	k := c.prefix + key
	return k, strings.TrimSpace(os.Getenv(k))
}

// MustString panics through the logger when key is unset or blank
func (c Conf) MustString(key string) string {
	k, v := c.lookup(key)
	if v == "" {
		logger.Get().Panic().Str("key", k).Msg("missing required env")
	}
	return v
}

// MayString returns def when key is unset or blank
func (c Conf) MayString(key, def string) string {
	if _, v := c.lookup(key); v != "" {
		return v
	}
	return def
}

// MayInt returns def when key is unset. An unparsable value logs a warning and
// falls back to def
func (c Conf) MayInt(key string, def int) int {
	return may(c, key, def, strconv.Atoi)
}

// MayFloat64 is MayInt for floats
func (c Conf) MayFloat64(key string, def float64) float64 {
	return may(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool accepts anything strconv.ParseBool does
func (c Conf) MayBool(key string, def bool) bool {
	return may(c, key, def, strconv.ParseBool)
}

// MayDuration accepts time.ParseDuration syntax, e.g. 250ms or 2h
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return may(c, key, def, time.ParseDuration)
}

func may[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	k, s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", k).Str("value", s).Interface("default", def).Msg("unparsable env; using default")
		return def
	}
	return v
}
