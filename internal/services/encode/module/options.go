package module

import (
	"time"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/core/features"
	"prsentinel/internal/platform/config"
)

// Options holds the encoder settings
type Options struct {
	RunID          string `env:"CORE_ENCODE_RUN_ID" validate:"omitempty,max=64"`
	VocabSize      int    `env:"CORE_ENCODE_VOCAB_SIZE" validate:"gte=1,lte=100000"`
	LabelThreshold int    `env:"CORE_ENCODE_LABEL_THRESHOLD" validate:"gte=1"`
	PartitionRows  int    `env:"CORE_ENCODE_PARTITION_ROWS" validate:"gte=1"`

	// at most one of these may be set; both empty fits a fresh vocabulary
	VocabFromModel string `env:"CORE_ENCODE_VOCAB_FROM_MODEL" validate:"excluded_with=VocabFromRun"`
	VocabFromRun   string `env:"CORE_ENCODE_VOCAB_FROM_RUN"`

	Repo  string    `env:"CORE_ENCODE_REPO" validate:"omitempty,contains=/"`
	Since time.Time `env:"CORE_ENCODE_SINCE"`
	Limit int       `env:"CORE_ENCODE_LIMIT" validate:"gte=0"`
}

// FromConfig reads the encoder options with the CORE_ENCODE_ prefix
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_ENCODE_")
	o := Options{
		RunID:          in.MayString("RUN_ID", ""),
		VocabSize:      in.MayInt("VOCAB_SIZE", features.DefaultVocabSize),
		LabelThreshold: in.MayInt("LABEL_THRESHOLD", features.DefaultLabelThreshold),
		PartitionRows:  in.MayInt("PARTITION_ROWS", snapshot.DefaultPartitionRows),
		VocabFromModel: in.MayString("VOCAB_FROM_MODEL", ""),
		VocabFromRun:   in.MayString("VOCAB_FROM_RUN", ""),
		Repo:           in.MayString("REPO", ""),
		Limit:          in.MayInt("LIMIT", 0),
	}
	if d := in.MayDuration("SINCE", 0); d > 0 {
		o.Since = time.Now().UTC().Add(-d)
	}
	return o
}
