package module

import (
	"time"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/features"
	"prsentinel/internal/platform/config"
	"prsentinel/internal/services/train/guardrails"
)

// Options holds the training settings
type Options struct {
	RunID      string        `env:"CORE_TRAIN_RUN_ID" validate:"required"`
	Hidden     int           `env:"CORE_TRAIN_HIDDEN" validate:"gte=2,lte=4096"`
	Epochs     int           `env:"CORE_TRAIN_EPOCHS" validate:"gte=1"`
	LR         float64       `env:"CORE_TRAIN_LR" validate:"gt=0,lt=1"`
	Seed       int           `env:"CORE_TRAIN_SEED" validate:"gte=0"`
	ThresholdK float64       `env:"CORE_TRAIN_THRESHOLD_K" validate:"gt=0"`
	VocabSize  int           `env:"CORE_TRAIN_VOCAB_SIZE" validate:"gte=1"`
	Lease      string        `env:"CORE_TRAIN_LEASE" validate:"oneof=none pg redis"`
	LeaseTTL   time.Duration `env:"CORE_TRAIN_LEASE_TTL" validate:"gte=0"`
	Telemetry  bool          `env:"CORE_TRAIN_TELEMETRY"`
}

// FromConfig reads the training options with the CORE_TRAIN_ prefix
func FromConfig(cfg config.Conf) Options {
	in := cfg.Prefix("CORE_TRAIN_")
	return Options{
		RunID:      in.MayString("RUN_ID", ""),
		Hidden:     in.MayInt("HIDDEN", autoencoder.DefaultHidden),
		Epochs:     in.MayInt("EPOCHS", 10),
		LR:         in.MayFloat64("LR", 1e-3),
		Seed:       in.MayInt("SEED", 42),
		ThresholdK: in.MayFloat64("THRESHOLD_K", autoencoder.DefaultThresholdK),
		VocabSize:  in.MayInt("VOCAB_SIZE", features.DefaultVocabSize),
		Lease:      in.MayString("LEASE", guardrails.BackendNone),
		LeaseTTL:   in.MayDuration("LEASE_TTL", 6*time.Hour),
		Telemetry:  in.MayBool("TELEMETRY", true),
	}
}
