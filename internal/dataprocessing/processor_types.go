package dataprocessing

import (
	"procurekpi/internal/config"
)

// LoadOptions configures the loader
type LoadOptions struct {
	// Delimiter for delimited files. Zero means ',' (or '\t' for .tsv).
	Delimiter rune

	// Sheet to read from a workbook. Empty means the first sheet.
	Sheet string
}

// CleanOptions configures the cleaner
type CleanOptions struct {
	// FillStrategy is config.FillStrategyMedian or config.FillStrategyFFill
	FillStrategy string

	// UnknownCompliance replaces empty compliance values
	UnknownCompliance string
}

// MetricsOptions configures the risk flags
type MetricsOptions struct {
	// DefectThreshold flags a row when DefectRate >= threshold
	DefectThreshold float64

	// DelayThresholdDays flags a row when DeliveryDays > threshold
	DelayThresholdDays int64
}

// Options configures a full pipeline run
type Options struct {
	Load    LoadOptions
	Clean   CleanOptions
	Metrics MetricsOptions

	// FallbackLeadDays is used for categories without a median
	FallbackLeadDays int

	// TopN limits both savings rankings
	TopN int
}

// DefaultOptions returns default processing options
func DefaultOptions() Options {
	return Options{
		Clean: CleanOptions{
			FillStrategy:      config.FillStrategyMedian,
			UnknownCompliance: config.DefaultUnknownCompliance,
		},
		Metrics: MetricsOptions{
			DefectThreshold:    config.DefaultDefectThreshold,
			DelayThresholdDays: config.DefaultDelayThresholdDays,
		},
		FallbackLeadDays: config.DefaultFallbackLeadDays,
		TopN:             config.DefaultTopN,
	}
}

// OptionsFromConfig maps the application config onto pipeline options
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	if cfg.Input.Delimiter != "" {
		opts.Load.Delimiter = []rune(cfg.Input.Delimiter)[0]
	}
	opts.Load.Sheet = cfg.Input.Sheet

	opts.Clean.FillStrategy = cfg.Pipeline.FillStrategy
	opts.Clean.UnknownCompliance = cfg.Pipeline.UnknownCompliance
	opts.Metrics.DefectThreshold = cfg.Pipeline.DefectThreshold
	opts.Metrics.DelayThresholdDays = int64(cfg.Pipeline.DelayThresholdDays)
	opts.FallbackLeadDays = cfg.Pipeline.FallbackLeadDays
	opts.TopN = cfg.Output.TopN

	return opts
}

// CleanStats counts what Clean changed
type CleanStats struct {
	UnparsedOrderDates int
	UnparsedDeliveries int
	ForwardFilled      int
	DefaultedDefects   int
}

// ImputeStats counts what Impute changed
type ImputeStats struct {
	Imputed         int
	FallbackApplied int
}
