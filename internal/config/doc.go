// Package config provides centralized configuration management for procurekpi.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Command-line flags (highest priority, applied by package cli)
//  2. Environment variables, including a .env file in the working directory
//  3. A YAML configuration file (procurekpi.yaml or configs/procurekpi.yaml)
//  4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern PROCUREKPI_<SECTION>_<FIELD>:
//
//	PROCUREKPI_INPUT_PATH=data/procurement.csv
//	PROCUREKPI_OUTPUT_DIR=reports
//	PROCUREKPI_OUTPUT_SINKS=console,csv,xlsx
//	PROCUREKPI_PIPELINE_FILL_STRATEGY=median
//	PROCUREKPI_LOGGING_LEVEL=debug
//	PROCUREKPI_STORAGE_DSN=file:procurement.db
//
// # Path Management
//
// Paths resolves every output file of a run from the output directory:
//
//	paths, err := config.NewPaths(cfg.Output.Dir)
//	riskPath := paths.GetReportPath(config.SupplierRiskCSV)
//
// # Validation
//
// Validate checks enum values, ranges and cross-field requirements with
// go-playground/validator struct tags. Call it after flags are applied.
package config
