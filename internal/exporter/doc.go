// Package exporter renders a pipeline report through output sinks.
//
// Every sink implements Sink. MultiSink fans a report out to all configured
// sinks concurrently; a failing sink does not stop the others and all
// failures are returned together.
//
// Sinks:
//
//   - ConsoleSink: aligned tables on a terminal (tablewriter)
//   - CSVSink: one CSV file per table through CSVWriter
//   - JSONSink: the whole report as report.json
//   - XLSXSink: one workbook with a sheet per table and native charts
//
// The database sink lives in package storage and satisfies the same
// interface.
//
// Example usage:
//
//	sinks, err := exporter.NewSinks(ctx, exporter.SinkDeps{Config: cfg, Paths: paths, Console: os.Stdout})
//	if err != nil {
//	    return err
//	}
//	defer sinks.Close()
//
//	err = sinks.Write(ctx, report)
package exporter
