// Package dataprocessing turns a raw procurement log into the cleaned order
// table and the summaries built from it.
//
// # Architecture
//
// Every stage is a plain function from one table value to the next. None of
// them mutate their input, so each can be tested on its own:
//
//  1. Loader: LoadFile reads a CSV or XLSX log into a domain.Table
//  2. Cleaner: Clean normalizes compliance, parses dates, fills defects
//  3. Imputer: Impute fills missing delivery dates from category medians
//  4. Metrics: ApplyMetrics computes costs, defect rates and risk flags
//  5. Aggregator: AggregateRisk, AggregateSavings, AggregateMonthlyTrends
//  6. Profiler: MissingCounts and Describe
//
// Pipeline composes the stages for one run and records a span and stage
// metrics for each of them.
//
// # Usage
//
//	pipeline, err := dataprocessing.NewPipeline(logger, dataprocessing.DefaultOptions(), nil)
//	if err != nil {
//	    return err
//	}
//	report, err := pipeline.Run(ctx, "procurement.csv")
//
// # Data Flow
//
//	CSV/XLSX → Loader → Table → Cleaner → Imputer → Metrics → Aggregator → Report
//
// # Error Handling
//
// Only the loader fails on bad input. Unparseable dates become unknown and
// are counted in the run stats; a zero quantity leaves the defect rate
// undefined instead of producing NaN or Inf.
package dataprocessing
