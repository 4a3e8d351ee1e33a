package logstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const DialectBigQuery = "BigQuery Standard SQL"

// ErrCostLimit is returned when a dry run estimates more bytes than allowed.
var ErrCostLimit = errors.New("query cost limit exceeded")

// CostGuard caps and records bytes scanned per query.
type CostGuard interface {
	CheckLimits(totalBytesProcessed int64) (bool, string)
	LogQueryCost(sql string, totalBytesProcessed int64, durationMs int64)
}

// BigQueryExecutor runs log queries against a BigQuery dataset that holds
// the three log tables.
type BigQueryExecutor struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	location  string
	timeout   time.Duration
	guard     CostGuard
}

// NewBigQueryExecutor creates a client for projectID. Unqualified table
// names in generated SQL resolve against datasetID.
func NewBigQueryExecutor(ctx context.Context, projectID, datasetID, credentialsFile, location string, timeout time.Duration, guard CostGuard) (*BigQueryExecutor, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	if location != "" {
		client.Location = location
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &BigQueryExecutor{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		location:  location,
		timeout:   timeout,
		guard:     guard,
	}, nil
}

func (e *BigQueryExecutor) Dialect() string { return DialectBigQuery }

func (e *BigQueryExecutor) Close() error {
	return e.client.Close()
}

// Ping runs SELECT 1.
func (e *BigQueryExecutor) Ping(ctx context.Context) error {
	job, err := e.client.Query("SELECT 1").Run(ctx)
	if err != nil {
		return fmt.Errorf("query run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("job wait: %w", err)
	}
	return status.Err()
}

func (e *BigQueryExecutor) newQuery(q SQLQuery) *bigquery.Query {
	query := e.client.Query(string(q))
	query.DefaultProjectID = e.projectID
	query.DefaultDatasetID = e.datasetID
	return query
}

// estimate dry-runs q and returns the bytes it would scan.
func (e *BigQueryExecutor) estimate(ctx context.Context, q SQLQuery) (int64, error) {
	query := e.newQuery(q)
	query.DryRun = true
	job, err := query.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("dry run: %w", err)
	}
	stats := job.LastStatus().Statistics
	if stats == nil {
		return 0, nil
	}
	return stats.TotalBytesProcessed, nil
}

// Execute dry-runs q against the cost guard, then runs it and reads every row.
func (e *BigQueryExecutor) Execute(ctx context.Context, q SQLQuery) (*ResultSet, error) {
	qCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if e.guard != nil {
		bytes, err := e.estimate(qCtx, q)
		if err != nil {
			return nil, fmt.Errorf("execute query: %w", err)
		}
		if ok, msg := e.guard.CheckLimits(bytes); !ok {
			return nil, fmt.Errorf("%w: %s", ErrCostLimit, msg)
		}
	}

	start := time.Now()
	job, err := e.newQuery(q).Run(qCtx)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	status, err := job.Wait(qCtx)
	if err != nil {
		return nil, fmt.Errorf("job wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	it, err := job.Read(qCtx)
	if err != nil {
		return nil, fmt.Errorf("job read: %w", err)
	}

	rs := &ResultSet{Rows: [][]any{}}
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		vals := make([]any, len(row))
		for i, v := range row {
			vals[i] = normalizeValue(v)
		}
		rs.Rows = append(rs.Rows, vals)
	}
	cols := make([]string, len(it.Schema))
	for i, f := range it.Schema {
		cols[i] = f.Name
	}
	rs.Columns = UniqueColumns(cols)
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}

	execMs := time.Since(start).Milliseconds()
	if e.guard != nil {
		var processed int64
		if stats := job.LastStatus().Statistics; stats != nil {
			processed = stats.TotalBytesProcessed
		}
		e.guard.LogQueryCost(string(q), processed, execMs)
	}

	log.Debug().
		Str("job_id", job.ID()).
		Int("rows", len(rs.Rows)).
		Int64("execution_time_ms", execMs).
		Msg("bigquery query executed")
	return rs, nil
}
