// Package reconcile drives drift detection over every table and applies
// or recommends the corrective statements.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tordrt/schemadrift/internal/drift"
	"github.com/tordrt/schemadrift/internal/schema"
)

// CatalogReader returns the raw information_schema rows of one table.
// A table that does not exist yields no rows.
type CatalogReader interface {
	FetchColumns(ctx context.Context, schemaName, tableName string) ([]map[string]any, error)
}

// Renderer turns specs into dialect-specific statements.
type Renderer interface {
	CreateTable(t schema.TableSpec) (string, error)
	AddColumn(table string, c schema.ColumnSpec) (string, error)
	ModifyColumn(table, column string, m *schema.ColumnModifySpec) (string, error)
}

// Executor runs a script of one or more ;-separated statements.
type Executor interface {
	Execute(ctx context.Context, script string) error
}

// TableState is the outcome of checking one table.
type TableState string

const (
	StateClean               TableState = "clean"
	StateTableMissing        TableState = "table-missing"
	StateHasColumnMismatches TableState = "has-column-mismatches"
)

// Finding is one detected drift and the statement that repairs it.
type Finding struct {
	Table     string
	Column    string
	Kind      drift.Kind
	Message   string
	Statement string
	Warnings  []string

	// AutoFixable is false when the classifier found the change unsafe.
	AutoFixable bool
	Applied     bool
}

// TableResult is the outcome for one table.
type TableResult struct {
	Table    string
	State    TableState
	Findings []Finding
	Err      error
}

// Report collects the results of one run in table order.
type Report struct {
	Schema string
	Tables []TableResult
}

// DriftDetected reports whether any table was not clean.
func (r *Report) DriftDetected() bool {
	for _, t := range r.Tables {
		if t.State != StateClean {
			return true
		}
	}
	return false
}

// Findings returns every finding of every table.
func (r *Report) Findings() []Finding {
	var all []Finding
	for _, t := range r.Tables {
		all = append(all, t.Findings...)
	}
	return all
}

// Reconciler compares table specs with one schema of a database.
type Reconciler struct {
	schema   string
	catalog  CatalogReader
	renderer Renderer
	executor Executor
	logger   *slog.Logger
}

// New creates a Reconciler. executor may be nil when auto-fix is never
// requested; a nil logger means slog.Default().
func New(schemaName string, catalog CatalogReader, renderer Renderer, executor Executor, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		schema:   schemaName,
		catalog:  catalog,
		renderer: renderer,
		executor: executor,
		logger:   logger,
	}
}

// Reconcile checks every table and reports whether any drift existed.
func (r *Reconciler) Reconcile(ctx context.Context, specs []schema.TableSpec, autoFix bool) (bool, error) {
	report, err := r.Run(ctx, specs, autoFix)
	return report.DriftDetected(), err
}

// Run checks tables one at a time in the given order. A catalog read
// error aborts the run. An execution error stops further repairs of its
// table, whose remaining findings are still reported; such errors are
// joined into the returned error.
func (r *Reconciler) Run(ctx context.Context, specs []schema.TableSpec, autoFix bool) (*Report, error) {
	report := &Report{Schema: r.schema}
	if autoFix && r.executor == nil {
		return report, errors.New("auto-fix requested without a statement executor")
	}

	var execErrs []error
	for _, spec := range specs {
		rows, err := r.catalog.FetchColumns(ctx, r.schema, spec.Name)
		if err != nil {
			return report, fmt.Errorf("failed to fetch columns of %s: %w", spec.Name, err)
		}
		observed, err := drift.ObservedFromRows(rows)
		if err != nil {
			return report, fmt.Errorf("failed to read columns of %s: %w", spec.Name, err)
		}

		result := r.checkTable(ctx, spec, observed, autoFix)
		if result.Err != nil {
			execErrs = append(execErrs, result.Err)
		}
		report.Tables = append(report.Tables, result)
	}

	return report, errors.Join(execErrs...)
}

func (r *Reconciler) checkTable(ctx context.Context, spec schema.TableSpec, observed []schema.ObservedColumn, autoFix bool) TableResult {
	result := TableResult{Table: spec.Name, State: StateClean}

	mismatches := drift.Detect(spec, observed)
	if len(mismatches) == 0 {
		r.logger.Debug("table is clean", "table", spec.Name)
		return result
	}

	if missing, ok := mismatches[0].(drift.TableNotExist); ok {
		result.State = StateTableMissing
		finding := Finding{Table: spec.Name, Kind: missing.Kind(), Message: missing.Message(), AutoFixable: true}
		finding.Statement, result.Err = r.renderer.CreateTable(missing.Table)
		if result.Err == nil {
			result.Err = r.recommendOrApply(ctx, &finding, autoFix)
		}
		result.Findings = append(result.Findings, finding)
		return result
	}

	result.State = StateHasColumnMismatches
	for _, m := range mismatches {
		var (
			finding Finding
			err     error
		)
		switch m := m.(type) {
		case drift.ColumnNotExist:
			finding = Finding{Table: spec.Name, Column: m.Column.Name, Kind: m.Kind(), Message: m.Message(), AutoFixable: true}
			finding.Statement, err = r.renderer.AddColumn(spec.Name, m.Column)
		case drift.ColumnSpecMismatch:
			modify := drift.Classify(m)
			finding = Finding{
				Table:       spec.Name,
				Column:      m.Expected.Name,
				Kind:        m.Kind(),
				Message:     m.Message(),
				Warnings:    modify.Warnings(),
				AutoFixable: modify.AutoFixEnabled(),
			}
			finding.Statement, err = r.renderer.ModifyColumn(spec.Name, m.Expected.Name, modify)
		default:
			continue
		}

		if err == nil {
			// Nothing runs after the first failure; later findings are
			// still logged and reported as recommendations.
			if finding.AutoFixable {
				err = r.recommendOrApply(ctx, &finding, autoFix && result.Err == nil)
			} else {
				r.logger.Warn(fmt.Sprintf("%s\nAuto-fix is not recommended due to:\n%s\nEnsure all values fit within the new constraints and try:\n%s",
					finding.Message, strings.Join(finding.Warnings, "\n"), finding.Statement),
					"table", finding.Table, "column", finding.Column)
			}
		}
		result.Findings = append(result.Findings, finding)
		if err != nil && result.Err == nil {
			result.Err = err
		}
	}

	return result
}

// recommendOrApply logs the finding with its statement and, when autoFix
// is set, executes the statement.
func (r *Reconciler) recommendOrApply(ctx context.Context, f *Finding, autoFix bool) error {
	r.logger.Info(fmt.Sprintf("%s\nRecommending fix with:\n%s", f.Message, f.Statement),
		"table", f.Table, "column", f.Column)
	if !autoFix {
		return nil
	}

	if err := r.executor.Execute(ctx, f.Statement); err != nil {
		r.logger.Error("auto-fix failed", "table", f.Table, "column", f.Column, "error", err)
		return &schema.ExecutionError{Table: f.Table, Statement: f.Statement, Err: err}
	}
	f.Applied = true

	switch f.Kind {
	case drift.KindTableNotExist:
		r.logger.Warn(fmt.Sprintf("Applying auto-fix: table `%s` created.", f.Table), "table", f.Table)
	case drift.KindColumnNotExist:
		r.logger.Warn(fmt.Sprintf("Applying auto-fix: column `%s` added in table `%s`.", f.Column, f.Table), "table", f.Table, "column", f.Column)
	default:
		r.logger.Warn(fmt.Sprintf("Applying auto-fix: column `%s` modified in table `%s`.", f.Column, f.Table), "table", f.Table, "column", f.Column)
	}
	return nil
}
