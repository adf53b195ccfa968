package recurrence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/finance-tracker/ledger/internal/application/adapter"
	"github.com/finance-tracker/ledger/internal/application/usecase/installment"
	"github.com/finance-tracker/ledger/internal/domain/entity"
	domainerror "github.com/finance-tracker/ledger/internal/domain/error"
	"github.com/finance-tracker/ledger/internal/domain/valueobject"
)

// ProcessorSettings tunes a processing run.
type ProcessorSettings struct {
	// Workers bounds how many dashboards are processed concurrently.
	Workers int
	// MaxCatchUp bounds the occurrences one definition posts per run. Zero means unbounded.
	MaxCatchUp int
}

// ProcessDueInput represents the input for a processing run.
type ProcessDueInput struct {
	// Now overrides the clock. It may not be later than the clock.
	Now *time.Time
	// DashboardID restricts the run to one dashboard.
	DashboardID *uuid.UUID
	// RequestedBy is set for manual triggers and must hold an admin role on DashboardID.
	RequestedBy *uuid.UUID
}

// DefinitionOutcome reports what a run did with one definition.
type DefinitionOutcome struct {
	RecurrenceID uuid.UUID
	DashboardID  uuid.UUID
	Created      int
	Skipped      int
	NextDueDate  time.Time
	Deactivated  bool
	Err          error
}

// ProcessDueOutput represents the output of a processing run.
type ProcessDueOutput struct {
	Created  []*installment.TransactionOutput
	Advanced int
	Failed   int
	Outcomes []DefinitionOutcome
}

// ProcessDueUseCase materialises the due occurrences of every active definition.
type ProcessDueUseCase struct {
	recurrenceRepo adapter.RecurrenceRepository
	permissions    adapter.PermissionGate
	locks          DefinitionLocks
	clock          adapter.Clock
	metrics        adapter.Metrics
	settings       ProcessorSettings
}

// NewProcessDueUseCase creates a new ProcessDueUseCase instance.
func NewProcessDueUseCase(
	recurrenceRepo adapter.RecurrenceRepository,
	permissions adapter.PermissionGate,
	locks DefinitionLocks,
	clock adapter.Clock,
	metrics adapter.Metrics,
	settings ProcessorSettings,
) *ProcessDueUseCase {
	if settings.Workers < 1 {
		settings.Workers = 1
	}
	return &ProcessDueUseCase{
		recurrenceRepo: recurrenceRepo,
		permissions:    permissions,
		locks:          locks,
		clock:          clock,
		metrics:        metrics,
		settings:       settings,
	}
}

// Execute runs one pass over the due definitions. A failing definition is
// reported in its outcome and never stops the others. Cancellation is
// honoured between definitions and the partial output is returned with ctx's error.
func (uc *ProcessDueUseCase) Execute(ctx context.Context, input ProcessDueInput) (*ProcessDueOutput, error) {
	now := uc.clock.Now().UTC()
	if input.Now != nil {
		if valueobject.Today(*input.Now).After(valueobject.Today(now)) {
			return nil, domainerror.NewRecurrenceError(
				domainerror.ErrCodeFutureProcessingDate,
				"processing date must not be in the future",
				domainerror.ErrFutureProcessingDate,
			)
		}
		now = input.Now.UTC()
	}
	today := valueobject.Today(now)

	if input.RequestedBy != nil {
		if input.DashboardID == nil {
			return nil, errors.New("manual processing requires a dashboard")
		}
		if err := uc.permissions.CheckPermission(ctx, *input.RequestedBy, *input.DashboardID, entity.AdminRoles...); err != nil {
			return nil, err
		}
	}

	started := time.Now()
	filter := adapter.DueFilter{Today: today, DashboardID: input.DashboardID}

	exhausted, err := uc.recurrenceRepo.FindExhausted(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find exhausted recurrences: %w", err)
	}
	due, err := uc.recurrenceRepo.FindDue(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find due recurrences: %w", err)
	}

	batches := groupByDashboard(append(exhausted, due...))
	results := make([][]DefinitionOutcome, len(batches))
	created := make([][]*entity.Transaction, len(batches))

	var g errgroup.Group
	g.SetLimit(uc.settings.Workers)
	for i, batch := range batches {
		i, batch := i, batch
		g.Go(func() error {
			for _, definition := range batch {
				if ctx.Err() != nil {
					return nil
				}
				outcome, rows := uc.processDefinition(ctx, definition, today, now)
				results[i] = append(results[i], outcome)
				created[i] = append(created[i], rows...)
			}
			return nil
		})
	}
	_ = g.Wait()

	output := &ProcessDueOutput{
		Created:  []*installment.TransactionOutput{},
		Outcomes: []DefinitionOutcome{},
	}
	for i := range batches {
		for _, outcome := range results[i] {
			if outcome.Err != nil {
				output.Failed++
			} else if outcome.Created > 0 || outcome.Deactivated {
				output.Advanced++
			}
			output.Outcomes = append(output.Outcomes, outcome)
		}
		output.Created = append(output.Created, installment.ToTransactionOutputs(created[i])...)
	}

	uc.metrics.ObserveRun(time.Since(started), len(output.Outcomes))
	uc.metrics.AddGenerated(len(output.Created))

	slog.Info("Due-transaction run finished",
		"today", today.Format(valueobject.DateLayout),
		"definitions", len(output.Outcomes),
		"created", len(output.Created),
		"advanced", output.Advanced,
		"failed", output.Failed,
		"duration", time.Since(started),
	)

	if err := ctx.Err(); err != nil {
		return output, err
	}
	return output, nil
}

// processDefinition runs the unit of work for one definition, retrying when
// another worker moved the cursor first.
func (uc *ProcessDueUseCase) processDefinition(
	ctx context.Context,
	definition *entity.RecurrenceDefinition,
	today, now time.Time,
) (DefinitionOutcome, []*entity.Transaction) {
	logger := slog.With("recurrence_id", definition.ID, "dashboard_id", definition.DashboardID)
	outcome := DefinitionOutcome{
		RecurrenceID: definition.ID,
		DashboardID:  definition.DashboardID,
		NextDueDate:  definition.NextDueDate,
	}

	var created []*entity.Transaction
	operation := func() error {
		err := uc.locks.With(ctx, definition.ID, func() error {
			result, err := uc.commitDue(ctx, definition.ID, definition.DashboardID, today, now)
			if err != nil {
				return err
			}
			if result != nil {
				created = result.created
				outcome.Created = len(result.created)
				outcome.Skipped = result.skipped
				outcome.NextDueDate = result.nextDue
				outcome.Deactivated = result.deactivated
			}
			return nil
		})
		if err != nil && !errors.Is(err, domainerror.ErrCursorMoved) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := adapter.RetryPolicy(uc.locks.MaxRetries, uc.locks.RetryInterval)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		outcome.Err = err
		uc.metrics.IncDefinitionFailure(domainerror.KindOf(err).String())
		logger.Error("Recurrence processing failed", "error", err)
		return outcome, nil
	}

	if outcome.Created > 0 || outcome.Deactivated {
		logger.Info("Recurrence advanced",
			"created", outcome.Created,
			"skipped", outcome.Skipped,
			"next_due_date", outcome.NextDueDate.Format(valueobject.DateLayout),
			"deactivated", outcome.Deactivated,
		)
	}
	return outcome, created
}

type commitResult struct {
	created     []*entity.Transaction
	skipped     int
	nextDue     time.Time
	deactivated bool
}

// commitDue re-reads the definition under its lock and posts every occurrence up to today.
// A definition deleted or paused since selection yields a nil result.
func (uc *ProcessDueUseCase) commitDue(
	ctx context.Context,
	id, dashboardID uuid.UUID,
	today, now time.Time,
) (*commitResult, error) {
	current, err := uc.recurrenceRepo.FindByID(ctx, id, dashboardID)
	if err != nil {
		if errors.Is(err, domainerror.ErrRecurrenceNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to reload recurrence: %w", err)
	}
	if !current.IsActive {
		return nil, nil
	}

	if err := uc.permissions.CheckPermission(ctx, current.UserID, current.DashboardID, entity.MutatingRoles...); err != nil {
		return nil, err
	}

	expected := current.NextDueDate
	next := expected
	var rows []*entity.Transaction
	occurrences := 0
	for !next.After(today) && current.WithinSchedule(next) {
		if uc.settings.MaxCatchUp > 0 && occurrences >= uc.settings.MaxCatchUp {
			break
		}
		materialised, err := materialise(current, next)
		if err != nil {
			return nil, err
		}
		rows = append(rows, materialised...)
		occurrences++

		next, err = valueobject.NextAnchored(current.Frequency, current.Interval, current.StartDate, next)
		if err != nil {
			return nil, domainerror.NewRecurrenceError(
				domainerror.ErrCodeInvalidFrequency,
				err.Error(),
				domainerror.ErrInvalidFrequency,
			)
		}
	}

	if occurrences == 0 && !current.IsExhausted() {
		return nil, nil
	}

	current.NextDueDate = next
	if occurrences > 0 {
		generatedAt := now.UTC()
		current.LastGeneratedAt = &generatedAt
	}
	if current.IsExhausted() {
		current.Deactivate(now)
	}

	// The commit must finish once started, even if the run is being cancelled.
	result, err := uc.recurrenceRepo.CommitOccurrences(context.WithoutCancel(ctx), adapter.OccurrenceCommit{
		Definition:          current,
		ExpectedNextDueDate: expected,
		Transactions:        rows,
	})
	if err != nil {
		return nil, err
	}

	return &commitResult{
		created:     result.Created,
		skipped:     result.Skipped,
		nextDue:     current.NextDueDate,
		deactivated: !current.IsActive,
	}, nil
}

// materialise turns the template into the rows of the occurrence at date.
//
// Occurrence dates never pass the run's as-of date. A split template is the one
// exception for row dates: its occurrence becomes an installment group whose
// first row falls on the occurrence date and whose later rows fall on the
// following months, so they can be dated after the as-of date.
func materialise(d *entity.RecurrenceDefinition, date time.Time) ([]*entity.Transaction, error) {
	occurrence := valueobject.NormalizeDate(date)
	recurrenceID := d.ID

	if d.IsSplit() {
		return installment.Plan(installment.PlanInput{
			DashboardID:    d.DashboardID,
			UserID:         d.UserID,
			Description:    d.Description,
			Total:          d.Amount,
			Type:           d.Type,
			CategoryID:     d.CategoryID,
			AccountID:      d.AccountID,
			Notes:          d.Notes,
			FirstDate:      occurrence,
			Count:          *d.InstallmentCount,
			Step:           valueobject.MonthlyStep,
			RecurrenceID:   &recurrenceID,
			OccurrenceDate: &occurrence,
		})
	}

	row := entity.NewTransaction(
		d.DashboardID,
		d.UserID,
		occurrence,
		d.Description,
		d.Amount,
		d.Type,
		d.CategoryID,
		d.AccountID,
		d.Notes,
	)
	row.RecurrenceID = &recurrenceID
	row.OccurrenceDate = &occurrence
	return []*entity.Transaction{row}, nil
}

// groupByDashboard splits definitions into per-dashboard batches, keeping first-seen order.
func groupByDashboard(definitions []*entity.RecurrenceDefinition) [][]*entity.RecurrenceDefinition {
	index := make(map[uuid.UUID]int)
	var batches [][]*entity.RecurrenceDefinition
	for _, d := range definitions {
		i, ok := index[d.DashboardID]
		if !ok {
			i = len(batches)
			index[d.DashboardID] = i
			batches = append(batches, nil)
		}
		batches[i] = append(batches[i], d)
	}
	return batches
}
