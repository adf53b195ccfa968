package entity

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InstallmentScope selects which rows of a group a mutation touches.
type InstallmentScope uint8

const (
	scopeUnknown InstallmentScope = iota
	// ScopeSingle touches only the targeted row.
	ScopeSingle
	// ScopeRemaining touches the targeted row and every later installment.
	ScopeRemaining
	// ScopeAll touches every row of the group.
	ScopeAll
)

// String returns the wire name of the scope.
func (s InstallmentScope) String() string {
	switch s {
	case ScopeSingle:
		return "single"
	case ScopeRemaining:
		return "remaining"
	case ScopeAll:
		return "all"
	default:
		return "unknown"
	}
}

// IsValid reports whether s is one of the three defined scopes.
func (s InstallmentScope) IsValid() bool {
	return s == ScopeSingle || s == ScopeRemaining || s == ScopeAll
}

// ParseInstallmentScope converts a wire name into a scope.
func ParseInstallmentScope(s string) (InstallmentScope, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single":
		return ScopeSingle, true
	case "remaining":
		return ScopeRemaining, true
	case "all":
		return ScopeAll, true
	default:
		return scopeUnknown, false
	}
}

// InstallmentPatch carries the fields a scoped update may change. Nil means unchanged.
type InstallmentPatch struct {
	Description   *string
	Amount        *decimal.Decimal
	Type          *TransactionType
	CategoryID    *uuid.UUID
	ClearCategory bool
	AccountID     *uuid.UUID
	ClearAccount  bool
	Notes         *string
	Date          *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p InstallmentPatch) IsEmpty() bool {
	return p.Description == nil && p.Amount == nil && p.Type == nil &&
		p.CategoryID == nil && !p.ClearCategory &&
		p.AccountID == nil && !p.ClearAccount &&
		p.Notes == nil && p.Date == nil
}

// ApplyUniform copies the fields that are identical across rows onto t.
// Amount and Date are excluded because they are computed per row.
func (p InstallmentPatch) ApplyUniform(t *Transaction) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.ClearCategory {
		t.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		t.CategoryID = &id
	}
	if p.ClearAccount {
		t.AccountID = nil
	} else if p.AccountID != nil {
		id := *p.AccountID
		t.AccountID = &id
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}

// InstallmentGroup is the set of live rows sharing a group id, ordered by number.
type InstallmentGroup struct {
	GroupID     uuid.UUID
	DashboardID uuid.UUID
	Rows        []*Transaction
}

// NewInstallmentGroup builds a group view over rows, sorted by installment number.
func NewInstallmentGroup(groupID, dashboardID uuid.UUID, rows []*Transaction) *InstallmentGroup {
	sorted := make([]*Transaction, len(rows))
	copy(sorted, rows)
	SortInstallments(sorted)
	return &InstallmentGroup{GroupID: groupID, DashboardID: dashboardID, Rows: sorted}
}

// Total returns the sum of the group's amounts.
func (g *InstallmentGroup) Total() decimal.Decimal {
	total := decimal.Zero
	for _, row := range g.Rows {
		total = total.Add(row.Amount)
	}
	return total
}

// IndexOf returns the position of the row with id, or -1.
func (g *InstallmentGroup) IndexOf(id uuid.UUID) int {
	for i, row := range g.Rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// SortInstallments orders rows by installment number.
func SortInstallments(rows []*Transaction) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Number() < rows[j].Number()
	})
}

// VerifyInstallmentGroup checks that rows form a consistent group: numbers run
// 1..N without gaps, every row reports N as its total, and dates strictly increase.
// An empty slice is a fully deleted group and is valid.
func VerifyInstallmentGroup(rows []*Transaction) error {
	if len(rows) == 0 {
		return nil
	}

	sorted := make([]*Transaction, len(rows))
	copy(sorted, rows)
	SortInstallments(sorted)

	groupID := sorted[0].GroupID
	n := len(sorted)

	for i, row := range sorted {
		if row.GroupID == nil || groupID == nil || *row.GroupID != *groupID {
			return fmt.Errorf("row %s does not belong to group", row.ID)
		}
		if row.InstallmentNumber == nil || *row.InstallmentNumber != i+1 {
			return fmt.Errorf("installment sequence has a gap at position %d (found %d)", i+1, row.Number())
		}
		if row.InstallmentTotal == nil || *row.InstallmentTotal != n {
			got := 0
			if row.InstallmentTotal != nil {
				got = *row.InstallmentTotal
			}
			return fmt.Errorf("installment %d reports total %d, group has %d rows", i+1, got, n)
		}
		if i > 0 && !row.Date.After(sorted[i-1].Date) {
			return fmt.Errorf("installment %d date %s is not after installment %d",
				i+1, row.Date.Format("2006-01-02"), i)
		}
	}
	return nil
}
