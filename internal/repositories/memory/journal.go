package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/estate_ledger/internal/utils/pagination"
)

var (
	_ portsrepo.JournalRepositoryFacade = (*Store)(nil)
	_ portsrepo.SequenceRepository      = (*Store)(nil)
)

func (s *Store) withLines(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalEntryLine(nil), s.journalLines[e.JournalEntryID]...)
	return e
}

func (s *Store) FindJournalEntryByID(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	e, ok := s.journalEntries[journalEntryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e = s.withLines(e)
	return &e, nil
}

func (s *Store) FindJournalEntryByIDForUpdate(ctx context.Context, journalEntryID string) (*domain.JournalEntry, error) {
	return s.FindJournalEntryByID(ctx, journalEntryID)
}

func (s *Store) FindPostedEntryByReference(ctx context.Context, refType domain.ReferenceType, referenceID string) (*domain.JournalEntry, error) {
	defer s.lock(ctx)()
	for _, e := range s.journalEntries {
		if e.ReferenceType == refType && e.Status == domain.Posted &&
			e.ReferenceID != nil && *e.ReferenceID == referenceID {
			e = s.withLines(e)
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) ListJournalEntries(ctx context.Context, params domain.JournalListParams) ([]domain.JournalEntry, *string, error) {
	defer s.lock(ctx)()

	var cursor *pagination.Cursor
	if params.NextToken != nil {
		c, err := pagination.DecodeToken(*params.NextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	matches := make([]domain.JournalEntry, 0)
	for _, e := range s.journalEntries {
		if params.From != nil && e.EntryDate.Before(domain.DateOnly(*params.From)) {
			continue
		}
		if params.To != nil && e.EntryDate.After(domain.DateOnly(*params.To)) {
			continue
		}
		if params.ReferenceType != nil && e.ReferenceType != *params.ReferenceType {
			continue
		}
		if params.Status != nil && e.Status != *params.Status {
			continue
		}
		if cursor != nil && !cursor.After(e.EntryDate, e.CreatedAt, e.JournalEntryID) {
			continue
		}
		matches = append(matches, e)
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.After(b.EntryDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.JournalEntryID > b.JournalEntryID
	})

	limit := pagination.NormalizeLimit(params.Limit)
	var next *string
	if len(matches) > limit {
		matches = matches[:limit]
		last := matches[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.EntryDate, CreatedAt: last.CreatedAt, ID: last.JournalEntryID})
		next = &token
	}
	for i := range matches {
		matches[i] = s.withLines(matches[i])
	}
	return matches, next, nil
}

func (s *Store) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	defer s.lock(ctx)()
	if _, ok := s.journalEntries[entry.JournalEntryID]; ok {
		return apperrors.ErrDuplicate
	}
	for _, e := range s.journalEntries {
		if e.EntryNumber == entry.EntryNumber {
			return apperrors.ErrDuplicate
		}
	}
	lines := append([]domain.JournalEntryLine(nil), entry.Lines...)
	entry.Lines = nil
	s.journalEntries[entry.JournalEntryID] = entry
	s.journalLines[entry.JournalEntryID] = lines
	return nil
}

func (s *Store) MarkJournalEntryVoid(ctx context.Context, journalEntryID string, userID string, now time.Time) error {
	defer s.lock(ctx)()
	e, ok := s.journalEntries[journalEntryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if e.Status == domain.Void {
		return apperrors.ErrAlreadyVoid
	}
	e.Status = domain.Void
	e.VoidedAt = &now
	e.VoidedBy = &userID
	e.Touch(userID, now)
	s.journalEntries[journalEntryID] = e
	return nil
}

// NextValue increments and returns the counter for key, starting at 1.
func (s *Store) NextValue(ctx context.Context, key string) (int64, error) {
	defer s.lock(ctx)()
	s.sequences[key]++
	return s.sequences[key], nil
}
