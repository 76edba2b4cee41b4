package memory

import (
	"context"
	"sort"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
)

var _ portsrepo.BankStatementRepository = (*Store)(nil)

func (s *Store) SaveStatement(ctx context.Context, statement domain.BankStatement) error {
	defer s.lock(ctx)()
	if _, ok := s.statements[statement.StatementID]; ok {
		return apperrors.ErrDuplicate
	}
	statement.Entries = nil
	s.statements[statement.StatementID] = statement
	return nil
}

func (s *Store) UpdateStatement(ctx context.Context, statement domain.BankStatement) error {
	defer s.lock(ctx)()
	if _, ok := s.statements[statement.StatementID]; !ok {
		return apperrors.ErrNotFound
	}
	statement.Entries = nil
	s.statements[statement.StatementID] = statement
	return nil
}

func (s *Store) FindStatementByID(ctx context.Context, statementID string) (*domain.BankStatement, error) {
	defer s.lock(ctx)()
	st, ok := s.statements[statementID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	st.Entries = []domain.BankStatementEntry{}
	for _, e := range s.statementEntries {
		if e.StatementID == statementID {
			st.Entries = append(st.Entries, e)
		}
	}
	sort.Slice(st.Entries, func(i, j int) bool { return st.Entries[i].Sequence < st.Entries[j].Sequence })
	return &st, nil
}

// ListStatements returns statements newest first, without entries.
func (s *Store) ListStatements(ctx context.Context, limit, offset int) ([]domain.BankStatement, error) {
	defer s.lock(ctx)()
	out := make([]domain.BankStatement, 0, len(s.statements))
	for _, st := range s.statements {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StatementDate.Equal(out[j].StatementDate) {
			return out[i].StatementDate.After(out[j].StatementDate)
		}
		return out[i].StatementID > out[j].StatementID
	})
	if offset >= len(out) {
		return []domain.BankStatement{}, nil
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) SaveStatementEntry(ctx context.Context, entry domain.BankStatementEntry) error {
	defer s.lock(ctx)()
	if _, ok := s.statements[entry.StatementID]; !ok {
		return apperrors.ErrNotFound
	}
	if _, ok := s.statementEntries[entry.EntryID]; ok {
		return apperrors.ErrDuplicate
	}
	s.statementEntries[entry.EntryID] = entry
	return nil
}

func (s *Store) UpdateStatementEntry(ctx context.Context, entry domain.BankStatementEntry) error {
	defer s.lock(ctx)()
	if _, ok := s.statementEntries[entry.EntryID]; !ok {
		return apperrors.ErrNotFound
	}
	s.statementEntries[entry.EntryID] = entry
	return nil
}

func (s *Store) FindStatementEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.BankStatementEntry, error) {
	defer s.lock(ctx)()
	e, ok := s.statementEntries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}
