package mapping

import (
	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ToStatementMeta converts the statement header.
func ToStatementMeta(req dto.StatementMetaRequest) (domain.StatementMeta, error) {
	date, err := ParseDate("statementDate", req.StatementDate)
	if err != nil {
		return domain.StatementMeta{}, err
	}
	return domain.StatementMeta{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		StatementDate: date,
	}, nil
}

// ToRawStatementEntries converts JSON statement lines.
func ToRawStatementEntries(entries []dto.StatementEntryRequest) ([]domain.RawStatementEntry, error) {
	raw := make([]domain.RawStatementEntry, len(entries))
	for i, e := range entries {
		date, err := ParseDate("entries.date", e.Date)
		if err != nil {
			return nil, err
		}
		raw[i] = domain.RawStatementEntry{
			Date:        date,
			Description: e.Description,
			Reference:   e.Reference,
			Amount:      e.Amount,
		}
	}
	return raw, nil
}
