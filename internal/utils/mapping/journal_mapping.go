package mapping

import (
	"strings"

	"github.com/SscSPs/estate_ledger/internal/core/domain"
	"github.com/SscSPs/estate_ledger/internal/dto"
)

// ToPostJournalInput converts a manual journal request. Reference type defaults to MANUAL.
func ToPostJournalInput(req dto.PostJournalRequest) (domain.PostJournalInput, error) {
	entryDate, err := ParseDate("entryDate", req.EntryDate)
	if err != nil {
		return domain.PostJournalInput{}, err
	}
	refType := domain.RefManual
	if req.ReferenceType != "" {
		refType = domain.ReferenceType(strings.ToUpper(req.ReferenceType))
	}
	lines := make([]domain.JournalLineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.JournalLineInput{
			AccountID:   l.AccountID,
			LineType:    domain.LineType(strings.ToUpper(l.LineType)),
			Amount:      l.Amount,
			Description: l.Description,
		}
	}
	return domain.PostJournalInput{
		EntryDate:     entryDate,
		Description:   req.Description,
		ReferenceType: refType,
		ReferenceID:   req.ReferenceID,
		Lines:         lines,
	}, nil
}

// ToJournalListParams converts list query parameters.
func ToJournalListParams(p dto.ListJournalEntriesParams) (domain.JournalListParams, error) {
	from, err := ParseOptionalDate("from", p.From)
	if err != nil {
		return domain.JournalListParams{}, err
	}
	to, err := ParseOptionalDate("to", p.To)
	if err != nil {
		return domain.JournalListParams{}, err
	}
	params := domain.JournalListParams{From: from, To: to, Limit: p.Limit}
	if p.ReferenceType != "" {
		rt := domain.ReferenceType(p.ReferenceType)
		params.ReferenceType = &rt
	}
	if p.Status != "" {
		st := domain.JournalStatus(p.Status)
		params.Status = &st
	}
	if p.NextToken != "" {
		token := p.NextToken
		params.NextToken = &token
	}
	return params, nil
}
