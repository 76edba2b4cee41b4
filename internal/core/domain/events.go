package domain

import "time"

// EventType names a ledger event published after commit.
type EventType string

const (
	EventJournalPosted       EventType = "journal.posted"
	EventJournalVoided       EventType = "journal.voided"
	EventBillGenerated       EventType = "bill.generated"
	EventBillVoided          EventType = "bill.voided"
	EventPaymentApplied      EventType = "payment.applied"
	EventStatementReconciled EventType = "statement.reconciled"
	EventBudgetConsumed      EventType = "budget.consumed"
)

// LedgerEvent is the envelope handed to the EventPublisher.
type LedgerEvent struct {
	Type        EventType `json:"type"`
	AggregateID string    `json:"aggregateID"`
	OccurredAt  time.Time `json:"occurredAt"`
	Payload     any       `json:"payload"`
}
