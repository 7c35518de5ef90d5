package observability

// Metric name prefixes
const (
	MetricPrefix = "cashgame"
)

// Metric names
const (
	// Ledger metrics
	BuyInsSubmittedTotal  = MetricPrefix + ".ledger.buy_ins_submitted_total"
	BuyInsResolvedTotal   = MetricPrefix + ".ledger.buy_ins_resolved_total"
	CashOutsRecordedTotal = MetricPrefix + ".ledger.cash_outs_recorded_total"
	AuditsTotal           = MetricPrefix + ".ledger.audits_total"
	SettlementsTotal      = MetricPrefix + ".ledger.settlements_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelStatus    = "status"
	LabelOutcome   = "outcome"
	LabelEventType = "event_type"
	LabelSource    = "source"
)

// Audit outcomes
const (
	AuditOutcomePassed   = "passed"
	AuditOutcomeMismatch = "mismatch"
)

// Settlement outcomes
const (
	SettlementOutcomeOK         = "ok"
	SettlementOutcomeUnbalanced = "unbalanced"
)
