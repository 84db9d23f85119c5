package retention

const (
	CategoryConversations = "conversations"
	CategoryAudit         = "audit"
	CategoryAccessLogs    = "access_logs"
	CategoryExports       = "exports"
	CategoryJobRuns       = "job_runs"
	CategoryConsents      = "consents"
)

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusDryRun    = "dry_run"
)

// bounds is the legal envelope per category: audit trails have a statutory
// floor, ephemeral categories a ceiling. Zero means unbounded on that side.
type bounds struct {
	floor   int
	ceiling int
}

var legalBounds = map[string]bounds{
	CategoryConversations: {ceiling: 730},
	CategoryAudit:         {floor: 365, ceiling: 3650},
	CategoryAccessLogs:    {ceiling: 180},
	CategoryExports:       {ceiling: 30},
	CategoryJobRuns:       {ceiling: 90},
}

// Consent rows are evidentiary and may never be configured for automatic
// deletion; explicit erasure flows live outside this system.
var forbiddenCategories = map[string]bool{
	CategoryConsents: true,
}

// Categories lists the purgeable categories in a stable order.
func Categories() []string {
	return []string{
		CategoryConversations,
		CategoryAudit,
		CategoryAccessLogs,
		CategoryExports,
		CategoryJobRuns,
	}
}
