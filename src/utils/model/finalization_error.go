package model

const TableFinalizationErrors = "finalization_errors"

// Durable record of a failed terminal write, triaged manually through the
// admin surface. Never deleted by this service.
type FinalizationError struct {
	Id string `gorm:"primaryKey" json:"id"`

	MarketId     string `gorm:"index" json:"market_id"`
	ErrorMessage string `json:"error_message"`
	Attempts     int    `json:"attempts"`

	CreatedAt int64 `json:"created_at"`

	// Filled in by the triage collaborator
	ResolvedAt      *int64 `json:"resolved_at"`
	ResolutionNotes string `json:"resolution_notes"`
}

func (FinalizationError) TableName() string {
	return TableFinalizationErrors
}
