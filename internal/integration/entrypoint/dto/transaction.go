package dto

// BulkDeleteTransactionsResponse represents the result of a bulk transaction deletion.
type BulkDeleteTransactionsResponse struct {
	DeletedCount    int64 `json:"deleted_count"`
	RenumberedCount int   `json:"renumbered_count"`
}
