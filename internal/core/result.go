package core

// ValidationError records why a record was rejected.
// RowIndex is 1-based over the full input.
type ValidationError struct {
	RowIndex int        `json:"rowIndex"`
	Record   FlatRecord `json:"record"`
	Reasons  []string   `json:"reasons"`
}
