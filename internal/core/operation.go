package core

// OperationKind is used to identify what kind of operation is being performed by migration.
type OperationKind string

const (
	OperationSQL  OperationKind = "SQL"
	OperationNote OperationKind = "NOTE"
)

// OperationRisk is used to identify the risk level of an operation.
type OperationRisk string

const (
	RiskInfo        OperationRisk = "INFO"
	RiskDestructive OperationRisk = "DESTRUCTIVE"
)

// Operation is a single step of a migration: a SQL statement to run, or an
// informational note produced while synthesizing the schema.
type Operation struct {
	Kind OperationKind `json:"kind"`
	SQL  string        `json:"sql,omitempty"`
	Risk OperationRisk `json:"risk,omitempty"`
}
