package core

import "strings"

// ColumnType is the storage type inferred for a column.
type ColumnType string

const (
	// TypeUnset marks a column that has not seen a non-empty value yet.
	TypeUnset    ColumnType = ""
	TypeVarchar  ColumnType = "VARCHAR"
	TypeText     ColumnType = "TEXT"
	TypeInt      ColumnType = "INT"
	TypeBigInt   ColumnType = "BIGINT"
	TypeDecimal  ColumnType = "DECIMAL"
	TypeDateTime ColumnType = "DATETIME"
)

// VarcharLength is the width of VARCHAR columns; longer text becomes TEXT.
const VarcharLength = 255

// MaxInt is the upper bound of a signed 32-bit INT column.
const MaxInt = 2147483647

// SQL returns the MySQL column type. Unset columns fall back to VARCHAR.
func (t ColumnType) SQL() string {
	switch t {
	case TypeText:
		return "TEXT"
	case TypeInt:
		return "INT"
	case TypeBigInt:
		return "BIGINT"
	case TypeDecimal:
		return "DECIMAL(10, 2)"
	case TypeDateTime:
		return "DATETIME"
	default:
		return "VARCHAR(255)"
	}
}

// IsInteger reports whether t is INT or BIGINT.
func (t ColumnType) IsInteger() bool {
	return t == TypeInt || t == TypeBigInt
}

// IsTextual reports whether t is stored as character data.
func (t ColumnType) IsTextual() bool {
	return t == TypeVarchar || t == TypeText || t == TypeUnset
}

// HasPrefix is used by the promotion rules, which compare type families
// by prefix ("INT" matches INT but not BIGINT).
func (t ColumnType) HasPrefix(prefix ColumnType) bool {
	return strings.HasPrefix(string(t), string(prefix))
}

// ColumnProfile is the running inference state of one column.
type ColumnProfile struct {
	Name      string     `json:"name"`
	Type      ColumnType `json:"type"`
	MaxLength int        `json:"maxLength"`
}
