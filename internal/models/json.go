package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/estatery/listings/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList stores a []string as a JSON column. Used for listing images,
// amenities and features.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	return string(b), err
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (StringList) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db)
}

// UnmarshalJSON accepts either a JSON array or a lone string. Clients
// sometimes send a single amenity or image URL without wrapping it.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var flex types.FlexList[string]
	if err := flex.UnmarshalJSON(data); err != nil {
		return err
	}
	*s = StringList(flex.Slice())
	return nil
}

// Contains reports whether the list holds the exact value.
func (s StringList) Contains(v string) bool {
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every value is present (subset semantics).
func (s StringList) ContainsAll(values []string) bool {
	for _, v := range values {
		if !s.Contains(v) {
			return false
		}
	}
	return true
}

// RefreshTokenList stores a user's active refresh tokens as a JSON column.
// datatypes.JSONSlice supplies the Valuer/Scanner plumbing and per-dialect
// column types.
type RefreshTokenList = datatypes.JSONSlice[RefreshToken]

func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported JSON column source type %T", value)
	}
}

func jsonDBDataType(db *gorm.DB) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
