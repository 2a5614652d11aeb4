package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// JSONStrings encodes a string slice for a jsonb column. nil becomes [].
func JSONStrings(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

// Strings decodes a jsonb string-array column, never returning nil.
func Strings(j datatypes.JSON) []string {
	var out []string
	if err := json.Unmarshal(j, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
