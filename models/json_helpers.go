package models

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// ConvertToJSON marshals data into a gorm datatypes.JSON column value.
func ConvertToJSON(data interface{}) (datatypes.JSON, error) {
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes), nil
}
