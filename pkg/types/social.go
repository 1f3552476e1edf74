package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Social holds a club's outward links. Persisted as a single JSONB column.
type Social struct {
	Website    *string  `json:"website,omitempty"`
	Instagram  *string  `json:"instagram,omitempty"`
	Facebook   *string  `json:"facebook,omitempty"`
	YouTube    *string  `json:"youtube,omitempty"`
	Twitter    *string  `json:"twitter,omitempty"`
	LinkedIn   *string  `json:"linkedin,omitempty"`
	Discord    *string  `json:"discord,omitempty"`
	WhatsApp   *string  `json:"whatsapp,omitempty"`
	OtherLinks []string `json:"other_links,omitempty"`
}

func (s Social) Value() (driver.Value, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("social: marshal: %w", err)
	}
	return string(raw), nil
}

func (s *Social) Scan(value interface{}) error {
	if value == nil {
		*s = Social{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("social: unsupported scan type %T", value)
	}
}
