package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies a backend record. The backend emits numeric ids while older
// endpoints emit strings, so both JSON forms decode into the same value.
type ID string

// String returns the id as a path segment
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts a JSON string, a JSON number or null
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*id = ID(strconv.FormatInt(i, 10))
		return nil
	}
	*id = ID(n.String())
	return nil
}
