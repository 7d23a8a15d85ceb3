package schema

import (
	"encoding/json"
	"fmt"
)

// Decode copies validated args into dst, a pointer to the request struct,
// through their JSON form. Unknown arguments are ignored.
func Decode(args map[string]any, dst any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("encode arguments: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}
