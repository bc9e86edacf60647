package apiclient

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/smartsales365/admin-console/internal/errors"
)

// FieldErrors flattens a backend validation payload such as
// {"email": ["already taken"]} into one message per field. It returns nil
// when err carries no such payload.
func FieldErrors(err error) map[string]string {
	var apiErr *apperrors.APIError
	if !apperrors.As(err, &apiErr) || len(apiErr.Body) == 0 {
		return nil
	}

	var payload map[string]any
	if json.Unmarshal(apiErr.Body, &payload) != nil {
		return nil
	}

	fields := make(map[string]string, len(payload))
	for key, value := range payload {
		switch v := value.(type) {
		case string:
			fields[key] = v
		case []any:
			if len(v) > 0 {
				fields[key] = fmt.Sprint(v[0])
			}
		default:
			fields[key] = fmt.Sprint(v)
		}
	}
	return fields
}
