package cli

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// parseLogFilterArgs turns `logs` arguments into query params.
//
// Supported flags, as --flag value or --flag=value:
// - --category <name>
// - --severity <level>
// - --since <duration|RFC3339>   e.g. 30m or 2026-01-01T00:00:00Z
// - --until <RFC3339>
// - --limit <n>
//
// A bare trailing number is shorthand for --limit.
func parseLogFilterArgs(args []string, now time.Time) (url.Values, error) {
	values := url.Values{}

	if len(args) > 0 {
		if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
			if n <= 0 {
				return nil, fmt.Errorf("invalid limit: %d", n)
			}
			values.Set("limit", strconv.Itoa(n))
			args = args[:len(args)-1]
		}
	}

	for i := 0; i < len(args); i++ {
		token := args[i]
		if !strings.HasPrefix(token, "--") {
			return nil, fmt.Errorf("unexpected argument: %s", token)
		}

		name, value, hasValue := strings.Cut(token, "=")
		if !hasValue {
			if i+1 >= len(args) {
				return nil, fmt.Errorf("missing value for %s", name)
			}
			value = args[i+1]
			i++
		}
		if err := applyLogFilterFlag(values, name, strings.TrimSpace(value), now); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func applyLogFilterFlag(values url.Values, name, value string, now time.Time) error {
	if value == "" {
		return fmt.Errorf("invalid %s: empty", name)
	}

	switch name {
	case "--category":
		values.Set("category", strings.ToLower(value))
	case "--severity":
		values.Set("severity", strings.ToLower(value))
	case "--since":
		if d, err := time.ParseDuration(value); err == nil {
			values.Set("start", now.Add(-d).UTC().Format(time.RFC3339))
			return nil
		}
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return fmt.Errorf("invalid --since: %q", value)
		}
		values.Set("start", value)
	case "--until":
		if _, err := time.Parse(time.RFC3339, value); err != nil {
			return fmt.Errorf("invalid --until: %q", value)
		}
		values.Set("end", value)
	case "--limit":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid --limit: %q", value)
		}
		values.Set("limit", strconv.Itoa(n))
	default:
		return fmt.Errorf("unknown flag: %s", name)
	}
	return nil
}
