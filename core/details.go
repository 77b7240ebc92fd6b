package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"aerograph/models"
)

// sanitizeError copies raw into the closed ErrorDetails union and returns any
// stack trace it exposes. The returned details never alias raw.
func sanitizeError(raw any) (models.ErrorDetails, string) {
	switch v := raw.(type) {
	case nil:
		return models.ErrorDetails{Kind: models.DetailsNone}, ""
	case string:
		return models.ErrorDetails{Kind: models.DetailsMessage, Message: v}, ""
	case error:
		details := models.ErrorDetails{
			Kind:    models.DetailsError,
			Name:    errorName(v),
			Message: v.Error(),
		}
		var dbErr *models.DatabaseError
		if errors.As(v, &dbErr) {
			details.Name = "DatabaseError"
			details.Code = dbErr.Code
			details.Details = dbErr.Details
			details.Hint = dbErr.Hint
		}
		var st StackTracer
		if errors.As(v, &st) {
			return details, st.StackTrace()
		}
		return details, ""
	case map[string]any:
		if msg, ok := v["message"].(string); ok {
			details := models.ErrorDetails{
				Kind:    models.DetailsError,
				Name:    stringValue(v["name"]),
				Message: msg,
				Code:    stringValue(v["code"]),
				Details: stringValue(v["details"]),
				Hint:    stringValue(v["hint"]),
			}
			if details.Name == "" {
				details.Name = "Error"
			}
			return details, stringValue(v["stack"])
		}
	}

	data, err := jsonCopy(raw)
	if err != nil {
		return models.ErrorDetails{Kind: models.DetailsMessage, Message: fmt.Sprint(raw)}, ""
	}
	return models.ErrorDetails{Kind: models.DetailsJSON, Data: data}, ""
}

// detailsMessage returns the text used for severity classification
func detailsMessage(d models.ErrorDetails) string {
	if d.Message != "" {
		return d.Message
	}
	if obj, ok := d.Data.(map[string]any); ok {
		return stringValue(obj["message"])
	}
	return ""
}

// jsonCopy deep-copies v through a JSON round trip
func jsonCopy(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// errorName reports the concrete type name of err, or "Error" for unexported types
func errorName(err error) string {
	name := fmt.Sprintf("%T", err)
	name = strings.TrimLeft(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	if name == "" || !unicode.IsUpper(rune(name[0])) {
		return "Error"
	}
	return name
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(s)
	}
}
