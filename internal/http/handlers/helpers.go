package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type handlerError struct {
	message string
}

func (e *handlerError) Error() string {
	return e.message
}

func zapError(err error) zap.Field {
	return zap.Error(err)
}

func decodeBody(r *http.Request, dst any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		return &handlerError{message: "Invalid request body"}
	}
	return nil
}

func requiredString(fields map[string]any, key string) (string, error) {
	value, _ := fields[key].(string)
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &handlerError{message: key + " is required"}
	}
	return value, nil
}

func parseDateParam(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, &handlerError{message: "Invalid date"}
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}

	if parsed, err := time.ParseInLocation("2006-01-02", value, time.Local); err == nil {
		return parsed, nil
	}

	return time.Time{}, &handlerError{message: "Invalid date"}
}
