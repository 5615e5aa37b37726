package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is the decoded data of an action. The concrete type is chosen by the
// action name.
type Payload interface {
	Kind() string
}

type ConsoleCommandData struct {
	Command       string `json:"cmd"`
	ExpireCommand string `json:"expire_cmd"`
}

func (ConsoleCommandData) Kind() string { return ActionNameConsoleCommand }

// DecodePayload decodes raw action data for the given action name. The data may be
// the object itself or a JSON string holding the encoded object.
func DecodePayload(name string, raw json.RawMessage) (Payload, error) {
	switch name {
	case ActionNameConsoleCommand:
		var data ConsoleCommandData
		if err := decodeObject(raw, &data); err != nil {
			return nil, &MalformedPayloadError{ActionName: name, Err: err}
		}
		return data, nil
	default:
		return nil, &MalformedPayloadError{ActionName: name, Err: errors.New("unsupported action kind")}
	}
}

func decodeObject(raw json.RawMessage, v any) error {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("empty payload")
	}

	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return fmt.Errorf("decode string payload: %w", err)
		}
		data = bytes.TrimSpace([]byte(inner))
	}

	if len(data) == 0 || data[0] != '{' {
		return errors.New("payload is not an object")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
