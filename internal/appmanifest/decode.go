package appmanifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// decodeDocument parses data into a value tree, rejecting trailing content.
// Numbers are kept as literals so re-encoding reproduces them verbatim.
func decodeDocument(data []byte) (*Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	root, err := decodeValue(decoder)
	if err != nil {
		return nil, err
	}

	if _, err = decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingContent
	}

	return root, nil
}

// decodeValue reads the next token and decodes the value it starts.
func decodeValue(decoder *json.Decoder) (*Value, error) {
	token, err := decoder.Token()
	if err != nil {
		return nil, err
	}

	switch t := token.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(decoder)
		case '[':
			return decodeArray(decoder)
		default:
			return nil, fmt.Errorf("%w: %q", errUnexpectedToken, t.String())
		}
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t.String()), nil
	case string:
		return String(t), nil
	default:
		// encoding/json delivers JSON null as a nil token.
		return Null(), nil
	}
}

// decodeObject reads members until the closing brace, rejecting dotted keys.
func decodeObject(decoder *json.Decoder) (*Value, error) {
	object := Object()

	for decoder.More() {
		keyToken, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		key, ok := keyToken.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key %v", errUnexpectedToken, keyToken)
		}

		if strings.Contains(key, ".") {
			return nil, fmt.Errorf("%w: %q", errDottedKey, key)
		}

		value, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		// A repeated key keeps its original position, last value wins.
		object.SetMember(key, value)
	}

	// Consume the closing brace.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return object, nil
}

// decodeArray reads items until the closing bracket.
func decodeArray(decoder *json.Decoder) (*Value, error) {
	array := Array()

	for decoder.More() {
		item, err := decodeValue(decoder)
		if err != nil {
			return nil, err
		}

		array.items = append(array.items, item)
	}

	// Consume the closing bracket.
	if _, err := decoder.Token(); err != nil {
		return nil, err
	}

	return array, nil
}
