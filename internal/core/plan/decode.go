package plan

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Decode parses the output of terraform show -json into a Model.
// Numbers are kept as json.Number so large integers survive unchanged.
func Decode(data []byte) (*Model, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, NewDecodeError(0, "no output to decode", ErrEmptyInput)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var content any
	if err := dec.Decode(&content); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, NewDecodeError(syntaxErr.Offset, syntaxErr.Error(), ErrInvalidJSON)
		}
		return nil, NewDecodeError(0, err.Error(), ErrInvalidJSON)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, NewDecodeError(dec.InputOffset(), "unexpected data after plan document", ErrInvalidJSON)
	}

	object, ok := content.(map[string]any)
	if !ok {
		return nil, NewDecodeError(0, "expected a JSON object", ErrNotAnObject)
	}

	return &Model{content: object}, nil
}
