package staging

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"
)

// EachRecord calls fn for every JSON object in r. The stream may hold
// newline-delimited or concatenated objects, or top-level arrays of objects.
// Records are numbered from 1.
func EachRecord(r io.Reader, fn func(n int, record []byte) error) error {
	dec := json.NewDecoder(r)
	n := 0
	for {
		var raw json.RawMessage
		err := dec.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("record %d: invalid JSON: %w", n+1, err)
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var fnErr error
			gjson.ParseBytes(trimmed).ForEach(func(_, elem gjson.Result) bool {
				n++
				if !elem.IsObject() {
					fnErr = fmt.Errorf("record %d: expected a JSON object, got %s", n, kindOf(elem))
					return false
				}
				fnErr = fn(n, []byte(elem.Raw))
				return fnErr == nil
			})
			if fnErr != nil {
				return fnErr
			}
			continue
		}

		n++
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return fmt.Errorf("record %d: expected a JSON object", n)
		}
		if err := fn(n, trimmed); err != nil {
			return err
		}
	}
}
