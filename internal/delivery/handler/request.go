package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"
)

const maxBodyBytes = 1 << 20

var errMalformedRequest = errors.New("invalid request payload")

// decodeFields decodes a JSON object body into dst. Only keys listed in
// allowed are accepted and none of them may be null, so a caller can never
// write a column that is not part of the advertisement's writable fields.
func decodeFields(w http.ResponseWriter, r *http.Request, allowed []string, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return errMalformedRequest
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return errMalformedRequest
	}

	for _, k := range slices.Sorted(maps.Keys(fields)) {
		if !slices.Contains(allowed, k) {
			return fmt.Errorf("unknown field %q", k)
		}
		if bytes.Equal(bytes.TrimSpace(fields[k]), []byte("null")) {
			return fmt.Errorf("field %q must not be null", k)
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("field %q has an invalid type", typeErr.Field)
		}
		return errMalformedRequest
	}

	return nil
}
