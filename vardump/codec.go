package vardump

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/archlinux/archwiki-sub029/afpdata"
)

// encodeVars serializes a native variable map. Integral floats are written with a fractional part so they are
// read back as floats. NaN and infinities have no JSON form and are stored as their string casts.
func encodeVars(vars map[string]interface{}) ([]byte, error) {
	out := make(map[string]interface{}, len(vars))
	for name, value := range vars {
		out[name] = preserveFloats(value)
	}
	return json.Marshal(out)
}

func preserveFloats(value interface{}) interface{} {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return afpdata.NewFloat(v).ToString()
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return json.Number(s)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = preserveFloats(item)
		}
		return out
	default:
		return v
	}
}

// DecodeVars parses a flat JSON object of variables, like the payloads StoreVarDump persists. Numbers are kept as
// json.Number so ints and floats stay distinct. Nested objects are rejected.
func DecodeVars(data []byte) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var vars map[string]interface{}
	if err := dec.Decode(&vars); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the variables object")
	}
	for name, value := range vars {
		if err := checkNative(value); err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
	}
	return vars, nil
}

func checkNative(value interface{}) error {
	switch v := value.(type) {
	case nil, bool, string, json.Number:
		return nil
	case []interface{}:
		for _, item := range v {
			if err := checkNative(item); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unexpected JSON value of type %T", v)
	}
}

type blobWrapper struct {
	Blob string `json:"_blob"`
}

func wrapAddress(address string) (string, error) {
	bb, err := json.Marshal(blobWrapper{Blob: address})
	return string(bb), err
}

// unwrapAddress returns the blob address stored in a dump field and whether protected values were redacted.
func unwrapAddress(field string) (address string, redacted bool, err error) {
	if !strings.HasPrefix(field, "{") {
		return field, false, nil
	}

	var w blobWrapper
	if err = json.Unmarshal([]byte(field), &w); err != nil {
		return "", false, err
	}
	if w.Blob == "" {
		return "", false, fmt.Errorf("missing _blob address")
	}
	return w.Blob, true, nil
}
