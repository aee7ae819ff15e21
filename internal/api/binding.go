package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"
)

const maxBodyBytes = 1 << 20

// bindBody decodes a JSON or form-encoded request body into dst. Scalars are
// weakly typed so {"duration": 30} and duration=30 bind the same way.
func bindBody(r *http.Request, dst interface{}) error {
	values := make(map[string]interface{})

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&values); err != nil && !errors.Is(err, io.EOF) {
			return &statusError{status: http.StatusBadRequest, message: msgInvalidBody}
		}
	default:
		r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return &statusError{status: http.StatusBadRequest, message: msgInvalidBody}
		}
		for key := range r.PostForm {
			values[key] = r.PostForm.Get(key)
		}
	}
	return decode(values, dst)
}

// bindValues decodes query parameters into dst.
func bindValues(query url.Values, dst interface{}) error {
	values := make(map[string]interface{}, len(query))
	for key := range query {
		values[key] = query.Get(key)
	}
	return decode(values, dst)
}

func decode(values map[string]interface{}, dst interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "form",
		WeaklyTypedInput: true,
		Result:           dst,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(values); err != nil {
		return &statusError{status: http.StatusBadRequest, message: msgInvalidBody}
	}
	return nil
}
