package httpguard

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxFormBytes = 1 << 20

// readForm collects the request input from a JSON body or a regular form.
// JSON scalars are converted to their string form; nested values are dropped.
func readForm(r *http.Request) (url.Values, error) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct != "application/json" {
		r.Body = http.MaxBytesReader(nil, r.Body, maxFormBytes)
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.Form, nil
	}

	var body map[string]any
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxFormBytes))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	values := url.Values{}
	for key, v := range body {
		switch v := v.(type) {
		case string:
			values.Set(key, v)
		case bool:
			values.Set(key, strconv.FormatBool(v))
		case json.Number:
			values.Set(key, v.String())
		}
	}
	return values, nil
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
