package sd

import (
	"net/url"
	"sort"
	"strconv"
)

// FormEncode renders a map document as an
// application/x-www-form-urlencoded body. Scalar values are rendered with
// their natural text form; nested maps and arrays are rendered as JSON.
// Keys are emitted in sorted order so the output is deterministic.
func FormEncode(d Document) (string, error) {
	m, ok := d.v.(map[string]any)
	if !ok {
		return "", nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		text, err := scalarText(Document{v: m[k]})
		if err != nil {
			return "", err
		}
		values.Set(k, text)
	}

	return values.Encode(), nil
}

func scalarText(d Document) (string, error) {
	switch v := d.v.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}

	p, err := d.Marshal()
	if err != nil {
		return "", err
	}
	return string(p), nil
}
