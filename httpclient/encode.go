package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

const contentTypeJSON = "application/json"

// encodeBody converts a request body into bytes. Strings are sent as UTF-8,
// byte slices and readers as-is, and composite values as JSON. nil, numbers,
// booleans, funcs and chans produce no body. The returned content type is
// set only for JSON bodies.
func encodeBody(data any) ([]byte, string, error) {
	switch v := data.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(v), "", nil
	case json.RawMessage:
		return v, "", nil
	case []byte:
		return v, "", nil
	case io.Reader:
		b, err := io.ReadAll(v)
		if err != nil {
			return nil, "", fmt.Errorf("httpclient: read body: %w", err)
		}
		return b, "", nil
	}

	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.String:
		return []byte(rv.String()), "", nil
	case reflect.Slice:
		if rv.IsNil() {
			return nil, "", nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), "", nil
		}
	case reflect.Map, reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, "", nil
		}
	case reflect.Array, reflect.Struct:
	default:
		return nil, "", nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, "", fmt.Errorf("httpclient: encode body: %w", err)
	}
	return b, contentTypeJSON, nil
}

var componentReplacer = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s leaving only A-Z a-z 0-9 - _ . ! ~ * ' ( ) intact.
func encodeComponent(s string) string {
	return componentReplacer.Replace(url.QueryEscape(s))
}

// serializeParams renders params as a query string. Undefined entries are
// dropped, nil values keep the bare key, and order is preserved.
func serializeParams(params Pairs) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		switch {
		case isUndefined(p.Value):
			continue
		case p.Value == nil:
			parts = append(parts, encodeComponent(p.Key))
		default:
			parts = append(parts, encodeComponent(p.Key)+"="+encodeComponent(stringify(p.Value)))
		}
	}
	return strings.Join(parts, "&")
}

// buildURL joins base and path and appends the serialized params. An
// absolute path ignores base. No slash normalization is performed.
func buildURL(base, path string, params Pairs) string {
	full := path
	if base != "" && !isAbsoluteURL(path) {
		full = base + path
	}
	if q := serializeParams(params); q != "" {
		full += "?" + q
	}
	return full
}

// isAbsoluteURL reports whether u starts with "scheme://" or "//".
func isAbsoluteURL(u string) bool {
	if strings.HasPrefix(u, "//") {
		return true
	}
	i := strings.Index(u, "://")
	if i <= 0 {
		return false
	}
	for j, c := range u[:i] {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case j > 0 && (c >= '0' && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

// headerList is an ordered list of header pairs.
type headerList [][2]string

// set replaces every entry named name with a single value.
func (h *headerList) set(name, value string) {
	h.del(name)
	*h = append(*h, [2]string{name, value})
}

func (h *headerList) del(name string) {
	out := (*h)[:0]
	for _, kv := range *h {
		if !strings.EqualFold(kv[0], name) {
			out = append(out, kv)
		}
	}
	*h = out
}

func (h headerList) has(name string) bool {
	for _, kv := range h {
		if strings.EqualFold(kv[0], name) {
			return true
		}
	}
	return false
}

// normalizeHeaders merges the adapter defaults (sorted by name) with the
// request headers. A request header replaces a default of the same name.
// Undefined values are dropped; nil is sent as "null" and other values are
// coerced to strings.
func normalizeHeaders(defaults map[string]string, headers Pairs) headerList {
	requested := make(headerList, 0, len(headers))
	for _, p := range headers {
		switch {
		case isUndefined(p.Value):
			continue
		case p.Value == nil:
			requested = append(requested, [2]string{p.Key, "null"})
		default:
			requested = append(requested, [2]string{p.Key, stringify(p.Value)})
		}
	}

	names := make([]string, 0, len(defaults))
	for name := range defaults {
		if !requested.has(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make(headerList, 0, len(names)+len(requested))
	for _, name := range names {
		out = append(out, [2]string{name, defaults[name]})
	}
	return append(out, requested...)
}

func isUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// stringify formats a scalar the way it is written into a URL or header.
// Slices are joined with commas.
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	case []byte:
		return string(x)
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		items := make([]string, rv.Len())
		for i := range items {
			items[i] = stringify(rv.Index(i).Interface())
		}
		return strings.Join(items, ",")
	}
	return fmt.Sprint(v)
}
