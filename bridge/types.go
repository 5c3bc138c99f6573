package bridge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
)

// ResourceID is a host-issued handle naming a pending request or a readable
// response body.
type ResourceID uint32

// ClientConfig is the normalized request handed to CmdFetch.
type ClientConfig struct {
	Method          string      `json:"method,omitempty" validate:"omitempty,http_method"`
	URL             string      `json:"url" validate:"required,http_url"`
	Headers         [][2]string `json:"headers"`
	Data            ByteArray   `json:"data,omitempty"`
	MaxRedirections *int        `json:"maxRedirections,omitempty" validate:"omitempty,gte=0"`
	ConnectTimeout  *int64      `json:"connectTimeout,omitempty" validate:"omitempty,gte=0"`
	Proxy           *Proxy      `json:"proxy,omitempty"`
}

// Proxy selects proxies per scheme. All applies to both schemes and takes
// precedence over HTTP and HTTPS.
type Proxy struct {
	All   *ProxyConfig `json:"all,omitempty"`
	HTTP  *ProxyConfig `json:"http,omitempty"`
	HTTPS *ProxyConfig `json:"https,omitempty"`
}

// ProxyConfig describes one proxy. On the wire it is either a bare URL string
// or an object; both forms decode into ProxyConfig.
type ProxyConfig struct {
	URL       string     `json:"url" validate:"required,url"`
	BasicAuth *BasicAuth `json:"basicAuth,omitempty"`
	NoProxy   string     `json:"noProxy,omitempty"`
}

// BasicAuth holds proxy credentials.
type BasicAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type proxyConfigObject ProxyConfig

// MarshalJSON writes the bare URL form when no other field is set.
func (p ProxyConfig) MarshalJSON() ([]byte, error) {
	if p.BasicAuth == nil && p.NoProxy == "" {
		return json.Marshal(p.URL)
	}
	return json.Marshal(proxyConfigObject(p))
}

// UnmarshalJSON accepts a URL string or a {url, basicAuth, noProxy} object.
func (p *ProxyConfig) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*p = ProxyConfig{}
		return json.Unmarshal(data, &p.URL)
	}
	var obj proxyConfigObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = ProxyConfig(obj)
	return nil
}

// FetchSendResponse is the result of CmdFetchSend. RID names the body stream
// and differs from the request handle.
type FetchSendResponse struct {
	Status     int         `json:"status"`
	StatusText string      `json:"statusText"`
	Headers    [][2]string `json:"headers"`
	RID        ResourceID  `json:"rid"`
	URL        string      `json:"url"`
}

// ByteArray is a byte sequence carried as a JSON array of numbers. Decoding
// also accepts a base64 string, and null decodes to nil.
type ByteArray []byte

// MarshalJSON writes the bytes as a number array.
func (b ByteArray) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	buf := make([]byte, 0, 2+len(b)*4)
	buf = append(buf, '[')
	for i, v := range b {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendUint(buf, uint64(v), 10)
	}
	return append(buf, ']'), nil
}

// UnmarshalJSON reads a number array, a base64 string, or null.
func (b *ByteArray) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*b = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return fmt.Errorf("bridge: body is neither a byte array nor base64: %w", err)
		}
		*b = decoded
		return nil
	}

	var nums []int
	if err := json.Unmarshal(data, &nums); err != nil {
		return fmt.Errorf("bridge: decode byte array: %w", err)
	}
	out := make([]byte, len(nums))
	for i, n := range nums {
		if n < 0 || n > 255 {
			return fmt.Errorf("bridge: byte array element %d out of range: %d", i, n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}
