package httpclient

import (
	"encoding/base64"
	"net/http"
	"sort"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
	// AuthCustom uses a custom authentication function.
	AuthCustom
)

const defaultAPIKeyName = "X-API-Key"

// AuthConfig configures request authentication. It is applied after the
// default and request headers, replacing any header of the same name.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string
	// Apply sets headers of its choice (AuthCustom).
	Apply func(http.Header)
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: defaultAPIKeyName}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth creates a custom auth config with a header modifier function.
func CustomAuth(fn func(http.Header)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

// apply adds credentials to the normalized headers, or to params for a
// query API key. The returned params are a copy when modified.
func (a *AuthConfig) apply(headers *headerList, params Pairs) Pairs {
	if a == nil {
		return params
	}
	switch a.Type {
	case AuthBearer:
		headers.set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		creds := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		headers.set("Authorization", "Basic "+creds)
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = defaultAPIKeyName
		}
		if a.In == "query" {
			out := make(Pairs, 0, len(params)+1)
			for _, p := range params {
				if p.Key != name {
					out = append(out, p)
				}
			}
			return append(out, Pair{Key: name, Value: a.Key})
		}
		headers.set(name, a.Key)
	case AuthCustom:
		if a.Apply == nil {
			return params
		}
		h := make(http.Header)
		a.Apply(h)
		names := make([]string, 0, len(h))
		for name := range h {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			headers.del(name)
			for _, v := range h[name] {
				*headers = append(*headers, [2]string{name, v})
			}
		}
	}
	return params
}
