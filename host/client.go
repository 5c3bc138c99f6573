package host

import (
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/publicsuffix"

	"github.com/kbukum/nativefetch/bridge"
)

// clientFactory builds the *http.Client for one exchange. Requests without
// per-request options share one client.
type clientFactory struct {
	base   *http.Transport
	jar    http.CookieJar
	shared *http.Client
}

func newClientFactory(cfg Config) (*clientFactory, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		base.TLSClientConfig = tlsCfg
	}

	f := &clientFactory{base: base}
	if cfg.Cookies {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("host: cookie jar: %w", err)
		}
		f.jar = jar
	}
	f.shared = &http.Client{Transport: base, Jar: f.jar}
	return f, nil
}

// clientFor honors proxy, connectTimeout and maxRedirections of cc.
func (f *clientFactory) clientFor(cc *bridge.ClientConfig) (*http.Client, error) {
	if cc.Proxy == nil && cc.ConnectTimeout == nil && cc.MaxRedirections == nil {
		return f.shared, nil
	}

	transport := f.base
	if cc.Proxy != nil || cc.ConnectTimeout != nil {
		transport = f.base.Clone()
	}
	if cc.Proxy != nil {
		proxyFunc, err := proxyFuncFor(cc.Proxy)
		if err != nil {
			return nil, err
		}
		transport.Proxy = proxyFunc
	}
	if cc.ConnectTimeout != nil {
		dialer := &net.Dialer{
			Timeout:   time.Duration(*cc.ConnectTimeout) * time.Millisecond,
			KeepAlive: 30 * time.Second,
		}
		transport.DialContext = dialer.DialContext
	}

	client := &http.Client{Transport: transport, Jar: f.jar}
	if cc.MaxRedirections != nil {
		client.CheckRedirect = limitRedirects(*cc.MaxRedirections)
	}
	return client, nil
}

// close drops idle connections of the shared transport.
func (f *clientFactory) close() {
	f.base.CloseIdleConnections()
}

// limitRedirects follows at most max redirects; past that the last redirect
// response is returned as is.
func limitRedirects(max int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if len(via) > max {
			return http.ErrUseLastResponse
		}
		return nil
	}
}

// proxyFuncFor maps the bridge proxy settings onto an httpproxy.Config, which
// also implements the noProxy matching rules.
func proxyFuncFor(p *bridge.Proxy) (func(*http.Request) (*url.URL, error), error) {
	httpCfg, httpsCfg := p.HTTP, p.HTTPS
	if p.All != nil {
		httpCfg, httpsCfg = p.All, p.All
	}

	conf := httpproxy.Config{}
	for _, pc := range []*bridge.ProxyConfig{httpCfg, httpsCfg} {
		if pc != nil && pc.NoProxy != "" && conf.NoProxy == "" {
			conf.NoProxy = pc.NoProxy
		}
	}

	var err error
	if conf.HTTPProxy, err = proxyURL(httpCfg); err != nil {
		return nil, err
	}
	if conf.HTTPSProxy, err = proxyURL(httpsCfg); err != nil {
		return nil, err
	}

	fn := conf.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return fn(req.URL)
	}, nil
}

func proxyURL(pc *bridge.ProxyConfig) (string, error) {
	if pc == nil {
		return "", nil
	}
	u, err := url.Parse(pc.URL)
	if err != nil {
		return "", fmt.Errorf("host: invalid proxy url %q: %w", pc.URL, err)
	}
	if pc.BasicAuth != nil {
		u.User = url.UserPassword(pc.BasicAuth.Username, pc.BasicAuth.Password)
	}
	return u.String(), nil
}
