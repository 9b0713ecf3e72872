package security

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// OutboundGuard は外部サービス（IdP、AI、決済）向けHTTPクライアントを提供する。
// 有効時はsafeurlのクライアントでプライベート宛先への接続を遮断する。
type OutboundGuard interface {
	// NewClient はtimeoutを設定したHTTPクライアントを返す。
	NewClient(timeout time.Duration) *http.Client

	// ValidateURL は設定されたURLを静的に検証する。
	ValidateURL(rawURL string) error
}

var allowedSchemes = []string{"http", "https"}

// blockedNetworks はValidateURLで拒否するアドレス範囲。
var blockedNetworks = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"127.0.0.0/8",
	"169.254.0.0/16", // クラウドメタデータIPを含む
	"0.0.0.0/8",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	networks := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		networks = append(networks, network)
	}
	return networks
}

type outboundGuard struct {
	enabled bool
}

// NewOutboundGuard はOutboundGuardを生成する。
// enabledがfalseの場合は通常のhttp.Clientを返し、URL検証も行わない。
func NewOutboundGuard(enabled bool) *outboundGuard {
	return &outboundGuard{enabled: enabled}
}

// NewClient はHTTPクライアントを返す。
// 有効時はsafeurlがDNS解決後のIPをDialerで検証するため、DNS再バインディングも防げる。
func (g *outboundGuard) NewClient(timeout time.Duration) *http.Client {
	if !g.enabled {
		return &http.Client{Timeout: timeout}
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL はURLのスキームとホストを検証する。DNS解決は行わない。
func (g *outboundGuard) ValidateURL(rawURL string) error {
	if !g.enabled {
		return nil
	}
	if rawURL == "" {
		return errors.New("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("disallowed scheme: %s (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}
	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}

	if ip := net.ParseIP(host); ip != nil {
		for _, network := range blockedNetworks {
			if network.Contains(ip) {
				return fmt.Errorf("blocked IP address: %s", ip.String())
			}
		}
	}

	return nil
}

// ValidateUpstreams は全ての外部サービスURLを検証し、最初の違反を返す。
func ValidateUpstreams(guard OutboundGuard, urls []string) error {
	for _, u := range urls {
		if err := guard.ValidateURL(u); err != nil {
			return fmt.Errorf("upstream %q rejected: %w", u, err)
		}
	}
	return nil
}

// compile-time interface check
var _ OutboundGuard = (*outboundGuard)(nil)
