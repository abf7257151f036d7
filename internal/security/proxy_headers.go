// Package security 负责在反向代理后还原请求来源，只信任已配置代理转发的头。
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ParseTrustedProxies 解析可信代理列表，兼容单个 IP（不带 /32 或 /128）。
func ParseTrustedProxies(cidrs []string) ([]netip.Prefix, error) {
	var out []netip.Prefix
	for _, raw := range cidrs {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		pfx, err := netip.ParsePrefix(s)
		if err != nil {
			addr, err2 := netip.ParseAddr(s)
			if err2 != nil {
				return nil, fmt.Errorf("解析 trusted_proxy_cidrs[%q] 失败: %w", s, err)
			}
			pfx = netip.PrefixFrom(addr, addr.BitLen())
		}
		out = append(out, pfx.Masked())
	}
	return out, nil
}

// ClientIP 返回请求来源 IP。
//
// 仅当直连方命中 trustedProxies 时才采用 X-Forwarded-For 的第一个合法地址；否则使用 RemoteAddr。
func ClientIP(r *http.Request, trustedProxies []netip.Prefix) string {
	if r == nil {
		return ""
	}
	remote := remoteAddrIP(r)
	if isTrustedProxyRequest(r, trustedProxies) {
		if v := firstForwardedToken(r.Header.Get("X-Forwarded-For")); v != "" {
			if ip, err := netip.ParseAddr(v); err == nil {
				return ip.Unmap().String()
			}
		}
	}
	return remote
}

func remoteAddrIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func isTrustedProxyRequest(r *http.Request, trustedProxies []netip.Prefix) bool {
	if r == nil {
		return false
	}
	if len(trustedProxies) == 0 {
		return false
	}
	ip, err := netip.ParseAddr(remoteAddrIP(r))
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, pfx := range trustedProxies {
		if pfx.Contains(ip) {
			return true
		}
	}
	return false
}

func firstForwardedToken(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return ""
	}
	if idx := strings.IndexByte(v, ','); idx >= 0 {
		v = v[:idx]
	}
	return strings.TrimSpace(v)
}
