// Package uri implements an immutable URI value with lenient parsing and
// non-strict rendering.
package uri

import (
	"net/netip"
	"strconv"
	"strings"
)

const defaultScheme = "https"

// URI is an immutable scheme/authority/path/query/fragment tuple. The With*
// methods return a copy with exactly one part replaced.
type URI struct {
	scheme   string
	userInfo string
	host     string
	port     string
	path     string
	query    string
	fragment string
}

// New builds a URI from raw parts. An empty path becomes "/".
func New(scheme, host, path, query, port string) URI {
	if path == "" {
		path = "/"
	}
	return URI{
		scheme: scheme,
		host:   host,
		path:   path,
		query:  query,
		port:   normalizePort(port),
	}
}

// Parse reads a fully-qualified URI or a bare "host[:port][/path][?query]"
// endpoint. The scheme defaults to https and the path to "/". Parts are kept as
// written: nothing is re-escaped or case-folded. Parse never fails: an authority
// with whitespace or a non-numeric port yields an empty host.
func Parse(s string) URI {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "://") {
		s = defaultScheme + "://" + s
	}

	s, fragment, _ := strings.Cut(s, "#")
	s, query, _ := strings.Cut(s, "?")
	scheme, rest, _ := strings.Cut(s, "://")

	authority, path := rest, ""
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		authority, path = rest[:i], rest[i:]
	}

	userInfo := ""
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		userInfo, authority = authority[:i], authority[i+1:]
	}

	host, port, ok := splitHostPort(authority)
	if !ok {
		return New(scheme, "", "", "", "")
	}

	out := New(scheme, host, path, query, port)
	out.userInfo = userInfo
	out.fragment = fragment
	return out
}

// splitHostPort separates "host[:port]" and "[v6][:port]". A bare IPv6 literal
// without brackets is taken as host only.
func splitHostPort(authority string) (host, port string, ok bool) {
	if strings.ContainsAny(authority, " \t\r\n") {
		return "", "", false
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", "", false
		}
		host, tail := authority[1:end], authority[end+1:]
		if tail == "" {
			return host, "", true
		}
		if tail[0] != ':' {
			return "", "", false
		}
		port = tail[1:]
		return host, port, validPort(port)
	}

	if strings.Count(authority, ":") > 1 {
		return authority, "", true
	}
	host, port, _ = strings.Cut(authority, ":")
	return host, port, validPort(port)
}

func validPort(port string) bool {
	if port == "" {
		return true
	}
	_, err := strconv.ParseUint(port, 10, 16)
	return err == nil
}

func (u URI) Scheme() string   { return u.scheme }
func (u URI) UserInfo() string { return u.userInfo }
func (u URI) Host() string     { return u.host }
func (u URI) Path() string     { return u.path }
func (u URI) Query() string    { return u.query }
func (u URI) Fragment() string { return u.fragment }

// Port returns the numeric port, or 0 when none is set.
func (u URI) Port() int {
	p, err := strconv.Atoi(u.port)
	if err != nil {
		return 0
	}
	return p
}

// RawPort returns the stored port string.
func (u URI) RawPort() string { return u.port }

// Authority returns "[userinfo@]host[:port]", omitting empty segments.
func (u URI) Authority() string {
	authority := u.renderHost()
	if u.userInfo != "" {
		authority = u.userInfo + "@" + authority
	}
	if u.port != "" {
		authority += ":" + u.port
	}
	return authority
}

func (u URI) WithScheme(scheme string) URI {
	u.scheme = scheme
	return u
}

// WithUserInfo sets "user" or "user:password" when password is non-empty.
func (u URI) WithUserInfo(user, password string) URI {
	u.userInfo = user
	if password != "" {
		u.userInfo = user + ":" + password
	}
	return u
}

func (u URI) WithHost(host string) URI {
	u.host = host
	return u
}

// WithPort sets the port; zero or negative values clear it.
func (u URI) WithPort(port int) URI {
	u.port = ""
	if port > 0 {
		u.port = strconv.Itoa(port)
	}
	return u
}

func (u URI) WithPath(path string) URI {
	u.path = path
	return u
}

func (u URI) WithQuery(query string) URI {
	u.query = query
	return u
}

func (u URI) WithFragment(fragment string) URI {
	u.fragment = fragment
	return u
}

// String renders scheme://host[:port]path[?query][#fragment]. User info is not
// rendered. A path without a leading slash gets one, so the output always parses
// back to the same string.
func (u URI) String() string {
	var b strings.Builder
	b.WriteString(u.scheme)
	b.WriteString("://")
	b.WriteString(u.renderHost())
	if u.port != "" {
		b.WriteByte(':')
		b.WriteString(u.port)
	}
	if !strings.HasPrefix(u.path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(u.path)
	if u.query != "" {
		b.WriteByte('?')
		b.WriteString(u.query)
	}
	if u.fragment != "" {
		b.WriteByte('#')
		b.WriteString(u.fragment)
	}
	return b.String()
}

// renderHost brackets IPv6 literals.
func (u URI) renderHost() string {
	if addr, err := netip.ParseAddr(u.host); err == nil && addr.Is6() {
		return "[" + u.host + "]"
	}
	return u.host
}

// normalizePort drops empty, zero and non-numeric ports.
func normalizePort(port string) string {
	p, err := strconv.Atoi(strings.TrimSpace(port))
	if err != nil || p <= 0 {
		return ""
	}
	return strconv.Itoa(p)
}
