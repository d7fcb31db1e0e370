package credentials

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// NetscapeHeader is the first line browsers and cookie exporters write.
const NetscapeHeader = "# Netscape HTTP Cookie File"

const httpOnlyPrefix = "#HttpOnly_"

// Cookie is a single entry of a Netscape cookie file.
//
// Expires is unix seconds; zero marks a session cookie.
type Cookie struct {
	Domain            string
	IncludeSubdomains bool
	Path              string
	Secure            bool
	HTTPOnly          bool
	Expires           int64
	Name              string
	Value             string
}

// HTTPCookie converts the entry to an [http.Cookie]. Entries without the subdomain flag become host-only cookies.
func (c Cookie) HTTPCookie() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     c.Path,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
	}
	if c.IncludeSubdomains {
		hc.Domain = strings.TrimPrefix(c.Domain, ".")
	}
	if c.Expires > 0 {
		hc.Expires = time.Unix(c.Expires, 0)
	}
	return hc
}

// ParseNetscape parses the tab-separated Netscape cookie format:
//
//	domain  include-subdomains  path  secure  expiry  name  value
//
// Blank lines and comments are skipped, except "#HttpOnly_" lines which are cookies with HTTPOnly set.
// At least one cookie is required.
func ParseNetscape(data []byte) ([]Cookie, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	var cookies []Cookie
	for i, line := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		httpOnly := false
		if strings.HasPrefix(line, httpOnlyPrefix) {
			httpOnly = true
			line = strings.TrimPrefix(line, httpOnlyPrefix)
		} else if strings.HasPrefix(line, "#") {
			continue
		}

		c, err := parseNetscapeLine(line)
		if err != nil {
			return nil, &NetscapeSyntaxError{Line: lineNo, Msg: err.Error()}
		}
		c.HTTPOnly = httpOnly
		cookies = append(cookies, c)
	}

	if len(cookies) == 0 {
		return nil, &NetscapeSyntaxError{Msg: "no cookies found"}
	}

	return cookies, nil
}

func parseNetscapeLine(line string) (Cookie, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 7 {
		return Cookie{}, fmt.Errorf("expected 7 tab-separated fields, got %d", len(fields))
	}

	if fields[0] == "" {
		return Cookie{}, fmt.Errorf("empty domain")
	}

	subdomains, err := parseNetscapeFlag(fields[1])
	if err != nil {
		return Cookie{}, fmt.Errorf("include-subdomains flag: %w", err)
	}

	secure, err := parseNetscapeFlag(fields[3])
	if err != nil {
		return Cookie{}, fmt.Errorf("secure flag: %w", err)
	}

	expires, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil || expires < 0 {
		return Cookie{}, fmt.Errorf("invalid expiry %q", fields[4])
	}

	if fields[5] == "" {
		return Cookie{}, fmt.Errorf("empty cookie name")
	}

	return Cookie{
		Domain:            fields[0],
		IncludeSubdomains: subdomains,
		Path:              fields[2],
		Secure:            secure,
		Expires:           expires,
		Name:              fields[5],
		Value:             fields[6],
	}, nil
}

func parseNetscapeFlag(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "TRUE":
		return true, nil
	case "FALSE":
		return false, nil
	default:
		return false, fmt.Errorf("expected TRUE or FALSE, got %q", s)
	}
}

// ValidateCookies reports the first cookie that [FormatNetscape] cannot render in a form [ParseNetscape] reads back.
func ValidateCookies(cookies []Cookie) error {
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies")
	}

	for i, c := range cookies {
		switch {
		case c.Domain == "":
			return fmt.Errorf("cookie %d: empty domain", i+1)
		case strings.HasPrefix(c.Domain, "#"):
			return fmt.Errorf("cookie %d: domain %q starts with #", i+1, c.Domain)
		case c.Name == "":
			return fmt.Errorf("cookie %d: empty name", i+1)
		case c.Expires < 0:
			return fmt.Errorf("cookie %d: negative expiry %d", i+1, c.Expires)
		}
		for field, v := range map[string]string{"domain": c.Domain, "path": c.Path, "name": c.Name, "value": c.Value} {
			if strings.ContainsAny(v, "\t\r\n") {
				return fmt.Errorf("cookie %d: %s contains a tab or line break", i+1, field)
			}
		}
	}

	return nil
}

// NewCookieAuth builds a [CookieAuth] whose Raw text is the formatted cookies.
func NewCookieAuth(cookies []Cookie) CookieAuth {
	return CookieAuth{Raw: string(FormatNetscape(cookies)), Cookies: cookies}
}

// FormatNetscape renders cookies as a Netscape cookie file, header included.
func FormatNetscape(cookies []Cookie) []byte {
	var buf bytes.Buffer
	buf.WriteString(NetscapeHeader + "\n\n")

	for _, c := range cookies {
		domain := c.Domain
		if c.HTTPOnly {
			domain = httpOnlyPrefix + domain
		}
		fmt.Fprintf(&buf, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			domain, formatNetscapeFlag(c.IncludeSubdomains), c.Path, formatNetscapeFlag(c.Secure), c.Expires, c.Name, c.Value)
	}

	return buf.Bytes()
}

func formatNetscapeFlag(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
