package config

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	errEmptyListItem = errors.New("list item cannot be empty")
	errInvalidListen = errors.New("invalid listen address")
	errInvalidHeader = errors.New("invalid header")
)

const (
	addressSeparator = ","
	headerSeparator  = ";;"
)

// ListFlag collects the items of a repeatable flag. Each value is split on
// the separator and every item is checked as it is set, so a malformed
// -listen-* or -header value fails flag parsing rather than startup.
//
// e.g.: -listen-http 127.0.0.1:80,[::1]:80 -listen-http /run/pages-ssr.sock
//
// The zero value is a comma separated list accepting any non-empty item.
type ListFlag struct {
	items []string
	sep   string
	check func(string) error
}

// NewAddressList returns a comma separated list of host:port addresses or
// unix socket paths.
func NewAddressList() ListFlag {
	return ListFlag{sep: addressSeparator, check: checkAddress}
}

// NewHeaderList returns a ";;" separated list of "Name: value" headers.
func NewHeaderList() ListFlag {
	return ListFlag{sep: headerSeparator, check: checkHeader}
}

func (l *ListFlag) separator() string {
	if l.sep == "" {
		return addressSeparator
	}

	return l.sep
}

func (l *ListFlag) String() string {
	return strings.Join(l.items, l.separator())
}

// Set checks every item of value and appends them all, or none on error
func (l *ListFlag) Set(value string) error {
	var items []string

	for _, item := range strings.Split(value, l.separator()) {
		item = strings.TrimSpace(item)
		if item == "" {
			return fmt.Errorf("%w: %q", errEmptyListItem, value)
		}

		if l.check != nil {
			if err := l.check(item); err != nil {
				return err
			}
		}

		items = append(items, item)
	}

	l.items = append(l.items, items...)

	return nil
}

// Items returns a copy of every item set so far
func (l *ListFlag) Items() []string {
	return append([]string(nil), l.items...)
}

func (l *ListFlag) Len() int {
	return len(l.items)
}

// checkAddress accepts what the listeners can bind: a path containing a
// slash is a unix socket, anything else needs a port.
func checkAddress(addr string) error {
	if strings.Contains(addr, "/") {
		return nil
	}

	if _, port, err := net.SplitHostPort(addr); err != nil || port == "" {
		return fmt.Errorf("%w: %q needs to be host:port or a unix socket path", errInvalidListen, addr)
	}

	return nil
}

func checkHeader(h string) error {
	name, value, ok := strings.Cut(h, ":")
	name = strings.TrimSpace(name)

	if !ok || !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: %q needs to be \"Name: value\"", errInvalidHeader, h)
	}

	if !httpguts.ValidHeaderFieldValue(strings.TrimSpace(value)) {
		return fmt.Errorf("%w: %q has an invalid value", errInvalidHeader, h)
	}

	return nil
}
