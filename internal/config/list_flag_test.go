package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddressList(t *testing.T) {
	tests := map[string]struct {
		values        []string
		expectedItems []string
		expectedErr   error
	}{
		"one address": {
			values:        []string{"127.0.0.1:8080"},
			expectedItems: []string{"127.0.0.1:8080"},
		},
		"repeated flag and comma separated values": {
			values:        []string{"127.0.0.1:8080,[::1]:8080", ":8081"},
			expectedItems: []string{"127.0.0.1:8080", "[::1]:8080", ":8081"},
		},
		"unix socket": {
			values:        []string{"/run/pages-ssr/http.sock"},
			expectedItems: []string{"/run/pages-ssr/http.sock"},
		},
		"spaces around items": {
			values:        []string{"127.0.0.1:8080 , 127.0.0.1:8081"},
			expectedItems: []string{"127.0.0.1:8080", "127.0.0.1:8081"},
		},
		"empty value": {
			values:      []string{""},
			expectedErr: errEmptyListItem,
		},
		"empty item": {
			values:      []string{"127.0.0.1:8080,,127.0.0.1:8081"},
			expectedErr: errEmptyListItem,
		},
		"missing port": {
			values:      []string{"127.0.0.1"},
			expectedErr: errInvalidListen,
		},
		"empty port": {
			values:      []string{"127.0.0.1:"},
			expectedErr: errInvalidListen,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			list := NewAddressList()

			var err error
			for _, value := range tt.values {
				if err = list.Set(value); err != nil {
					break
				}
			}

			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expectedItems, list.Items())
			require.Equal(t, len(tt.expectedItems), list.Len())
		})
	}
}

func TestAddressListRejectsWholeValue(t *testing.T) {
	list := NewAddressList()
	require.NoError(t, list.Set("127.0.0.1:8080"))

	require.ErrorIs(t, list.Set("127.0.0.1:8081,localhost"), errInvalidListen)
	require.Equal(t, []string{"127.0.0.1:8080"}, list.Items())
	require.Equal(t, "127.0.0.1:8080", list.String())
}

func TestHeaderList(t *testing.T) {
	tests := map[string]struct {
		value         string
		expectedItems []string
		expectedErr   error
	}{
		"one header": {
			value:         "X-Frame-Options: DENY",
			expectedItems: []string{"X-Frame-Options: DENY"},
		},
		"headers holding commas": {
			value:         "Cache-Control: no-cache, no-store;;X-Test: 1",
			expectedItems: []string{"Cache-Control: no-cache, no-store", "X-Test: 1"},
		},
		"empty value is allowed": {
			value:         "X-Empty:",
			expectedItems: []string{"X-Empty:"},
		},
		"missing colon": {
			value:       "X-Frame-Options DENY",
			expectedErr: errInvalidHeader,
		},
		"invalid name": {
			value:       "X Frame: DENY",
			expectedErr: errInvalidHeader,
		},
		"missing name": {
			value:       ": DENY",
			expectedErr: errInvalidHeader,
		},
		"control character in value": {
			value:       "X-Test: a\x00b",
			expectedErr: errInvalidHeader,
		},
		"empty item": {
			value:       "X-Test: 1;;",
			expectedErr: errEmptyListItem,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			list := NewHeaderList()

			err := list.Set(tt.value)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				require.Zero(t, list.Len())
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expectedItems, list.Items())
		})
	}
}

func TestZeroListFlag(t *testing.T) {
	var list ListFlag

	require.NoError(t, list.Set("a,b"))
	require.Equal(t, []string{"a", "b"}, list.Items())
	require.Equal(t, "a,b", list.String())
}
