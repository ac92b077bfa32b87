package netutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeIP(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "192.0.2.4:8080", want: "192.0.2.4", ok: true},
		{in: "[2001:db8::1]:443", want: "2001:db8::1", ok: true},
		{in: "[::1]:port", want: "::1", ok: true},
		{in: " 203.0.113.9 ", want: "203.0.113.9", ok: true},
		{in: "2001:db8::5", want: "2001:db8::5", ok: true},
		{in: "[fe80::1%eth0]:80", want: "fe80::1", ok: true},
		{in: "[::ffff:10.0.0.1]:5555", want: "10.0.0.1", ok: true},
		{in: "not-an-ip", want: "not-an-ip", ok: false},
		{in: "", want: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := NormalizeIP(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSessionIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1", SessionIP("10.0.0.1:5555"))
	assert.Equal(t, "unix-socket", SessionIP(" unix-socket "))
	assert.Len(t, SessionIP(strings.Repeat("x", 200)), maxRawIPLength)
}

func TestTruncateUserAgent(t *testing.T) {
	assert.Equal(t, "curl/8.0", TruncateUserAgent(" curl/8.0 "))

	long := strings.Repeat("é", MaxUserAgentLength+10)
	got := TruncateUserAgent(long)
	assert.Equal(t, MaxUserAgentLength, len([]rune(got)))
	assert.True(t, strings.HasPrefix(long, got))
}
