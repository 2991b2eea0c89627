package cache

import (
	"testing"
	"time"
)

func TestConfigAddrDefaults(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{}, "localhost:6379"},
		{Config{Host: "redis", Port: 6380}, "redis:6380"},
		{Config{Host: "::1"}, "[::1]:6379"},
	}
	for _, tc := range cases {
		if got := tc.cfg.addr(); got != tc.want {
			t.Fatalf("addr(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestPrefixed(t *testing.T) {
	if got := prefixed("volscan", "scan:AAPL"); got != "volscan:scan:AAPL" {
		t.Fatalf("prefixed = %q", got)
	}
	if got := prefixed("", "scan:AAPL"); got != "scan:AAPL" {
		t.Fatalf("empty prefix = %q", got)
	}
}

func TestEncode(t *testing.T) {
	if b, _ := encode("42"); string(b) != "42" {
		t.Fatalf("string encoded as %q", b)
	}
	b, err := encode(struct {
		Z  float64       `json:"z"`
		At time.Duration `json:"at"`
	}{Z: 2.5, At: time.Second})
	if err != nil || string(b) != `{"z":2.5,"at":1000000000}` {
		t.Fatalf("json encode = %q, %v", b, err)
	}
}
