package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
)

func TestBuildOptions(t *testing.T) {
	cfg := &ClientConfig{Host: "ch", Port: 8123, User: "scan", Password: "pw", DialTimeout: time.Second}
	WithHTTP(true)(cfg)
	WithAsyncInsert(true)(cfg)

	o := buildOptions(cfg)
	if len(o.Addr) != 1 || o.Addr[0] != "ch:8123" {
		t.Fatalf("addr = %v", o.Addr)
	}
	if o.Protocol != ch.HTTP {
		t.Fatalf("protocol = %v", o.Protocol)
	}
	if o.Auth.Database != "default" || o.Auth.Username != "scan" || o.Auth.Password != "pw" {
		t.Fatalf("auth = %+v", o.Auth)
	}
	if o.Settings["async_insert"] != 1 || o.Settings["wait_for_async_insert"] != 1 {
		t.Fatalf("settings = %v", o.Settings)
	}

	plain := buildOptions(&ClientConfig{Host: "ch", Port: 9000})
	if plain.Protocol != ch.Native || len(plain.Settings) != 0 {
		t.Fatalf("plain options = %+v", plain)
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected error without host")
	}
}
