package remote

import (
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

func TestConnectionKey(t *testing.T) {
	s := Server{Name: "prod01", Hostname: "10.0.0.5", Username: "monitor"}
	if got := connectionKey(s); got != "10.0.0.5:22:monitor" {
		t.Fatalf("key = %q", got)
	}
	s.Port = 2222
	if got := connectionKey(s); got != "10.0.0.5:2222:monitor" {
		t.Fatalf("key = %q", got)
	}
}

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.MaxConnections != 10 {
		t.Errorf("max connections = %d", cfg.MaxConnections)
	}
}

func TestNewClient_MissingKeyIsTolerated(t *testing.T) {
	// key 文件不存在时允许启动，等到连接时才暴露。
	c, err := NewClient(Config{PrivateKeyPath: "/nonexistent/id_rsa"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.signer != nil {
		t.Fatal("signer should be nil when key file is missing")
	}
}

// 同一 key 并发建连时先入池的胜出，order 不得出现重复项。
func TestStoreConnectionKeepsFirst(t *testing.T) {
	c, err := NewClient(Config{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	first := &ssh.Client{}
	second := &ssh.Client{}

	kept, stored := c.storeConnection("10.0.0.5:22:monitor", first)
	if !stored || kept != first {
		t.Fatal("first store should win the slot")
	}

	kept, stored = c.storeConnection("10.0.0.5:22:monitor", second)
	if stored {
		t.Fatal("second store for the same key must be rejected")
	}
	if kept != first {
		t.Fatal("loser must be handed the existing connection")
	}

	if len(c.order) != 1 || c.order[0] != "10.0.0.5:22:monitor" {
		t.Fatalf("order = %v, want single entry", c.order)
	}
	if len(c.conns) != 1 || c.conns["10.0.0.5:22:monitor"] != first {
		t.Fatal("pool must keep the first connection only")
	}
}

func TestExecute_UnreachableHost(t *testing.T) {
	c, err := NewClient(Config{Timeout: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ok, _, stderr := c.Execute(Server{
		Name:     "ghost",
		Hostname: "127.0.0.1",
		Username: "nobody",
		Port:     1, // 几乎必然拒绝
	}, "echo hi", time.Second)
	if ok {
		t.Fatal("expected failure against unreachable host")
	}
	if stderr == "" {
		t.Fatal("expected error text in stderr")
	}
}
