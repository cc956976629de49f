package remote

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
)

// Server 描述一台被采集的 AIX 服务器。
type Server struct {
	// Name 为配置里的逻辑名，入库时作为 server_name 标签。
	Name string `mapstructure:"name"`
	// Hostname 为 SSH 连接地址。
	Hostname string `mapstructure:"hostname"`
	Username string `mapstructure:"username"`
	// Port 为 0 时使用 22。
	Port int `mapstructure:"port"`
}

func (s Server) addr() string {
	port := s.Port
	if port <= 0 {
		port = 22
	}
	return net.JoinHostPort(s.Hostname, fmt.Sprintf("%d", port))
}

type Config struct {
	// PrivateKeyPath 支持 ~ 展开；key 不存在时仅告警，连接大概率失败。
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// MaxConnections 为连接池容量，超出时关闭最早建立的连接。
	MaxConnections int `mapstructure:"max_connections"`
}

func DefaultConfig() Config {
	return Config{
		PrivateKeyPath: "~/.ssh/id_rsa",
		Timeout:        30 * time.Second,
		MaxConnections: 10,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = def.MaxConnections
	}
	return c
}

// Client 管理到各服务器的 SSH 连接，Execute/TestConnection 并发安全。
//
// 远端命令执行失败（非零退出）不是 error：以 ok=false + stderr 向上
// 返回。只有建连这类传输层问题才走 error 路径。
type Client struct {
	cfg    Config
	signer ssh.Signer

	mu    sync.Mutex
	conns map[string]*ssh.Client
	// order 记录建连顺序，池满时按它淘汰最旧连接。
	order []string
}

func NewClient(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()

	c := &Client{
		cfg:   cfg,
		conns: make(map[string]*ssh.Client),
	}

	signer, err := loadPrivateKey(cfg.PrivateKeyPath)
	if err != nil {
		return nil, err
	}
	c.signer = signer
	return c, nil
}

func loadPrivateKey(path string) (ssh.Signer, error) {
	if path == "" {
		return nil, nil
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// 原样放行：没有 key 也允许启动，连接时再失败。
			return nil, nil
		}
		return nil, fmt.Errorf("read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return signer, nil
}

func connectionKey(s Server) string {
	port := s.Port
	if port <= 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d:%s", s.Hostname, port, s.Username)
}

func (c *Client) getConnection(server Server) (*ssh.Client, error) {
	key := connectionKey(server)

	c.mu.Lock()
	if conn, ok := c.conns[key]; ok {
		c.mu.Unlock()
		// keepalive 探活；死连接删掉重建。
		if _, _, err := conn.SendRequest("keepalive@openssh.com", true, nil); err == nil {
			return conn, nil
		}
		c.mu.Lock()
		if cur, ok := c.conns[key]; ok && cur == conn {
			c.removeLocked(key)
			_ = conn.Close()
		}
	}

	for len(c.conns) >= c.cfg.MaxConnections && len(c.order) > 0 {
		oldest := c.order[0]
		if conn, ok := c.conns[oldest]; ok {
			_ = conn.Close()
		}
		c.removeLocked(oldest)
	}
	c.mu.Unlock()

	conn, err := c.dial(server)
	if err != nil {
		return nil, err
	}

	kept, stored := c.storeConnection(key, conn)
	if !stored {
		// 并发建连输掉的一方把自己的连接关掉，复用赢家的。
		_ = conn.Close()
	}
	return kept, nil
}

// storeConnection 把新连接放进池子。同一 key 已有连接时保留先到者，
// 返回 stored=false 让调用方关闭多余的新连接，order 不会出现重复 key。
func (c *Client) storeConnection(key string, conn *ssh.Client) (*ssh.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.conns[key]; ok {
		return existing, false
	}
	c.conns[key] = conn
	c.order = append(c.order, key)
	return conn, true
}

func (c *Client) removeLocked(key string) {
	delete(c.conns, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Client) dial(server Server) (*ssh.Client, error) {
	var auth []ssh.AuthMethod
	if c.signer != nil {
		auth = append(auth, ssh.PublicKeys(c.signer))
	}

	conn, err := ssh.Dial("tcp", server.addr(), &ssh.ClientConfig{
		User: server.Username,
		Auth: auth,
		// 采集网络为内网受控环境，沿用 AutoAddPolicy 语义。
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         c.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", server.addr(), err)
	}
	return conn, nil
}

// Execute 在目标服务器上执行命令。
//
// 返回 (ok, stdout, stderr)：命令非零退出时 ok=false，stderr 带回
// 远端输出；建连失败时同样以 ok=false + 错误文本返回，调用方不需要
// 区分两者。timeout<=0 时使用客户端默认超时。
func (c *Client) Execute(server Server, command string, timeout time.Duration) (bool, string, string) {
	conn, err := c.getConnection(server)
	if err != nil {
		return false, "", fmt.Sprintf("failed to establish ssh connection to %s: %v", server.Hostname, err)
	}

	session, err := conn.NewSession()
	if err != nil {
		// 会话开不出来通常意味着连接已坏，踢出池子。
		c.drop(server, conn)
		return false, "", fmt.Sprintf("new ssh session on %s: %v", server.Hostname, err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}

	done := make(chan error, 1)
	go func() { done <- session.Run(command) }()

	select {
	case err = <-done:
	case <-time.After(timeout):
		_ = session.Close()
		c.drop(server, conn)
		return false, strings.TrimSpace(stdout.String()),
			fmt.Sprintf("command timed out after %s on %s", timeout, server.Hostname)
	}

	outStr := strings.TrimSpace(stdout.String())
	errStr := strings.TrimSpace(stderr.String())

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return false, outStr, errStr
		}
		return false, outStr, fmt.Sprintf("execute on %s: %v", server.Hostname, err)
	}
	return true, outStr, errStr
}

func (c *Client) drop(server Server, conn *ssh.Client) {
	key := connectionKey(server)
	c.mu.Lock()
	if cur, ok := c.conns[key]; ok && cur == conn {
		c.removeLocked(key)
	}
	c.mu.Unlock()
	_ = conn.Close()
}

// TestConnection 用一条 echo 验证服务器可达且可执行命令。
func (c *Client) TestConnection(server Server) bool {
	ok, _, _ := c.Execute(server, `echo "ssh connection test successful"`, 10*time.Second)
	return ok
}

// CloseAll 关闭池中全部连接，进程退出前调用。
func (c *Client) CloseAll() {
	c.mu.Lock()
	conns := c.conns
	c.conns = make(map[string]*ssh.Client)
	c.order = nil
	c.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
