package http

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"

	"github.com/gofiber/fiber/v3"
)

/* ========================================================================
 * HTTP Listener - 监听器
 * ========================================================================
 * 职责: 在 fx OnStart 中同步绑定端口，绑定失败直接让启动失败
 * 支持: tcp / tcp4 / tcp6 / unix，TLS 与 mTLS（CertClientFile 为客户端 CA）
 * ======================================================================== */

const networkUnix = "unix"

// createListener 按 ListenConfig 创建 net.Listener
func createListener(addr string, config fiber.ListenConfig) (net.Listener, error) {
	network := config.ListenerNetwork
	if network == "" {
		network = "tcp4"
	}

	ln, err := listen(network, addr, config)
	if err != nil {
		return nil, err
	}

	if config.CertFile == "" || config.CertKeyFile == "" {
		return ln, nil
	}
	tlsConfig, err := buildTLSConfig(config)
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	return tls.NewListener(ln, tlsConfig), nil
}

func listen(network, addr string, config fiber.ListenConfig) (net.Listener, error) {
	if network != networkUnix {
		return net.Listen(network, addr)
	}

	// 上次异常退出遗留的 socket 文件
	if err := os.Remove(addr); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale unix socket: %w", err)
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, err
	}
	mode := config.UnixSocketFileMode
	if mode == 0 {
		mode = 0o770
	}
	if err := os.Chmod(addr, mode); err != nil {
		_ = ln.Close()
		return nil, fmt.Errorf("chmod unix socket: %w", err)
	}
	return ln, nil
}

// buildTLSConfig 加载服务端证书，配置了 CertClientFile 时要求客户端证书
func buildTLSConfig(config fiber.ListenConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(config.CertFile, config.CertKeyFile)
	if err != nil {
		return nil, fmt.Errorf("load TLS certificate: %w", err)
	}

	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
	if config.TLSMinVersion > 0 {
		tlsConfig.MinVersion = config.TLSMinVersion
	}

	if config.CertClientFile != "" {
		pem, err := os.ReadFile(config.CertClientFile)
		if err != nil {
			return nil, fmt.Errorf("read client CA: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", config.CertClientFile)
		}
		tlsConfig.ClientCAs = pool
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tlsConfig, nil
}
