package system

import (
	"context"
	"fmt"
	"net"
	"strings"
)

const hostnameCmd = "hostname"

// LocalIPv4 returns the first IPv4 address reported by `hostname -I`.
func LocalIPv4(ctx context.Context, r Runner) (string, error) {
	stdout, stderr, err := r.Run(ctx, hostnameCmd, "-I")
	if err != nil {
		return "", fmt.Errorf("hostname -I failed: %v: %s", err, stderr)
	}
	for _, field := range strings.Fields(stdout) {
		if ip := net.ParseIP(field); ip != nil && ip.To4() != nil && !ip.IsLoopback() {
			return field, nil
		}
	}
	return "", fmt.Errorf("hostname -I: no IPv4 address in %q", strings.TrimSpace(stdout))
}

// PanelURL builds the control panel address advertised in the HUD from the
// local IPv4 and the port of listenAddr.
func PanelURL(ctx context.Context, r Runner, listenAddr string) (string, error) {
	ip, err := LocalIPv4(ctx, r)
	if err != nil {
		return "", err
	}
	_, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "", fmt.Errorf("listen address %q: %w", listenAddr, err)
	}
	if port == "" || port == "80" {
		return "http://" + ip + "/", nil
	}
	return "http://" + net.JoinHostPort(ip, port) + "/", nil
}
