package fingerprint

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	itls "github.com/icodeface/tls"
	"github.com/stacktitan/smb/smb"
	"golang.org/x/crypto/ssh"
)

var osHintPattern = regexp2.MustCompile(`(?i)(ubuntu|debian|centos|freebsd|solaris|windows)`, 0)

// CollectProtocolHints connects to whichever of {22, 445, 80, 443} are
// reachable and parses each service's banner/handshake for OS hints.
func CollectProtocolHints(target string, timeout time.Duration) *ProtocolHints {
	hints := &ProtocolHints{}
	any := false

	if sshHint := probeSSH(target, timeout); sshHint != nil {
		hints.SSHProto, hints.SSHSoftware, hints.SSHVersion, hints.SSHOSHint = sshHint.proto, sshHint.software, sshHint.version, sshHint.osHint
		any = true
	}
	if smbHint := probeSMB(target, timeout); smbHint != nil {
		hints.SMBOsString, hints.SMBLanManager, hints.SMBDomain, hints.SMBServerName = smbHint.os, smbHint.lanman, smbHint.domain, smbHint.server
		any = true
	}
	if httpHint := probeHTTP(target, timeout); httpHint != nil {
		hints.HTTPServerHeader, hints.HTTPOSHint = httpHint.server, httpHint.osHint
		any = true
	}
	if tlsHint := probeTLS(target, timeout); tlsHint != nil {
		hints.TLSVersion, hints.JA3 = tlsHint.version, tlsHint.ja3
		any = true
	}

	if !any {
		return nil
	}
	return hints
}

type sshHint struct{ proto, software, version, osHint string }

func probeSSH(target string, timeout time.Duration) *sshHint {
	addr := net.JoinHostPort(target, "22")
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(timeout))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "SSH-") {
		return nil
	}
	line = strings.TrimSpace(line)

	// SSH-<proto>-<software>_<version> ...
	parts := strings.SplitN(line, "-", 3)
	h := &sshHint{}
	if len(parts) == 3 {
		h.proto = parts[1]
		rest := parts[2]
		if idx := strings.IndexByte(rest, '_'); idx >= 0 {
			h.software, h.version = rest[:idx], rest[idx+1:]
		} else {
			h.software = rest
		}
	}
	h.osHint = matchOSHint(line)

	// Confirm the host actually completes an SSH key exchange rather than
	// just sending a banner string; auth is expected to fail.
	cfg := &ssh.ClientConfig{
		Timeout:         timeout,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Auth:            []ssh.AuthMethod{ssh.Password("")},
	}
	if client, err := ssh.Dial("tcp", addr, cfg); err == nil {
		client.Close()
	}

	return h
}

func matchOSHint(s string) string {
	m, err := osHintPattern.FindStringMatch(s)
	if err != nil || m == nil {
		return ""
	}
	return m.String()
}

type smbHint struct{ os, lanman, domain, server string }

func probeSMB(target string, timeout time.Duration) *smbHint {
	opts := smb.Options{
		Host: target,
		Port: 445,
	}
	session, err := smb.NewSession(opts, false)
	if err != nil {
		return nil
	}
	defer session.Close()

	return &smbHint{
		os:     session.NativeOS,
		lanman: session.NativeLM,
	}
}

type httpHint struct{ server, osHint string }

func probeHTTP(target string, timeout time.Duration) *httpHint {
	addr := net.JoinHostPort(target, "80")
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	fmt.Fprintf(conn, "GET / HTTP/1.0\r\nHost: %s\r\n\r\n", target)

	reader := bufio.NewReader(conn)
	var server string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(strings.ToLower(line), "server:") {
			server = strings.TrimSpace(line[len("server:"):])
		}
	}

	if server == "" {
		return nil
	}
	return &httpHint{server: server, osHint: matchOSHint(server)}
}

type tlsHint struct{ version, ja3 string }

func probeTLS(target string, timeout time.Duration) *tlsHint {
	addr := net.JoinHostPort(target, "443")
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(timeout))

	client := itls.Client(conn, &itls.Config{InsecureSkipVerify: true})
	if err := client.Handshake(); err != nil {
		return nil
	}
	state := client.ConnectionState()

	return &tlsHint{version: tlsVersionName(state.Version)}
}

func tlsVersionName(v uint16) string {
	switch v {
	case itls.VersionTLS13:
		return "TLS 1.3"
	case itls.VersionTLS12:
		return "TLS 1.2"
	case itls.VersionTLS11:
		return "TLS 1.1"
	case itls.VersionTLS10:
		return "TLS 1.0"
	default:
		return "unknown"
	}
}
