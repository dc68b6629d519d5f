// Package sshkey handles the syntactic side of SSH host keys: validating
// public key lines and reading/writing known_hosts files. No cryptographic
// checks happen here; a key only has to look like a key.
package sshkey

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/keyflow/keyflow/pkg/model"
)

// Supported key algorithms. Anything else is rejected at submission time.
var keyLinePattern = regexp.MustCompile(
	`^(ssh-rsa|ssh-dss|ecdsa-sha2-nistp256|ecdsa-sha2-nistp384|ecdsa-sha2-nistp521|ssh-ed25519)` +
		` [A-Za-z0-9+/]+={0,3}( .*)?$`)

// ValidFormat reports whether publicKey is a well-formed SSH public key line:
// a supported algorithm token, a base64 body, and an optional trailing comment.
func ValidFormat(publicKey string) bool {
	return keyLinePattern.MatchString(strings.TrimSpace(publicKey))
}

// ParseKnownHostsLine splits one known_hosts line into its host field and the
// remainder rejoined with single spaces. A line qualifies when it has at least
// two whitespace-separated fields; comment lines do not qualify.
func ParseKnownHostsLine(line string) (host, publicKey string, ok bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "#") {
		return "", "", false
	}
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.Join(fields[1:], " "), true
}

// ParseKnownHosts reads a known_hosts stream leniently: well-formed lines
// become entries, everything else is skipped and counted.
func ParseKnownHosts(r io.Reader) (entries []model.SSHKeyEntry, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		host, publicKey, ok := ParseKnownHostsLine(line)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, model.SSHKeyEntry{Server: host, PublicKey: publicKey})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, err
	}
	return entries, skipped, nil
}

// FormatKnownHosts renders entries as known_hosts content, one
// "host public-key" line per entry. Original formatting and standalone
// comments are not preserved; the output is a pure function of the entries.
func FormatKnownHosts(entries []model.SSHKeyEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Server)
		sb.WriteByte(' ')
		sb.WriteString(e.PublicKey)
		sb.WriteByte('\n')
	}
	return sb.String()
}
