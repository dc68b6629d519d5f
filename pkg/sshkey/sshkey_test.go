package sshkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keyflow/keyflow/pkg/model"
)

func TestValidFormat(t *testing.T) {
	valid := []string{
		"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFx",
		"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFx root@web01",
		"ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABgQ== deploy key for ci",
		"ssh-dss AAAAB3NzaC1kc3MAAACB legacy",
		"ecdsa-sha2-nistp256 AAAAE2VjZHNhLXNoYTItbmlzdHAyNTY=",
		"ecdsa-sha2-nistp384 AAAAE2VjZHNhLXNoYTItbmlzdHAzODQ=",
		"ecdsa-sha2-nistp521 AAAAE2VjZHNhLXNoYTItbmlzdHA1MjE=",
		"  ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIFx  ",
	}
	for _, key := range valid {
		assert.True(t, ValidFormat(key), "expected valid: %q", key)
	}

	invalid := []string{
		"",
		"ssh-ed25519",
		"just some words",
		"ssh-foo AAAAC3NzaC1lZDI1NTE5AAAAIFx",
		"ssh-ed25519 not*base64*at*all",
		"AAAAC3NzaC1lZDI1NTE5AAAAIFx ssh-ed25519",
	}
	for _, key := range invalid {
		assert.False(t, ValidFormat(key), "expected invalid: %q", key)
	}
}

func TestParseKnownHostsLine(t *testing.T) {
	t.Run("host and key split on first field", func(t *testing.T) {
		host, key, ok := ParseKnownHostsLine("web01.example.com ssh-ed25519 AAAAIFx root@web01")
		assert.True(t, ok)
		assert.Equal(t, "web01.example.com", host)
		assert.Equal(t, "ssh-ed25519 AAAAIFx root@web01", key)
	})

	t.Run("comma-joined aliases stay one host token", func(t *testing.T) {
		host, _, ok := ParseKnownHostsLine("web01,10.0.0.5,web01.example.com ssh-rsa AAAA")
		assert.True(t, ok)
		assert.Equal(t, "web01,10.0.0.5,web01.example.com", host)
	})

	t.Run("extra whitespace is collapsed", func(t *testing.T) {
		_, key, ok := ParseKnownHostsLine("web01   ssh-rsa    AAAA   comment")
		assert.True(t, ok)
		assert.Equal(t, "ssh-rsa AAAA comment", key)
	})

	t.Run("comments and short lines do not qualify", func(t *testing.T) {
		for _, line := range []string{"# managed by keyflow", "web01", "", "   "} {
			_, _, ok := ParseKnownHostsLine(line)
			assert.False(t, ok, "expected skip: %q", line)
		}
	})
}

func TestParseKnownHosts(t *testing.T) {
	input := strings.Join([]string{
		"web01.example.com ssh-ed25519 AAAAIFx root@web01",
		"",
		"# comment",
		"malformed",
		"web02.example.com ssh-rsa AAAA deploy",
	}, "\n")

	entries, skipped, err := ParseKnownHosts(strings.NewReader(input))

	assert.NoError(t, err)
	assert.Equal(t, 2, skipped)
	assert.Equal(t, []model.SSHKeyEntry{
		{Server: "web01.example.com", PublicKey: "ssh-ed25519 AAAAIFx root@web01"},
		{Server: "web02.example.com", PublicKey: "ssh-rsa AAAA deploy"},
	}, entries)
}

func TestFormatKnownHosts(t *testing.T) {
	entries := []model.SSHKeyEntry{
		{Server: "web01.example.com", PublicKey: "ssh-ed25519 AAAAIFx root@web01"},
		{Server: "web02.example.com", PublicKey: "ssh-rsa AAAA deploy", Deprecated: true},
	}

	content := FormatKnownHosts(entries)

	assert.Equal(t,
		"web01.example.com ssh-ed25519 AAAAIFx root@web01\n"+
			"web02.example.com ssh-rsa AAAA deploy\n",
		content)

	t.Run("round trips through the parser", func(t *testing.T) {
		parsed, skipped, err := ParseKnownHosts(strings.NewReader(content))
		assert.NoError(t, err)
		assert.Equal(t, 0, skipped)
		assert.Len(t, parsed, 2)
		assert.Equal(t, entries[0], parsed[0])
	})

	t.Run("no entries means empty content", func(t *testing.T) {
		assert.Equal(t, "", FormatKnownHosts(nil))
	})
}
