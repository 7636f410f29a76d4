// Package main generates a development Certificate Authority (CA) and a
// server certificate signed by it, writing them under the output directory.
// An existing CA in that directory is reused.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/JobTracker/internal/certgen"
)

const (
	caCertFile     = "ca.crt"
	caKeyFile      = "ca.key"
	serverCertFile = "server.crt"
	serverKeyFile  = "server.key"
)

func main() {
	dir := flag.String("out", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts), time.Now()); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into ./%s\n", *dir)
}

func run(dir string, hosts []string, now time.Time) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	ca, err := loadOrCreateCA(dir, now)
	if err != nil {
		return err
	}
	caCert, caKey, err := certgen.ParseCACredentials(ca)
	if err != nil {
		return err
	}

	server, err := certgen.GenerateServerCertificate(hosts, caCert, caKey, now)
	if err != nil {
		return err
	}
	return writePair(dir, serverCertFile, serverKeyFile, server)
}

func loadOrCreateCA(dir string, now time.Time) (certgen.PEMPair, error) {
	certPEM, certErr := os.ReadFile(filepath.Join(dir, caCertFile))
	keyPEM, keyErr := os.ReadFile(filepath.Join(dir, caKeyFile))
	if certErr == nil && keyErr == nil {
		return certgen.PEMPair{Cert: certPEM, Key: keyPEM}, nil
	}
	for _, err := range []error{certErr, keyErr} {
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return certgen.PEMPair{}, fmt.Errorf("read ca: %w", err)
		}
	}

	ca, err := certgen.GenerateCA("JobTracker Dev CA", now)
	if err != nil {
		return certgen.PEMPair{}, err
	}
	if err := writePair(dir, caCertFile, caKeyFile, ca); err != nil {
		return certgen.PEMPair{}, err
	}
	return ca, nil
}

// writePair writes the certificate world-readable and the key owner-only.
func writePair(dir, certName, keyName string, p certgen.PEMPair) error {
	if err := os.WriteFile(filepath.Join(dir, certName), p.Cert, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", certName, err)
	}
	if err := os.WriteFile(filepath.Join(dir, keyName), p.Key, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", keyName, err)
	}
	return nil
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
