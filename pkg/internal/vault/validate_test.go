package vault_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/vault"
)

func newTestValidator(mutate func(*configs.VaultConfig)) *vault.Validator {
	cfg := &configs.VaultConfig{
		MaxFileSize:      1 << 20,
		DeniedExtensions: []string{"exe", "dll", "sh"},
		ScanEnabled:      true,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return vault.NewValidator(cfg, nil)
}

func TestCheckDeniedExtension(t *testing.T) {
	v := newTestValidator(nil)

	_, err := v.Check("setup.exe", []byte("MZ binary"), "")
	var verr *vault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "file_name" {
		t.Errorf("unexpected field: %s", verr.Field)
	}
}

func TestCheckAllowList(t *testing.T) {
	v := newTestValidator(func(cfg *configs.VaultConfig) {
		cfg.AllowedExtensions = []string{"pdf", "txt"}
	})

	if _, err := v.Check("notes.txt", []byte("hello"), ""); err != nil {
		t.Fatalf("txt should pass allow list: %v", err)
	}
	if _, err := v.Check("photo.png", []byte("hello"), ""); err == nil {
		t.Fatal("png should be rejected by allow list")
	}
}

func TestCheckSizeLimit(t *testing.T) {
	v := newTestValidator(func(cfg *configs.VaultConfig) {
		cfg.MaxFileSize = 16
	})

	_, err := v.Check("big.txt", []byte(strings.Repeat("a", 17)), "")
	var verr *vault.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	if _, err := v.Check("small.txt", []byte("tiny"), ""); err != nil {
		t.Fatalf("small file should pass: %v", err)
	}
}

func TestCheckEmptyContent(t *testing.T) {
	v := newTestValidator(nil)
	if _, err := v.Check("empty.txt", nil, ""); err == nil {
		t.Fatal("empty content must be rejected")
	}
}

func TestCheckDangerousPattern(t *testing.T) {
	v := newTestValidator(nil)

	cases := []string{
		"<SCRIPT>alert(1)</script>",
		"prefix <?php system($_GET['c']); ?>",
		"#!/bin/bash\nrm -rf /",
	}
	for _, content := range cases {
		_, err := v.Check("page.txt", []byte(content), "")
		var serr *vault.SecurityError
		if !errors.As(err, &serr) {
			t.Fatalf("content %q: expected SecurityError, got %v", content, err)
		}
		if serr.Quarantine {
			t.Errorf("content %q: heuristic match must reject, not quarantine", content)
		}
	}
}

func TestCheckScanDisabled(t *testing.T) {
	// ScanEnabled 只控制外部扫描器, 内置特征检查始终生效
	scanner := &recordingScanner{}
	cfg := &configs.VaultConfig{MaxFileSize: 1 << 20, ScanEnabled: false}
	v := vault.NewValidator(cfg, scanner)

	if _, err := v.Check("page.txt", []byte("<script>ok</script>"), ""); err == nil {
		t.Fatal("dangerous pattern must be rejected even with scanning disabled")
	}
	if _, err := v.Check("notes.txt", []byte("plain notes"), ""); err != nil {
		t.Fatalf("clean content should pass: %v", err)
	}
	if scanner.called {
		t.Error("external scanner must not run when disabled")
	}
}

type recordingScanner struct{ called bool }

func (s *recordingScanner) Scan([]byte) (string, error) {
	s.called = true
	return "", nil
}

func TestCheckScanWindow(t *testing.T) {
	v := newTestValidator(func(cfg *configs.VaultConfig) {
		cfg.ScanMaxBytes = 8
	})
	// pattern sits beyond the scan window, so it must pass
	content := []byte("aaaaaaaaaaaaaaaa<script>")
	if _, err := v.Check("page.txt", content, ""); err != nil {
		t.Fatalf("pattern outside scan window should pass: %v", err)
	}
}

type stubScanner struct {
	reason string
	err    error
}

func (s stubScanner) Scan([]byte) (string, error) { return s.reason, s.err }

func TestCheckExternalScanner(t *testing.T) {
	cfg := &configs.VaultConfig{MaxFileSize: 1 << 20, ScanEnabled: true}

	v := vault.NewValidator(cfg, stubScanner{reason: "eicar signature"})
	_, err := v.Check("a.txt", []byte("data"), "")
	var serr *vault.SecurityError
	if !errors.As(err, &serr) || !serr.Quarantine {
		t.Fatalf("expected quarantine from scanner hit, got %v", err)
	}

	// scanner failure is treated the same as a hit
	v = vault.NewValidator(cfg, stubScanner{err: errors.New("engine down")})
	_, err = v.Check("a.txt", []byte("data"), "")
	if !errors.As(err, &serr) || !serr.Quarantine {
		t.Fatalf("expected quarantine on scanner failure, got %v", err)
	}
}

func TestCheckSniffedMime(t *testing.T) {
	v := newTestValidator(nil)

	verdict, err := v.Check("report.pdf", []byte("%PDF-1.7 stub"), "application/pdf")
	if err != nil {
		t.Fatalf("pdf should pass: %v", err)
	}
	if verdict.MimeType != "application/pdf" {
		t.Errorf("sniffed mime = %s, want application/pdf", verdict.MimeType)
	}
	if verdict.Category != vault.CategoryDocument {
		t.Errorf("category = %s, want document", verdict.Category)
	}
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		mime string
		want vault.ObjectCategory
	}{
		{"a.pdf", "", vault.CategoryDocument},
		{"b.png", "", vault.CategoryImage},
		{"c.mp4", "", vault.CategoryVideo},
		{"d.flac", "", vault.CategoryAudio},
		{"e.tar", "", vault.CategoryArchive},
		{"f.go", "", vault.CategoryCode},
		{"g.json", "", vault.CategoryData},
		{"noext", "image/x-custom", vault.CategoryImage},
		{"noext", "application/octet-stream", vault.CategoryOther},
	}
	for _, tc := range cases {
		if got := vault.Categorize(tc.name, tc.mime); got != tc.want {
			t.Errorf("Categorize(%q, %q) = %s, want %s", tc.name, tc.mime, got, tc.want)
		}
	}
}
