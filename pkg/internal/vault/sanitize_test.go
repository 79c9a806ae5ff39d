package vault_test

import (
	"strings"
	"testing"

	"github.com/yeisme/taskvault/pkg/internal/vault"
)

// TestSanitizeName 测试各类恶意或异常文件名的清洗结果.
func TestSanitizeName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "report.pdf", "report.pdf"},
		{"path separators", "../../etc/passwd", "_._etc_passwd"},
		{"windows path", `C:\Users\x\doc.txt`, "C__Users_x_doc.txt"},
		{"reserved chars", `a<b>c:d"e|f?g*h.txt`, "a_b_c_d_e_f_g_h.txt"},
		{"consecutive dots", "archive...tar.gz", "archive.tar.gz"},
		{"leading trailing dots and spaces", "  ..hidden.. ", "hidden"},
		{"empty", "", "unnamed_file"},
		{"only dots", "....", "unnamed_file"},
		{"only reserved", "???", "___"},
		{"unicode kept", "报告.pdf", "报告.pdf"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := vault.SanitizeName(c.in)
			if got != c.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

// TestSanitizeNameProperties 测试清洗结果的通用性质：非空且不含分隔符与保留字符.
func TestSanitizeNameProperties(t *testing.T) {
	inputs := []string{
		"../../../x", "a/b/c", `a\b\c`, "con<>|?.txt", "....///....",
		"normal.txt", strings.Repeat("x", 1000) + ".pdf", "报告/../最终版.docx",
	}

	for _, in := range inputs {
		got := vault.SanitizeName(in)

		if got == "" {
			t.Errorf("SanitizeName(%q) returned empty", in)
		}

		if strings.ContainsAny(got, `<>:"/\|?*`) {
			t.Errorf("SanitizeName(%q) = %q still contains reserved chars", in, got)
		}

		if strings.Contains(got, "..") {
			t.Errorf("SanitizeName(%q) = %q still contains dot-dot", in, got)
		}

		if len(got) > 255 {
			t.Errorf("SanitizeName(%q) = %d bytes, want <= 255", in, len(got))
		}
	}
}

// TestSanitizeNameTruncation 测试超长名截断保留扩展名.
func TestSanitizeNameTruncation(t *testing.T) {
	long := strings.Repeat("a", 300) + ".pdf"

	got := vault.SanitizeName(long)
	if len(got) > 255 {
		t.Fatalf("len = %d, want <= 255", len(got))
	}

	if !strings.HasSuffix(got, ".pdf") {
		t.Errorf("truncated name %q lost extension", got)
	}
}
