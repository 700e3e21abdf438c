package httputil

import (
	"net/url"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid HTTPS", "https://example.com/path", false},
		{"HTTP rejected", "http://example.com/path", true},
		{"javascript scheme rejected", "javascript:alert(1)", true},
		{"data scheme rejected", "data:text/html,<h1>Hi</h1>", true},
		{"FTP rejected", "ftp://example.com/file", true},
		{"empty string", "", true},
		{"no host", "https://", true},
		{"valid with port", "https://example.com:8080/path", false},
		{"valid with query", "https://example.com/path?q=test&a=b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateIMDbID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid", "tt0078748", false},
		{"valid long", "tt12345678", false},
		{"empty", "", true},
		{"missing prefix", "0078748", true},
		{"too short", "tt12", true},
		{"path traversal", "../../etc/passwd", true},
		{"query injection", "tt0078748&apikey=x", true},
		{"shell injection", "tt123; rm -rf /", true},
		{"newline injection", "tt0078748\n", true},
		{"uppercase prefix", "TT0078748", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIMDbID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIMDbID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Alien (1979)", "Alien (1979)"},
		{"color codes", "\x1b[31mAlien\x1b[0m", "Alien"},
		{"bell and null", "Ali\x07en\x00", "Alien"},
		{"newlines", "line one\nline two", "line one line two"},
		{"unicode kept", "Amélie", "Amélie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"normal filename", "movie.mkv", "movie.mkv"},
		{"path traversal", "../../etc/passwd", "passwd"},
		{"directory components", "/home/user/secret.txt", "secret.txt"},
		{"shell metacharacters", "movie; rm -rf /.mkv", ".mkv"},         // filepath.Base strips to ".mkv"
		{"null bytes", "movie\x00.mkv", "movie.mkv"},
		{"Windows special chars", "movie<>:\"|?*.mkv", "movie_______.mkv"},
		{"double dots", "movie..mkv", "movie_mkv"},
		{"empty string", "", "untitled"},
		{"just dots", "..", "_"},                                                      // filepath.Base("..") = "..", replacer makes "_"
		{"just dot", ".", "untitled"},
		{"backslash traversal", "..\\..\\windows\\system32", "____windows_system32"}, // on linux, backslash isn't path sep
		{"XSS payload", "<script>alert(1)</script>.mkv", "script_.mkv"},              // filepath.Base handles angle brackets
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeFilename(tt.input)
			if got != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSafeDownloadPath(t *testing.T) {
	tests := []struct {
		name     string
		dir      string
		filename string
		wantErr  bool
	}{
		{"normal", "/tmp/downloads", "movie.mkv", false},
		{"path traversal attempt", "/tmp/downloads", "../../etc/passwd", false}, // sanitized to "passwd"
		{"shell injection", "/tmp/downloads", "$(whoami).mkv", false},          // sanitized
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := SafeDownloadPath(tt.dir, tt.filename)
			if (err != nil) != tt.wantErr {
				t.Errorf("SafeDownloadPath(%q, %q) error = %v, wantErr %v", tt.dir, tt.filename, err, tt.wantErr)
			}
			if err == nil && path == "" {
				t.Error("SafeDownloadPath returned empty path without error")
			}
		})
	}
}

func TestBuildQueryURL(t *testing.T) {
	q := url.Values{}
	q.Set("s", "star wars")
	q.Set("page", "2")

	tests := []struct {
		name     string
		base     string
		path     string
		query    url.Values
		expected string
	}{
		{"bare host", "www.omdbapi.com", "", q, "https://www.omdbapi.com?page=2&s=star+wars"},
		{"trailing slash", "https://www.omdbapi.com/", "/", q, "https://www.omdbapi.com/?page=2&s=star+wars"},
		{"with path", "https://img.omdbapi.com", "v1", nil, "https://img.omdbapi.com/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQueryURL(tt.base, tt.path, tt.query)
			if got != tt.expected {
				t.Errorf("BuildQueryURL() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	got := Redact("https://www.omdbapi.com/?apikey=secret&s=alien")
	if strings.Contains(got, "secret") {
		t.Errorf("Redact() leaked key: %q", got)
	}
	if !strings.Contains(got, "s=alien") {
		t.Errorf("Redact() dropped query: %q", got)
	}

	plain := "https://www.omdbapi.com/?s=alien"
	if got := Redact(plain); got != plain {
		t.Errorf("Redact(%q) = %q, want unchanged", plain, got)
	}
}
