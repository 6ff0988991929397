package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCompileToStdout(t *testing.T) {
	path := writeSource(t, t.TempDir(), "add.sc", "2 3 + dump\n")

	code, stdout, stderr := runCLI(path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "format ELF64 executable") || !strings.Contains(stdout, "call print_dec") {
		t.Errorf("unexpected assembly:\n%s", stdout)
	}
	if stderr != "" {
		t.Errorf("expected quiet stderr, got %q", stderr)
	}
}

func TestCompileErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Unexpected Do", []string{writeSource(t, dir, "do.sc", "1 do 2 end")}, "do.sc:1:2: error: unexpected do"},
		{"Invalid Token", []string{writeSource(t, dir, "bad.sc", "1\n  2 frob")}, `bad.sc:2:4: error: invalid token "frob"`},
		{"Unterminated", []string{writeSource(t, dir, "open.sc", "1 if")}, "open.sc:1:2: error: unterminated block"},
		{"Missing File", []string{filepath.Join(dir, "missing.sc")}, "error: cannot read source"},
		{"No Args", nil, "error: accepts 1 arg(s), received 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(tt.args...)
			if code != 1 {
				t.Errorf("expected exit 1, got %d", code)
			}
			if stdout != "" {
				t.Errorf("no assembly may be written on error, got %q", stdout)
			}
			if !strings.Contains(stderr, tt.want) {
				t.Errorf("expected stderr to contain %q, got %q", tt.want, stderr)
			}
		})
	}
}

func TestCompileToFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.sc", "1 dump")
	out := filepath.Join(dir, "build", "main.asm")

	code, stdout, stderr := runCLI("-o", out, path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout should stay empty with -o, got %q", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.HasPrefix(string(data), "format ELF64 executable") {
		t.Errorf("unexpected output file content")
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.sc", "1 dump")
	out := filepath.Join(dir, "from-config.asm")
	cfg := writeSource(t, dir, "stackc.toml", "[output]\npath = \""+filepath.ToSlash(out)+"\"\n[log]\nlevel = \"info\"\n")

	code, stdout, stderr := runCLI("--config", cfg, path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout should stay empty, got %q", stdout)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("config output path not honoured: %v", err)
	}
	if !strings.Contains(stderr, "wrote assembly") {
		t.Errorf("expected info record on stderr, got %q", stderr)
	}

	bad := writeSource(t, dir, "bad.toml", "[log]\nlevel = \"loud\"\n")
	if code, _, stderr := runCLI("--config", bad, path); code != 1 || !strings.Contains(stderr, "invalid log level") {
		t.Errorf("expected config validation failure, got %d: %q", code, stderr)
	}
}

func TestVerboseLogsToStderr(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.sc", "1 dump")

	code, stdout, stderr := runCLI("-v", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if strings.Contains(stdout, "level=DEBUG") {
		t.Errorf("logs leaked into stdout")
	}
	if !strings.Contains(stderr, "msg=parsed") {
		t.Errorf("expected debug records on stderr, got %q", stderr)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name   string
		src    string
		stdout string
		code   int
	}{
		{"Add", "2 3 + dump", "5\n", 0},
		{"If True", "1 if 10 dump else 20 dump end", "10\n", 0},
		{"If False", "0 if 10 dump else 20 dump end", "20\n", 0},
		{"Exit Status", "72 asciidump 10 asciidump 3", "H\n", 3},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, dir, strings.Repeat("p", i+1)+".sc", tt.src)
			code, stdout, stderr := runCLI("run", path)
			if code != tt.code {
				t.Errorf("expected exit %d, got %d: %s", tt.code, code, stderr)
			}
			if stdout != tt.stdout {
				t.Errorf("expected %q, got %q", tt.stdout, stdout)
			}
		})
	}
}

func TestRunGasLimit(t *testing.T) {
	path := writeSource(t, t.TempDir(), "loop.sc", "while 1 do end")

	code, _, stderr := runCLI("run", "--gas", "100", path)
	if code != 1 || !strings.Contains(stderr, "gas exhausted") {
		t.Errorf("expected gas exhaustion, got %d: %q", code, stderr)
	}
}

func TestTokensCommand(t *testing.T) {
	path := writeSource(t, t.TempDir(), "t.sc", "while 1 do end")

	code, stdout, stderr := runCLI("tokens", path)
	if code != 0 {
		t.Fatalf("expected exit 0, got %d: %s", code, stderr)
	}
	want := []string{"While#0", "Int(1)", "Do#1", "End#1"}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), stdout)
	}
	for i, w := range want {
		if !strings.HasSuffix(lines[i], w) {
			t.Errorf("line %d: expected suffix %q, got %q", i, w, lines[i])
		}
	}
}

func TestVersionCommand(t *testing.T) {
	code, stdout, _ := runCLI("version")
	if code != 0 || !strings.Contains(stdout, "stackc v"+Version) {
		t.Errorf("unexpected version output (%d): %q", code, stdout)
	}
}
