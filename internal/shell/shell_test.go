package shell

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"simplefs/internal/disk"
)

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{
			input:    "copyin report.txt 3",
			expected: []string{"copyin", "report.txt", "3"},
		},
		{
			input:    "copyin \"my file.txt\" 3",
			expected: []string{"copyin", "my file.txt", "3"},
		},
		{
			input:    "  stat   7  ",
			expected: []string{"stat", "7"},
		},
		{
			input:    "copyout 3 'out dir/file'",
			expected: []string{"copyout", "3", "out dir/file"},
		},
		{
			input:    "",
			expected: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			parts := parseCommand(tc.input)

			if !reflect.DeepEqual(parts, tc.expected) {
				t.Errorf("Input: %s\nExpected: %v\nActual: %v", tc.input, tc.expected, parts)
			}
		})
	}
}

func TestShellSession(t *testing.T) {
	dev := setupDisk(t)

	session := strings.Join([]string{
		"format",
		"mount",
		"create",
		"stat 0",
		"remove 0",
		"unmount",
		"exit",
	}, "\n")

	var out bytes.Buffer
	shell := New(dev, strings.NewReader(session), &out)
	if err := shell.Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	for _, want := range []string{
		"disk formatted.",
		"disk mounted.",
		"created inode 0.",
		"inode 0 has size 0 bytes.",
		"removed inode 0.",
		"disk unmounted.",
		"disk block reads",
		"disk block writes",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("session output missing %q:\n%s", want, out.String())
		}
	}
}

func TestShellCopyInCopyOut(t *testing.T) {
	dev := setupDisk(t)
	dir := t.TempDir()

	content := strings.Repeat("simple file system\n", 500)
	source := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(source, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	target := filepath.Join(dir, "out.txt")

	session := strings.Join([]string{
		"format",
		"mount",
		"create",
		"copyin \"" + source + "\" 0",
		"copyout 0 \"" + target + "\"",
		"exit",
	}, "\n")

	var out bytes.Buffer
	if err := New(dev, strings.NewReader(session), &out).Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	copied, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if string(copied) != content {
		t.Errorf("copyout produced different content (%d bytes; want %d)", len(copied), len(content))
	}
}

func TestShellReportsErrors(t *testing.T) {
	dev := setupDisk(t)

	session := strings.Join([]string{
		"stat 0", // not mounted
		"bogus",
		"exit",
	}, "\n")

	var out bytes.Buffer
	if err := New(dev, strings.NewReader(session), &out).Run(); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if !strings.Contains(out.String(), "not mounted") {
		t.Errorf("missing mount-state error in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("missing unknown-command error in output:\n%s", out.String())
	}
}

func setupDisk(t *testing.T) *disk.Disk {
	t.Helper()

	dev, err := disk.Open(filepath.Join(t.TempDir(), "test.img"), 100)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { dev.Close() })

	return dev
}
