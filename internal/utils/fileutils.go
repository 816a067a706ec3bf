package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether path exists and is a directory
func DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileSize returns the size of a file in bytes
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	return info.Size(), nil
}

// HumanSize formats a byte count as KB below one megabyte and MB above
func HumanSize(size int64) string {
	const kb = 1024.0
	if float64(size) < kb*kb {
		return fmt.Sprintf("%.1f KB", float64(size)/kb)
	}
	return fmt.Sprintf("%.2f MB", float64(size)/(kb*kb))
}

// ExpandHomeDir expands a path if it starts with "~/"
func ExpandHomeDir(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// TailExcerpt keeps the last max bytes of s and says how much was cut from
// the front. dropped counts bytes already discarded before s was captured.
func TailExcerpt(s string, max int, dropped int64) string {
	s = strings.TrimRight(s, "\n")
	if max > 0 && len(s) > max {
		cut := len(s) - max
		for cut < len(s) && !utf8.RuneStart(s[cut]) {
			cut++
		}
		dropped += int64(cut)
		s = s[cut:]
	}
	if dropped > 0 {
		return fmt.Sprintf("... (%d earlier bytes truncated)\n%s", dropped, s)
	}
	return s
}
