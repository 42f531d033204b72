package db

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var backupPattern = regexp.MustCompile(`^.*[(](\d+)[)][.][Bb][Aa][Kk]$`)

// RotateBackups copies the book file to "<name>(0).bak", shifting existing
// backups up one slot first. "<name>(0).bak" is always the newest copy; the
// larger the number, the older the file. Backups past maxCopies are removed.
// A missing book file is not an error; there is simply nothing to back up.
func RotateBackups(path string, maxCopies int) error {
	if maxCopies < 1 {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("platform/db: stat book file: %w", err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("platform/db: read book directory: %w", err)
	}

	// Collect existing backup slots for this book.
	slots := make(map[int]string)
	highest := -1
	for _, entry := range entries {
		name := entry.Name()
		m := backupPattern.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if name != fmt.Sprintf("%s(%d).bak", base, n) {
			continue
		}
		slots[n] = filepath.Join(dir, name)
		if n > highest {
			highest = n
		}
	}

	// Shift older copies up, dropping any that would exceed the cap.
	for n := highest; n >= 0; n-- {
		from, ok := slots[n]
		if !ok {
			continue
		}
		if n+1 >= maxCopies {
			if err := os.Remove(from); err != nil {
				return fmt.Errorf("platform/db: drop old backup: %w", err)
			}
			continue
		}
		to := filepath.Join(dir, fmt.Sprintf("%s(%d).bak", base, n+1))
		if err := os.Rename(from, to); err != nil {
			return fmt.Errorf("platform/db: shift backup: %w", err)
		}
	}

	return copyFile(path, filepath.Join(dir, fmt.Sprintf("%s(0).bak", base)))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("platform/db: open backup source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("platform/db: create backup: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("platform/db: write backup: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("platform/db: close backup: %w", err)
	}
	return nil
}
