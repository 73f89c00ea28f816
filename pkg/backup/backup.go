package backup

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/HapoSeiz/AlertShip/pkg/errors"
)

// Execute snapshots the configured database into dir. Only file-backed
// sqlite and mysql are supported; an in-memory database has nothing to
// back up.
func Execute(driver, dsn, dir string) (string, error) {
	if dir == "" {
		return "", errors.New("backup path not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create backup directory")
	}

	stamp := time.Now().Format("20060102_150405")
	switch driver {
	case "mysql":
		dst := filepath.Join(dir, fmt.Sprintf("alertship_%s.sql", stamp))
		return dst, dumpMySQL(dsn, dst)
	case "", "sqlite":
		if dsn == "" || dsn == ":memory:" || dsn == "file::memory:" {
			return "", errors.New("in-memory database cannot be backed up")
		}
		dst := filepath.Join(dir, fmt.Sprintf("alertship_%s.db", stamp))
		return dst, copyFile(dsn, dst)
	default:
		return "", errors.Errorf("unsupported DB_DRIVER: %s", driver)
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrap(err, "open database file")
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create backup file")
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrap(err, "copy database file")
	}
	return out.Sync()
}

func dumpMySQL(dsn, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrap(err, "create backup file")
	}
	defer out.Close()

	cmd := exec.Command("mysqldump", dsn)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, "mysqldump")
	}
	return nil
}
