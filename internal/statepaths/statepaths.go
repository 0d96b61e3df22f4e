// Package statepaths resolves the process-local state files under the
// configured file_state_dir.
package statepaths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	asanaIDsFilename = "asana_ids.json"
	ledgerFilename   = "procesados.json"
	chatFilename     = "chat.json"
	capturesFilename = "captures.jsonl"
	lockDirName      = ".fslocks"
	defaultStateDir  = "~/.jarvis"
)

func FileStateDir() string {
	dir := strings.TrimSpace(viper.GetString("file_state_dir"))
	if dir == "" {
		dir = defaultStateDir
	}
	return expandHomePath(dir)
}

// AsanaIDsPath is the identifier cache file.
func AsanaIDsPath() string {
	return filepath.Join(FileStateDir(), asanaIDsFilename)
}

// LedgerPath is the processed-message dedup ledger.
func LedgerPath() string {
	return filepath.Join(FileStateDir(), ledgerFilename)
}

// ChatPath records the Telegram chat that receives scheduled digests.
func ChatPath() string {
	return filepath.Join(FileStateDir(), chatFilename)
}

// CapturesLogPath is the JSONL audit trail of created tasks.
func CapturesLogPath() string {
	return filepath.Join(FileStateDir(), capturesFilename)
}

func LockRoot() string {
	return filepath.Join(FileStateDir(), lockDirName)
}

func expandHomePath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil || strings.TrimSpace(home) == "" {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
