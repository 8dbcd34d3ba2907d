package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// PNGFilename returns "<symbol>.png". Symbols that would escape the target
// directory are rejected.
func PNGFilename(symbol string) (string, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return "", fmt.Errorf("empty symbol name")
	}
	if strings.ContainsAny(symbol, `/\`) || symbol == "." || symbol == ".." {
		return "", fmt.Errorf("symbol name %q is not a valid file name", symbol)
	}
	return symbol + ".png", nil
}

// UserDir returns <UserConfigDir>/iconpng, falling back to ~/.config/iconpng
// and finally ./.iconpng when no home can be found.
func UserDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			return ".iconpng"
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "iconpng")
}
