package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths. Everything is resolved
// relative to the executable location so the tool behaves the same no
// matter which directory it is launched from.
type Paths struct {
	ExecutableDir string
	InputDir      string
	OutputDir     string
	LogsDir       string
}

// executableDir returns the directory of the running binary with
// symlinks resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}
	return filepath.Dir(exe), nil
}

// GetPaths returns the application paths derived from the configuration.
func GetPaths(cfg *Config) *Paths {
	return &Paths{
		ExecutableDir: cfg.Paths.ExecutableDir,
		InputDir:      cfg.GetInputDir(),
		OutputDir:     cfg.GetOutputDir(),
		LogsDir:       cfg.GetLogsDir(),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.InputDir,
		p.OutputDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// OutputPath returns the path of one processed artifact for the given
// source document. The artifact keeps the source's base name under the
// configured prefix: raw01.docx becomes Processed_raw01.csv and so on.
func (p *Paths) OutputPath(prefix, sourcePath, ext string) string {
	return filepath.Join(p.OutputDir, OutputName(prefix, sourcePath, ext))
}

// OutputName derives a processed artifact's file name from its source.
func OutputName(prefix, sourcePath, ext string) string {
	base := filepath.Base(sourcePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return prefix + stem + "." + ext
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs path resolution information for debugging
func (p *Paths) LogPathResolution() {
	slog.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("input", p.InputDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		))
}
