package bot

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/finger/internal/agent"
)

// DefaultEntryFile is the script file that marks a bot directory.
const DefaultEntryFile = "main.lua"

// MetadataLoader reads script metadata without starting the script.
type MetadataLoader interface {
	LoadMetadata(path string) (agent.Metadata, error)
}

// Discover scans root recursively for directories containing entryFile.
// Hidden directories and node_modules are skipped, and a bot directory is
// not descended into. Definitions whose metadata fails to load are logged
// and dropped. Entries start disabled with no instances, ordered by path.
func Discover(root, entryFile string, loader MetadataLoader, logger Logger) []Entry {
	if entryFile == "" {
		entryFile = DefaultEntryFile
	}
	if logger == nil {
		logger = noopLogger{}
	}

	var entries []Entry
	for _, script := range findScripts(root, entryFile, logger) {
		name := definitionName(root, script)
		md, err := loader.LoadMetadata(script)
		if err != nil {
			logger.Error("failed to load bot", "bot", name, "error", err)
			continue
		}
		entries = append(entries, Entry{
			Definition: Definition{
				Name:          name,
				WindowPattern: md.WindowPattern,
				Description:   md.Description,
				ScriptPath:    script,
			},
		})
		logger.Debug("bot discovered", "bot", name, "pattern", md.WindowPattern)
	}
	logger.Info("bots discovered", "root", root, "count", len(entries))
	return entries
}

func findScripts(dir, entryFile string, logger Logger) []string {
	items, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("cannot read bots directory", "dir", dir, "error", err)
		return nil
	}

	var scripts []string
	for _, item := range items {
		if !item.IsDir() {
			continue
		}
		name := item.Name()
		if strings.HasPrefix(name, ".") || name == "node_modules" {
			continue
		}
		sub := filepath.Join(dir, name)
		candidate := filepath.Join(sub, entryFile)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			scripts = append(scripts, candidate)
			continue
		}
		scripts = append(scripts, findScripts(sub, entryFile, logger)...)
	}
	return scripts
}

// definitionName is the script's directory relative to root with '/'
// separators.
func definitionName(root, script string) string {
	dir := filepath.Dir(script)
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		rel = dir
	}
	return filepath.ToSlash(rel)
}
