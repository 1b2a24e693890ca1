package config

import (
	"os"
	"path/filepath"
)

// FileNames are the config file names Find looks for, in priority order.
var FileNames = []string{".flexview.yaml", ".flexview.yml", ".flexview.toml", ".flexview.json"}

// Find looks for a config file in dir and then in each parent of dir,
// stopping after the user's home directory or the filesystem root. An empty
// dir means the working directory.
func Find(dir string) (string, bool) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", false
		}
		dir = wd
	}
	for _, d := range searchDirs(dir) {
		for _, name := range FileNames {
			p := filepath.Join(d, name)
			if fi, err := os.Stat(p); err == nil && fi.Mode().IsRegular() {
				return p, true
			}
		}
	}
	return "", false
}

// searchDirs lists dir and its ancestors, nearest first.
func searchDirs(dir string) []string {
	home, _ := os.UserHomeDir()
	dirs := []string{dir}
	for dir != home {
		up := filepath.Dir(dir)
		if up == dir {
			break
		}
		dir = up
		dirs = append(dirs, dir)
	}
	return dirs
}

// Resolve loads the config at path, or the one Find locates from the
// working directory when path is empty. No file means defaults.
func Resolve(path string) (Options, string, error) {
	if path == "" {
		found, ok := Find("")
		if !ok {
			return Default(), "", nil
		}
		path = found
	}
	opts, err := Load(path)
	return opts, path, err
}
