package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Exposure describes how a vault directory relates to an enclosing git repo
type Exposure struct {
	IsRepo    bool
	Tracked   []string // Vault files tracked by git (bad)
	Unignored []string // Vault files not in .gitignore (warning)
	Ignored   []string // Vault files in .gitignore (good)
}

// Exposed reports whether any vault file is tracked or not ignored
func (e *Exposure) Exposed() bool {
	return len(e.Tracked) > 0 || len(e.Unignored) > 0
}

// IsGitRepo checks if dir is inside a git work tree
func IsGitRepo(dir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(dir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = dir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(dir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = dir
	// exit code 0 means ignored
	return cmd.Run() == nil
}

// CheckExposure classifies files (names relative to dir)
func CheckExposure(dir string, files []string) *Exposure {
	exp := &Exposure{}
	if !IsGitRepo(dir) {
		return exp
	}
	exp.IsRepo = true

	for _, file := range files {
		switch {
		case IsTracked(dir, file):
			exp.Tracked = append(exp.Tracked, file)
		case IsIgnored(dir, file):
			exp.Ignored = append(exp.Ignored, file)
		default:
			exp.Unignored = append(exp.Unignored, file)
		}
	}
	return exp
}

// FormatExposure formats the result for display; empty outside a repo
func FormatExposure(exp *Exposure) string {
	if !exp.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")
	result.WriteString("   warning: vault directory is inside a git work tree\n")

	for _, file := range exp.Tracked {
		result.WriteString(fmt.Sprintf("   error: %s tracked by git (run: git rm --cached %s)\n", file, file))
	}
	for _, file := range exp.Unignored {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", file))
	}
	if !exp.Exposed() && len(exp.Ignored) > 0 {
		result.WriteString(fmt.Sprintf("   ok: %d vault file(s) in .gitignore\n", len(exp.Ignored)))
	}

	return result.String()
}
