// Package validation provides input validation for plan files, namespaces
// and binaries named by command steps.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Common validation errors.
var (
	ErrEmptyInput        = errors.New("input cannot be empty")
	ErrInvalidBinaryName = errors.New("invalid binary name")
	ErrInvalidNamespace  = errors.New("invalid namespace")
	ErrInvalidPlanPath   = errors.New("invalid plan path")
	ErrPathTraversal     = errors.New("path traversal detected")
	ErrInvalidPath       = errors.New("invalid path")
	ErrCommandInjection  = errors.New("potential command injection detected")
)

var (
	// binaryNameRegex matches executable names looked up on PATH.
	// Examples: "go", "node", "python3.11", "g++"
	binaryNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._+-]*$`)

	// namespaceRegex matches preference key namespaces.
	// Examples: "stepwise", "acme.project-setup"
	namespaceRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

	// shellMetaChars contains shell metacharacters that could enable injection
	shellMetaChars = []string{";", "|", "&", "$", "`", "(", ")", "{", "}", "<", ">", "\n", "\r", "\\"}
)

// ValidateBinaryName validates a binary a command step requires.
func ValidateBinaryName(name string) error {
	if name == "" {
		return ErrEmptyInput
	}
	if len(name) > 256 {
		return fmt.Errorf("%w: name too long", ErrInvalidBinaryName)
	}
	if !binaryNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidBinaryName, name)
	}
	return nil
}

// ValidateNamespace validates a preference key namespace. Empty means the
// default namespace and is accepted.
func ValidateNamespace(ns string) error {
	if ns == "" {
		return nil
	}
	if len(ns) > 128 {
		return fmt.Errorf("%w: namespace too long", ErrInvalidNamespace)
	}
	if !namespaceRegex.MatchString(ns) {
		return fmt.Errorf("%w: %q contains invalid characters", ErrInvalidNamespace, ns)
	}
	if strings.HasSuffix(ns, ".") || strings.Contains(ns, "..") {
		return fmt.Errorf("%w: %q has an empty segment", ErrInvalidNamespace, ns)
	}
	return nil
}

// ValidatePlanPath validates a plan file path supplied by a remote caller.
// Empty means the configured plan and is accepted.
func ValidatePlanPath(path string) error {
	if path == "" {
		return nil
	}
	if err := ValidatePath(path); err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return nil
	default:
		return fmt.Errorf("%w: %q must be a .yaml or .yml file", ErrInvalidPlanPath, path)
	}
}

// ValidatePath validates a file path and prevents path traversal attacks.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyInput
	}

	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	if containsPathTraversal(path) {
		return fmt.Errorf("%w: %q contains traversal sequence", ErrPathTraversal, path)
	}

	if containsShellMeta(path) {
		return fmt.Errorf("%w: %q contains shell metacharacters", ErrCommandInjection, path)
	}

	return nil
}

// ValidatePathWithBase validates that path, once joined to basePath when
// relative, stays within basePath.
func ValidatePathWithBase(path, basePath string) error {
	if path == "" {
		return ErrEmptyInput
	}
	if strings.Contains(path, "\x00") {
		return fmt.Errorf("%w: path contains null byte", ErrInvalidPath)
	}

	cleanBase := filepath.Clean(basePath)
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		cleanPath = filepath.Join(cleanBase, cleanPath)
	}

	rel, err := filepath.Rel(cleanBase, cleanPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: path %q escapes base directory %q", ErrPathTraversal, path, basePath)
	}

	return nil
}

// containsShellMeta checks if a string contains shell metacharacters.
func containsShellMeta(s string) bool {
	for _, char := range shellMetaChars {
		if strings.Contains(s, char) {
			return true
		}
	}
	return false
}

// containsPathTraversal checks for common path traversal patterns.
func containsPathTraversal(path string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(path), "/") {
		if seg == ".." {
			return true
		}
	}

	lower := strings.ToLower(path)
	return strings.Contains(lower, "%2e%2e")
}
