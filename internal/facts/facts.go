// Package facts extracts the plain values the planner needs from a host
// project's own metadata: the framework major version from composer.json and
// the developer-mode flag from app/config/parameters.yml.
package facts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/specialistvlad/assetgrid/internal/config"
	"github.com/specialistvlad/assetgrid/internal/ctxlog"
)

const (
	// frameworkPackage is the composer requirement carrying the framework version.
	frameworkPackage = "symfony/symfony"
	// devHostMarker marks a development host name. The check is a substring
	// heuristic and is fragile; it is kept because no explicit switch exists.
	devHostMarker = ".nl"
)

var (
	composerPath   = "composer.json"
	parametersPath = filepath.Join("app", "config", "parameters.yml")
	kernelPath     = filepath.Join("app", "AppKernel.php")

	majorRegex = regexp.MustCompile(`\d+`)
)

type composerFile struct {
	Require map[string]string `yaml:"require"`
}

type parametersFile struct {
	Parameters map[string]any `yaml:"parameters"`
}

// Loader is the YAML-based implementation of config.FactsLoader. It reads
// composer.json with the YAML decoder, JSON being a subset of YAML.
type Loader struct{}

// NewLoader creates a new project facts loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads the project metadata below projectRoot. Missing metadata files
// fall back to defaults with a warning; unreadable or malformed ones fail
// with a *config.LoadError.
func (l *Loader) Load(ctx context.Context, projectRoot string) (*config.Facts, error) {
	logger := ctxlog.FromContext(ctx)

	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, &config.LoadError{Source: projectRoot, Err: err}
	}
	facts := &config.Facts{ProjectRoot: root, IsDev: true}

	if _, err := os.Stat(filepath.Join(root, kernelPath)); err != nil {
		logger.Warn("Could not locate a framework project, the kernel file is missing.", "expected", kernelPath, "project_root", root)
	}

	var composer composerFile
	found, err := readYAML(filepath.Join(root, composerPath), &composer)
	switch {
	case err != nil:
		return nil, &config.LoadError{Source: composerPath, Err: err}
	case !found:
		logger.Warn("No composer.json found, framework version unknown.", "project_root", root)
	default:
		constraint := composer.Require[frameworkPackage]
		facts.FrameworkMajor = MajorVersion(constraint)
		logger.Info("Found framework version.", "constraint", constraint, "major", facts.FrameworkMajor)
	}

	var params parametersFile
	found, err = readYAML(filepath.Join(root, parametersPath), &params)
	switch {
	case err != nil:
		return nil, &config.LoadError{Source: parametersPath, Err: err}
	case !found:
		logger.Warn("No parameters file found, assuming developer mode.", "expected", parametersPath)
	default:
		if host, ok := params.Parameters["http_host"].(string); ok && host != "" {
			facts.Host = host
			facts.IsDev = IsDevHost(host)
		}
	}

	logger.Info("Developer mode resolved.", "is_dev", facts.IsDev, "host", facts.Host)
	return facts, nil
}

// IsDevHost reports whether host looks like a development host: the marker
// must appear after at least one leading character.
func IsDevHost(host string) bool {
	return strings.Index(host, devHostMarker) >= 1
}

// MajorVersion extracts the first number of a version constraint such as
// "3.4.*", "^4.4" or "~2.8". It returns 0 when no number is present.
func MajorVersion(constraint string) int {
	digits := majorRegex.FindString(constraint)
	if digits == "" {
		return 0
	}
	major, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return major
}

// readYAML decodes the file at path into out. It reports found=false without
// an error when the file does not exist.
func readYAML(path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return true, nil
}
