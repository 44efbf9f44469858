package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/shlex"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	// ProviderGitHub selects the GitHub hosting repository.
	ProviderGitHub = "github"
	// ProviderGitLab selects the GitLab hosting repository.
	ProviderGitLab = "gitlab"

	// CloneProtocolSSH clones over SSH (default).
	CloneProtocolSSH = "ssh"
	// CloneProtocolHTTPS clones over HTTPS.
	CloneProtocolHTTPS = "https"

	// UpstreamRemote is the name the upstream repository is registered under.
	UpstreamRemote = "upstream"
	// OriginRemote is the name of the downstream remote.
	OriginRemote = "origin"

	// DefaultLockFile is the lock file name created under the workspace root.
	DefaultLockFile = ".upstreamsync.lock"

	defaultRestorePath = ".gitignore"
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Settings is the validated configuration of a run. Build it with NewSettings
// or ParseSettings and treat it as read-only afterwards.
type Settings struct {
	Upstream      string        `yaml:"upstream"`
	Downstream    string        `yaml:"downstream"`
	Branches      BranchMapping `yaml:"branches"`
	OverlayBranch string        `yaml:"overlay_branch"`
	AlwaysOverlay []string      `yaml:"always_overlay"`
	ExitOnError   bool          `yaml:"exit_on_error"`
	NoPush        bool          `yaml:"no_push"`
	NoIssue       bool          `yaml:"no_issue"`
	Assignees     []string      `yaml:"assignees"`

	Provider      string   `yaml:"provider"`
	Token         string   `yaml:"token"`
	GitHubToken   string   `yaml:"github_access_token"`
	BaseURL       string   `yaml:"base_url"`
	CloneProtocol string   `yaml:"clone_protocol"`
	WorkspaceRoot string   `yaml:"workspace_root"`
	LockFile      string   `yaml:"lock_file"`
	Regenerate    []string `yaml:"regenerate"`
	RestoreFrom   string   `yaml:"restore_from"`
	RestorePaths  []string `yaml:"restore_paths"`

	regenerateCommands [][]string
}

// SettingsOverrides are the command-line values that take precedence over the file.
// Zero values leave the file value untouched.
type SettingsOverrides struct {
	Upstream         string
	Downstream       string
	UpstreamBranch   string
	DownstreamBranch string
	OverlayBranch    string
	AlwaysOverlay    []string
	ExitOnError      bool
	NoPush           bool
	NoIssue          bool
}

// NewSettings reads, overrides and validates the configuration file at path.
func NewSettings(path string, overrides SettingsOverrides) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}
	return ParseSettings(data, overrides)
}

// ParseSettings parses YAML content, applies overrides and validates the result.
func ParseSettings(data []byte, overrides SettingsOverrides) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := settings.apply(overrides); err != nil {
		return nil, err
	}
	settings.applyDefaults()

	if err := Validate(&settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// FindConfigFile searches for a configuration file in standard locations.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".upstreamsync.yaml",
		".upstreamsync.yml",
		"upstreamsync.yaml",
		"upstreamsync.yml",
		"bot_config.yaml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

func (s *Settings) apply(overrides SettingsOverrides) error {
	if overrides.Upstream != "" {
		s.Upstream = overrides.Upstream
	}
	if overrides.Downstream != "" {
		s.Downstream = overrides.Downstream
	}
	if overrides.OverlayBranch != "" {
		s.OverlayBranch = overrides.OverlayBranch
	}
	if len(overrides.AlwaysOverlay) > 0 {
		s.AlwaysOverlay = overrides.AlwaysOverlay
	}
	s.ExitOnError = s.ExitOnError || overrides.ExitOnError
	s.NoPush = s.NoPush || overrides.NoPush
	s.NoIssue = s.NoIssue || overrides.NoIssue

	if overrides.UpstreamBranch != "" || overrides.DownstreamBranch != "" {
		if overrides.UpstreamBranch == "" || overrides.DownstreamBranch == "" {
			return errors.New(
				"when overriding the branches, both --upstream-branch and --downstream-branch must be provided",
			)
		}
		s.Branches = BranchMapping{{Upstream: overrides.UpstreamBranch, Downstream: overrides.DownstreamBranch}}
	}
	return nil
}

func (s *Settings) applyDefaults() {
	if s.Provider == "" {
		s.Provider = ProviderGitHub
	}
	if s.CloneProtocol == "" {
		s.CloneProtocol = CloneProtocolSSH
	}
	if s.WorkspaceRoot == "" {
		s.WorkspaceRoot = "."
	}
	if s.LockFile == "" {
		s.LockFile = filepath.Join(s.WorkspaceRoot, DefaultLockFile)
	}
	if s.RestoreFrom == "" && s.OverlayBranch != "" {
		s.RestoreFrom = OriginRemote + "/" + s.OverlayBranch
	}
	if len(s.RestorePaths) == 0 && s.RestoreFrom != "" {
		s.RestorePaths = []string{defaultRestorePath}
	}

	token := s.Token
	if token == "" {
		token = s.GitHubToken
	}
	token = ResolveToken(token)
	if token == "" {
		token = tokenFromEnv(s.Provider)
	}
	s.Token = token
}

// Validate checks the required values and parses the regeneration commands.
func Validate(s *Settings) error {
	if s.Upstream == "" {
		return errors.New("upstream is required, please add it to your config file")
	}
	if s.Downstream == "" {
		return errors.New("downstream is required, please add it to your config file")
	}
	if len(s.Branches) == 0 {
		return errors.New("branches is required, please add at least one upstream/downstream pair")
	}
	if _, err := NewBranchMapping(s.Branches...); err != nil {
		return err
	}
	if s.Provider != ProviderGitHub && s.Provider != ProviderGitLab {
		return fmt.Errorf("provider must be %q or %q, not %q", ProviderGitHub, ProviderGitLab, s.Provider)
	}
	if s.CloneProtocol != CloneProtocolSSH && s.CloneProtocol != CloneProtocolHTTPS {
		return fmt.Errorf(
			"clone_protocol must be %q or %q, not %q", CloneProtocolSSH, CloneProtocolHTTPS, s.CloneProtocol,
		)
	}
	if s.OverlayBranch == "" && len(s.AlwaysOverlay) > 0 {
		return errors.New("always_overlay requires overlay_branch to be set")
	}

	commands := make([][]string, 0, len(s.Regenerate))
	for i, line := range s.Regenerate {
		argv, err := shlex.Split(line)
		if err != nil {
			return fmt.Errorf("regenerate[%d] %q cannot be parsed: %w", i, line, err)
		}
		if len(argv) == 0 {
			return fmt.Errorf("regenerate[%d] is empty", i)
		}
		commands = append(commands, argv)
	}
	s.regenerateCommands = commands

	return nil
}

// ForceOverlay reports whether the overlay must be re-merged into the branch
// regardless of its sentinel.
func (s *Settings) ForceOverlay(downstreamBranch string) bool {
	return slices.Contains(s.AlwaysOverlay, downstreamBranch)
}

// RegenerateCommands returns the parsed regeneration hook commands.
func (s *Settings) RegenerateCommands() [][]string {
	return s.regenerateCommands
}

// SentinelName is the file recording that the overlay was merged into a branch.
func (s *Settings) SentinelName() string {
	if s.OverlayBranch == "" {
		return ""
	}
	return "." + strings.ReplaceAll(s.OverlayBranch, "/", "_") + "_merged"
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the token from the file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

func tokenFromEnv(provider string) string {
	var names []string
	switch provider {
	case ProviderGitLab:
		names = []string{"GITLAB_TOKEN", "GL_TOKEN"}
	default:
		names = []string{"GITHUB_ACCESS_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"}
	}
	for _, name := range names {
		if t := os.Getenv(name); t != "" {
			return t
		}
	}
	return ""
}
