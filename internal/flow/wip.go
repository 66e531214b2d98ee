// Package flow computes WIP-limit checks and cumulative-flow snapshots
// from a project's file tree. Checks are advisory: nothing in the task
// repository consults them automatically, callers enforce limits before
// creating or moving tasks if they want enforcement.
package flow

import (
	"encoding/json"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WarningConfig controls how close to a limit counts as a warning and
// whether hitting the limit actually blocks.
type WarningConfig struct {
	BlockOnLimit     bool    `json:"block_on_limit"`
	WarningThreshold float64 `json:"warning_threshold"`
}

// WIPConfig maps status names to task-count limits. A nil limit means
// the status is unconstrained.
type WIPConfig struct {
	Limits   map[string]*int `json:"wip_limits"`
	Warnings WarningConfig   `json:"wip_warnings"`
}

func intPtr(n int) *int { return &n }

// DefaultWIPConfig returns the limits used when no wip-config.json exists.
func DefaultWIPConfig() *WIPConfig {
	return &WIPConfig{
		Limits: map[string]*int{
			"backlog":  nil,
			"progress": intPtr(5),
			"review":   intPtr(3),
			"testing":  intPtr(4),
			"done":     nil,
		},
		Warnings: WarningConfig{BlockOnLimit: false, WarningThreshold: 0.8},
	}
}

// LoadWIPConfig reads a WIP config file. A missing file yields the
// defaults; an unreadable or malformed file yields a config with no
// limits at all, so a bad file never blocks anyone.
func LoadWIPConfig(path string, logger *slog.Logger) *WIPConfig {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("failed to read WIP config", "path", path, "error", err)
			return &WIPConfig{Limits: map[string]*int{}, Warnings: WarningConfig{WarningThreshold: 0.8}}
		}
		return DefaultWIPConfig()
	}

	// Pre-seed the warning defaults so keys absent from the file keep them.
	cfg := &WIPConfig{Warnings: WarningConfig{WarningThreshold: 0.8}}
	if err := json.Unmarshal(raw, cfg); err != nil {
		logger.Warn("failed to parse WIP config", "path", path, "error", err)
		return &WIPConfig{Limits: map[string]*int{}, Warnings: WarningConfig{WarningThreshold: 0.8}}
	}
	if cfg.Limits == nil {
		cfg.Limits = map[string]*int{}
	}
	return cfg
}

// WIPCheck is the result of checking one status against its limit.
type WIPCheck struct {
	Allowed bool `json:"allowed"`
	Count   int  `json:"count"`
	Limit   *int `json:"limit"`
	Warning bool `json:"warning"`
}

// WIPStatusEntry summarizes one limited status for the board view.
type WIPStatusEntry struct {
	Count   int  `json:"count"`
	Limit   int  `json:"limit"`
	Warning bool `json:"warning"`
	Blocked bool `json:"blocked"`
}

// CheckWIPLimit reports whether a task may be added to the given status.
// A nil (unconfigured) limit is always allowed and skips counting
// entirely. Missing projects and missing status folders count as zero.
func (s *Service) CheckWIPLimit(projectID, status string) WIPCheck {
	limit := s.cfg.Limits[status]
	if limit == nil {
		return WIPCheck{Allowed: true}
	}

	statusDir := filepath.Join(s.baseDir, projectID, status)
	count := countTaskFiles(statusDir)

	warning := float64(count) >= float64(*limit)*s.cfg.Warnings.WarningThreshold
	blocked := s.cfg.Warnings.BlockOnLimit && count >= *limit

	s.logger.Debug("WIP check",
		"project", projectID,
		"status", status,
		"count", count,
		"limit", *limit,
		"warning", warning,
		"blocked", blocked)

	return WIPCheck{Allowed: !blocked, Count: count, Limit: limit, Warning: warning}
}

// WIPStatus runs the limit check for every configured status.
func (s *Service) WIPStatus(projectID string) map[string]WIPStatusEntry {
	out := make(map[string]WIPStatusEntry)
	for status, limit := range s.cfg.Limits {
		if limit == nil {
			continue
		}
		check := s.CheckWIPLimit(projectID, status)
		out[status] = WIPStatusEntry{
			Count:   check.Count,
			Limit:   *limit,
			Warning: check.Warning,
			Blocked: !check.Allowed,
		}
	}
	return out
}

// countTaskFiles counts .md files recursively under dir, excluding
// README.md. A missing or unreadable directory counts as empty.
func countTaskFiles(dir string) int {
	count := 0
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".md") && name != "README.md" {
			count++
		}
		return nil
	})
	return count
}

// Service owns the flow-analytics state: the WIP configuration loaded at
// construction (not hot-reloaded) and the path of the CFD history file.
type Service struct {
	baseDir string
	cfdPath string
	cfg     *WIPConfig
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for analytics diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithConfig replaces the loaded WIP configuration.
func WithConfig(cfg *WIPConfig) Option {
	return func(s *Service) { s.cfg = cfg }
}

// NewService creates a flow analytics service over baseDir, loading WIP
// limits from cfgPath and storing CFD history at cfdPath.
func NewService(baseDir, cfgPath, cfdPath string, opts ...Option) *Service {
	s := &Service{
		baseDir: baseDir,
		cfdPath: cfdPath,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cfg == nil {
		s.cfg = LoadWIPConfig(cfgPath, s.logger)
	}
	return s
}

// Config exposes the loaded WIP configuration.
func (s *Service) Config() *WIPConfig { return s.cfg }
