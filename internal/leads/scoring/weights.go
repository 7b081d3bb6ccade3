package scoring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// Category is one of the fixed, label-keyed weight tables.
type Category string

const (
	CategoryRoleInDecision Category = "role_in_decision"
	CategoryCompanySize    Category = "company_size"
	CategoryIndustry       Category = "industry"
	CategoryLocation       Category = "location"
	CategoryLeadSource     Category = "lead_source"
)

// Labels inside the company_size and location tables.
const (
	SizeLarge  = "large"
	SizeMedium = "medium"
	SizeSmall  = "small"

	LocationTargetRegion = "target_region"
	LocationNonTarget    = "non_target"
)

const defaultStaleAfterDays = 30

// WeightsConfig is the editable form of the weight table. It is what gets
// read from YAML; the engine only ever sees the frozen Weights built from it.
type WeightsConfig struct {
	RoleInDecision map[string]int `yaml:"role_in_decision"`
	CompanySize    map[string]int `yaml:"company_size"`
	Industry       map[string]int `yaml:"industry"`
	Location       map[string]int `yaml:"location"`
	LeadSource     map[string]int `yaml:"lead_source"`

	BaseScore         int `yaml:"base_score"`
	NotesAdded        int `yaml:"notes_added"`
	FollowUpScheduled int `yaml:"follow_up_scheduled"`
	StatusContacted   int `yaml:"status_contacted"`
	NoUpdate30Days    int `yaml:"no_update_30_days"`
	StatusCold        int `yaml:"status_cold"`

	TargetRegions  []string `yaml:"target_regions"`
	StaleAfterDays int      `yaml:"stale_after_days"`
}

// DefaultWeightsConfig returns a fresh copy of the built-in weight table.
func DefaultWeightsConfig() WeightsConfig {
	return WeightsConfig{
		RoleInDecision: map[string]int{
			"Decision Maker":      30,
			"Influencer":          15,
			"End User":            5,
			"Champion":            20,
			"Gatekeeper":          10,
			"Technical Evaluator": 15,
			"Intern":              0,
		},
		CompanySize: map[string]int{
			SizeLarge:  20, // >500 employees
			SizeMedium: 10, // 50-500 employees
			SizeSmall:  0,
		},
		Industry: map[string]int{
			"Technology":    15,
			"Healthcare":    15,
			"Finance":       15,
			"Manufacturing": 10,
			"Retail":        8,
			"Education":     10,
			"Other":         0,
		},
		Location: map[string]int{
			LocationTargetRegion: 10,
			LocationNonTarget:    0,
		},
		LeadSource: map[string]int{
			"Website demo request": 40,
			"Demo Request":         40,
			"Referral":             30,
			"Event/Conference":     20,
			"Trade Show":           20,
			"Cold outreach list":   5,
			"Cold Email":           5,
			"LinkedIn":             15,
			"Website":              10,
			"Other":                0,
		},
		BaseScore:         5,
		NotesAdded:        10,
		FollowUpScheduled: 10,
		StatusContacted:   15,
		NoUpdate30Days:    -10,
		StatusCold:        -30,
		TargetRegions:     []string{"California", "New York", "Texas", "Florida", "London", "Toronto"},
		StaleAfterDays:    defaultStaleAfterDays,
	}
}

// LoadWeightsFile reads a YAML weight file layered over the defaults.
// Keys missing from the file keep their default value; a missing file
// yields the defaults.
func LoadWeightsFile(path string) (*Weights, error) {
	cfg := DefaultWeightsConfig()
	if strings.TrimSpace(path) == "" {
		return NewWeights(cfg), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewWeights(cfg), nil
		}
		return nil, fmt.Errorf("read weights file: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse weights file %s: %w", path, err)
	}
	return NewWeights(cfg), nil
}

type table map[string]int

// Weights is the immutable weight table used by the engine. Safe for
// concurrent use; nothing mutates it after NewWeights returns.
type Weights struct {
	tables map[Category]table

	baseScore         int
	notesAdded        int
	followUpScheduled int
	statusContacted   int
	noUpdate30Days    int
	statusCold        int

	targetRegions       []string
	foldedTargetRegions []string
	staleAfterDays      int
}

// NewWeights freezes cfg. Maps and slices are copied so later edits to cfg
// do not leak into the returned table. Weight values are not range-checked.
func NewWeights(cfg WeightsConfig) *Weights {
	w := &Weights{
		tables: map[Category]table{
			CategoryRoleInDecision: copyTable(cfg.RoleInDecision),
			CategoryCompanySize:    copyTable(cfg.CompanySize),
			CategoryIndustry:       copyTable(cfg.Industry),
			CategoryLocation:       copyTable(cfg.Location),
			CategoryLeadSource:     copyTable(cfg.LeadSource),
		},
		baseScore:         cfg.BaseScore,
		notesAdded:        cfg.NotesAdded,
		followUpScheduled: cfg.FollowUpScheduled,
		statusContacted:   cfg.StatusContacted,
		noUpdate30Days:    cfg.NoUpdate30Days,
		statusCold:        cfg.StatusCold,
		staleAfterDays:    cfg.StaleAfterDays,
	}
	if w.staleAfterDays <= 0 {
		w.staleAfterDays = defaultStaleAfterDays
	}

	fold := cases.Fold()
	for _, region := range cfg.TargetRegions {
		trimmed := strings.TrimSpace(region)
		if trimmed == "" {
			continue
		}
		w.targetRegions = append(w.targetRegions, trimmed)
		w.foldedTargetRegions = append(w.foldedTargetRegions, fold.String(trimmed))
	}
	return w
}

// DefaultWeights returns the frozen built-in weight table.
func DefaultWeights() *Weights {
	return NewWeights(DefaultWeightsConfig())
}

// WithTargetRegions returns a copy of w with the region list replaced.
func (w *Weights) WithTargetRegions(regions []string) *Weights {
	cfg := w.Config()
	cfg.TargetRegions = regions
	return NewWeights(cfg)
}

// Weight returns the points for label in category, or 0 when either is unknown.
func (w *Weights) Weight(category Category, label string) int {
	return w.tables[category][label]
}

func (w *Weights) BaseScore() int         { return w.baseScore }
func (w *Weights) NotesAdded() int        { return w.notesAdded }
func (w *Weights) FollowUpScheduled() int { return w.followUpScheduled }
func (w *Weights) StatusContacted() int   { return w.statusContacted }
func (w *Weights) NoUpdate30Days() int    { return w.noUpdate30Days }
func (w *Weights) StatusCold() int        { return w.statusCold }
func (w *Weights) StaleAfterDays() int    { return w.staleAfterDays }

// TargetRegions returns a copy of the configured target region names.
func (w *Weights) TargetRegions() []string {
	return append([]string(nil), w.targetRegions...)
}

// Config returns an editable copy of the table.
func (w *Weights) Config() WeightsConfig {
	return WeightsConfig{
		RoleInDecision:    copyTable(w.tables[CategoryRoleInDecision]),
		CompanySize:       copyTable(w.tables[CategoryCompanySize]),
		Industry:          copyTable(w.tables[CategoryIndustry]),
		Location:          copyTable(w.tables[CategoryLocation]),
		LeadSource:        copyTable(w.tables[CategoryLeadSource]),
		BaseScore:         w.baseScore,
		NotesAdded:        w.notesAdded,
		FollowUpScheduled: w.followUpScheduled,
		StatusContacted:   w.statusContacted,
		NoUpdate30Days:    w.noUpdate30Days,
		StatusCold:        w.statusCold,
		TargetRegions:     w.TargetRegions(),
		StaleAfterDays:    w.staleAfterDays,
	}
}

func copyTable(src map[string]int) table {
	dst := make(table, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
