// Package classifier resolves a transaction's account path and description
// to a cost category through an ordered rule cascade: user overrides, the
// static account table, account-path keywords, description keywords, then
// the default. It records which tier satisfied each row so imports can
// report mapping coverage.
package classifier

import (
	"sort"
	"strings"

	"github.com/buildledger/import-backend/internal/domain/model"
)

// Tier identifies which rule level classified a row.
type Tier int

const (
	TierOverride Tier = iota + 1
	TierStatic
	TierAccountKeyword
	TierDescriptionKeyword
	TierDefault
)

// String returns the tier label used in import reports.
func (t Tier) String() string {
	switch t {
	case TierOverride:
		return "override"
	case TierStatic:
		return "static"
	case TierAccountKeyword:
		return "account_keyword"
	case TierDescriptionKeyword:
		return "description_keyword"
	case TierDefault:
		return "default"
	}
	return "unknown"
}

// Classifier applies the cascade for one import run. It is not safe for
// concurrent use; each run builds its own instance so the coverage counters
// stay scoped to that run.
type Classifier struct {
	tables    Tables
	overrides map[string]model.Category

	tierHits map[Tier]int
	used     map[string]model.Category
	unmapped map[string]struct{}
}

// New builds a classifier from the injected tables and the run's active
// user-defined override rules.
func New(tables Tables, rules []model.CategoryRule) *Classifier {
	overrides := make(map[string]model.Category, len(rules))
	for _, r := range rules {
		overrides[strings.ToLower(strings.TrimSpace(r.AccountPath))] = r.Category
	}
	return &Classifier{
		tables:    tables,
		overrides: overrides,
		tierHits:  make(map[Tier]int),
		used:      make(map[string]model.Category),
		unmapped:  make(map[string]struct{}),
	}
}

// Classify returns the category for an account path and free-text
// description, plus the tier that decided it. First match wins.
func (c *Classifier) Classify(accountPath, description string) (model.Category, Tier) {
	path := strings.ToLower(strings.TrimSpace(accountPath))

	if path != "" {
		if cat, ok := c.overrides[path]; ok {
			return c.record(accountPath, cat, TierOverride)
		}
		if cat, ok := c.tables.StaticAccounts[path]; ok {
			return c.record(accountPath, cat, TierStatic)
		}
		for _, rule := range c.tables.AccountKeywords {
			if strings.Contains(path, rule.Keyword) {
				return c.record(accountPath, rule.Category, TierAccountKeyword)
			}
		}
	}

	if desc := strings.ToLower(description); desc != "" {
		for _, rule := range c.tables.DescriptionKeywords {
			if strings.Contains(desc, rule.Keyword) {
				return c.record(accountPath, rule.Category, TierDescriptionKeyword)
			}
		}
	}

	return c.record(accountPath, model.CategoryOther, TierDefault)
}

func (c *Classifier) record(accountPath string, cat model.Category, tier Tier) (model.Category, Tier) {
	c.tierHits[tier]++

	path := strings.TrimSpace(accountPath)
	if path != "" {
		if tier == TierDefault {
			c.unmapped[path] = struct{}{}
		} else {
			c.used[path] = cat
		}
	}
	return cat, tier
}

// TierStats returns how many rows each tier classified, keyed by tier label.
func (c *Classifier) TierStats() map[string]int {
	stats := make(map[string]int, len(c.tierHits))
	for tier, n := range c.tierHits {
		stats[tier.String()] = n
	}
	return stats
}

// MappingUsed returns the account paths that were classified by a rule and
// the category each received.
func (c *Classifier) MappingUsed() map[string]model.Category {
	used := make(map[string]model.Category, len(c.used))
	for path, cat := range c.used {
		used[path] = cat
	}
	return used
}

// UnmappedAccounts returns the account paths that fell through to the
// default category, sorted for stable reports.
func (c *Classifier) UnmappedAccounts() []string {
	paths := make([]string, 0, len(c.unmapped))
	for path := range c.unmapped {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
