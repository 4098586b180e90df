package resolver

import (
	"regexp"
	"strings"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/domain/similarity"
)

// projectNumberPattern extracts a leading job-number token like "24-103" or
// "105-002" from a raw project field.
var projectNumberPattern = regexp.MustCompile(`^\s*(\d{2,3}-\d{3})`)

// ResolveProject resolves a raw project/WO token to a project through the
// precedence cascade: exact number, exact name, alias (exact, starts-with,
// contains), fuzzy number, then regex extraction. Returns nil when nothing
// matches.
//
// Two literal remaps run first: tokens starting with "fuel" go to the gas
// tracking project and the token "ga" goes to the general-admin project,
// whatever the rest of the text says.
func (r *Resolver) ResolveProject(token string) (*model.Project, model.MatchType) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ""
	}

	if remapped := r.remapSpecialToken(token); remapped != "" {
		if p := r.projectByNumber(remapped); p != nil {
			return p, model.MatchExact
		}
	}

	if p := r.projectByNumber(token); p != nil {
		return p, model.MatchExact
	}

	for i := range r.projects {
		if strings.EqualFold(r.projects[i].Name, token) {
			return &r.projects[i], model.MatchExact
		}
	}

	if p := r.projectByAlias(token); p != nil {
		return p, model.MatchAlias
	}

	if p := r.projectByFuzzyNumber(token); p != nil {
		return p, model.MatchFuzzy
	}

	if m := projectNumberPattern.FindStringSubmatch(token); m != nil {
		if p := r.projectByNumber(m[1]); p != nil {
			return p, model.MatchRegex
		}
	}

	return nil, ""
}

// remapSpecialToken returns the project number a special token maps to, or
// empty when the token is not special.
func (r *Resolver) remapSpecialToken(token string) string {
	norm := similarity.NormalizeBusinessName(token)
	if r.cfg.GasProjectNumber != "" && strings.HasPrefix(norm, "fuel") {
		return r.cfg.GasProjectNumber
	}
	if r.cfg.GeneralAdminProjectNumber != "" && strings.EqualFold(token, "ga") {
		return r.cfg.GeneralAdminProjectNumber
	}
	return ""
}

func (r *Resolver) projectByNumber(number string) *model.Project {
	for i := range r.projects {
		if strings.EqualFold(r.projects[i].Number, number) {
			return &r.projects[i]
		}
	}
	return nil
}

func (r *Resolver) projectByID(id string) *model.Project {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return &r.projects[i]
		}
	}
	return nil
}

// projectByAlias runs the three alias modes in precedence order: every exact
// alias is tried before any starts-with alias, and those before any contains
// alias.
func (r *Resolver) projectByAlias(token string) *model.Project {
	lowered := strings.ToLower(token)
	stripped := similarity.AlphaNumeric(token)

	for _, mode := range []model.AliasMode{model.AliasExact, model.AliasStartsWith, model.AliasContains} {
		for _, a := range r.aliases {
			if a.Mode != mode {
				continue
			}
			if r.aliasMatches(a, lowered, stripped) {
				if p := r.projectByID(a.ProjectID); p != nil {
					return p
				}
			}
		}
	}
	return nil
}

func (r *Resolver) aliasMatches(a model.ProjectAlias, lowered, stripped string) bool {
	alias := strings.ToLower(strings.TrimSpace(a.Alias))
	if alias == "" {
		return false
	}
	switch a.Mode {
	case model.AliasExact:
		return lowered == alias
	case model.AliasStartsWith:
		return strings.HasPrefix(stripped, similarity.AlphaNumeric(alias))
	case model.AliasContains:
		return strings.Contains(lowered, alias)
	}
	return false
}

// projectByFuzzyNumber takes the best Jaro-Winkler score against project
// numbers when it clears the configured threshold.
func (r *Resolver) projectByFuzzyNumber(token string) *model.Project {
	var best *model.Project
	bestScore := 0.0
	for i := range r.projects {
		if r.projects[i].Number == "" {
			continue
		}
		score := similarity.JaroWinkler(strings.ToLower(token), strings.ToLower(r.projects[i].Number)) * 100
		if score > bestScore {
			best = &r.projects[i]
			bestScore = score
		}
	}
	if bestScore < r.cfg.ProjectNumberThreshold {
		return nil
	}
	return best
}
