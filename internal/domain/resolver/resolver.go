// Package resolver matches free-text vendor, client, and project tokens from
// uploaded bank rows against the canonical registries. Payee and client
// matching is confidence-scored; project matching is a strict precedence
// cascade. No matcher ever returns an error for "not found" — callers route
// unresolved rows to the unassigned bucket.
package resolver

import (
	"sort"
	"strings"

	"github.com/buildledger/import-backend/internal/domain/model"
	"github.com/buildledger/import-backend/internal/domain/similarity"
)

// Config holds the resolution thresholds. Confidences are on a 0-100 scale.
type Config struct {
	// AutoAcceptThreshold is the confidence at or above which the top
	// candidate is accepted without review.
	AutoAcceptThreshold float64

	// ReviewThreshold is the confidence below which candidates are dropped
	// from suggestions entirely.
	ReviewThreshold float64

	// ProjectNumberThreshold is the Jaro-Winkler score (0-100) a project
	// number must reach for the fuzzy project tier.
	ProjectNumberThreshold float64

	// GasProjectNumber receives every project token starting with "fuel".
	GasProjectNumber string

	// GeneralAdminProjectNumber receives the literal token "ga".
	GeneralAdminProjectNumber string

	Primary   similarity.Weights
	Alternate similarity.Weights
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		AutoAcceptThreshold:    75,
		ReviewThreshold:        40,
		ProjectNumberThreshold: 85,
		Primary:                similarity.DefaultPrimaryWeights(),
		Alternate:              similarity.DefaultAlternateWeights(),
	}
}

// Match is the outcome of resolving one name. Accepted is non-nil only when
// the top candidate cleared the auto-accept threshold; Candidates holds
// everything at or above the review threshold, best first.
type Match struct {
	Accepted   *model.MatchCandidate
	Candidates []model.MatchCandidate
}

// namedEntity is the common shape payee and client matching scores against:
// an id plus a primary and optional secondary name.
type namedEntity struct {
	id        string
	primary   string
	secondary string
}

// Resolver matches row text against one run's registries. Registries are
// sorted by id at construction so equal-confidence ties break the same way
// on every run.
type Resolver struct {
	cfg Config

	payees  []namedEntity
	clients []namedEntity

	projects []model.Project
	aliases  []model.ProjectAlias
}

// New builds a resolver over the run's canonical data.
func New(cfg Config, payees []model.Payee, clients []model.Client, projects []model.Project, aliases []model.ProjectAlias) *Resolver {
	r := &Resolver{cfg: cfg}

	for _, p := range payees {
		r.payees = append(r.payees, namedEntity{id: p.ID, primary: p.DisplayName, secondary: p.LegalName})
	}
	for _, c := range clients {
		r.clients = append(r.clients, namedEntity{id: c.ID, primary: c.DisplayName, secondary: c.CompanyName})
	}
	sortByID(r.payees)
	sortByID(r.clients)

	r.projects = append(r.projects, projects...)
	sort.Slice(r.projects, func(i, j int) bool { return r.projects[i].ID < r.projects[j].ID })

	for _, a := range aliases {
		if a.Active {
			r.aliases = append(r.aliases, a)
		}
	}

	return r
}

func sortByID(entities []namedEntity) {
	sort.Slice(entities, func(i, j int) bool { return entities[i].id < entities[j].id })
}

// AddPayee registers a payee created mid-run so later rows in the same batch
// can match it.
func (r *Resolver) AddPayee(p model.Payee) {
	r.payees = append(r.payees, namedEntity{id: p.ID, primary: p.DisplayName, secondary: p.LegalName})
	sortByID(r.payees)
}

// ResolvePayee scores name against the payee registry.
func (r *Resolver) ResolvePayee(name string) Match {
	return r.resolveName(name, r.payees)
}

// ResolveClient scores name against the client registry.
func (r *Resolver) ResolveClient(name string) Match {
	return r.resolveName(name, r.clients)
}

func (r *Resolver) resolveName(name string, registry []namedEntity) Match {
	name = strings.TrimSpace(name)
	if name == "" {
		return Match{}
	}

	var candidates []model.MatchCandidate
	for _, e := range registry {
		c := r.scoreEntity(name, e)
		if c.Confidence < r.cfg.ReviewThreshold {
			continue
		}
		candidates = append(candidates, c)
	}

	// Stable keeps registry (id) order for equal confidences.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	m := Match{Candidates: candidates}
	if len(candidates) > 0 && candidates[0].Confidence >= r.cfg.AutoAcceptThreshold {
		top := candidates[0]
		m.Accepted = &top
	}
	return m
}

// scoreEntity scores one registry entry against the input. An exact
// case-insensitive hit on either name field short-circuits to 100.
func (r *Resolver) scoreEntity(name string, e namedEntity) model.MatchCandidate {
	if strings.EqualFold(name, e.primary) || (e.secondary != "" && strings.EqualFold(name, e.secondary)) {
		return model.MatchCandidate{EntityID: e.id, Name: e.primary, Confidence: 100, Type: model.MatchExact}
	}

	score := similarity.BlendedScore(name, e.primary, r.cfg.Primary, r.cfg.Alternate)
	if e.secondary != "" {
		if alt := similarity.BlendedScore(name, e.secondary, r.cfg.Primary, r.cfg.Alternate); alt > score {
			score = alt
		}
	}
	return model.MatchCandidate{EntityID: e.id, Name: e.primary, Confidence: score, Type: model.MatchFuzzy}
}

// payeeTypeKeywords maps account-path keywords to the payee type inferred for
// auto-created payees. Scanned in order.
var payeeTypeKeywords = []struct {
	keyword string
	ptype   model.PayeeType
}{
	{"subcontractor", model.PayeeSubcontractor},
	{"contract", model.PayeeSubcontractor},
	{"materials", model.PayeeMaterialSupplier},
	{"supplies", model.PayeeMaterialSupplier},
	{"equipment", model.PayeeEquipmentRental},
	{"rental", model.PayeeEquipmentRental},
	{"permit", model.PayeePermitAuthority},
	{"license", model.PayeePermitAuthority},
}

// InferPayeeType guesses the type of an auto-created payee from the row's
// account path.
func InferPayeeType(accountPath string) model.PayeeType {
	path := strings.ToLower(accountPath)
	for _, k := range payeeTypeKeywords {
		if strings.Contains(path, k.keyword) {
			return k.ptype
		}
	}
	return model.PayeeOther
}
