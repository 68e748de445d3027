// Package parse turns raw package records into typed content entities.
//
// Parsers are permissive: a missing optional field gets a documented
// default, a decorative tag that does not resolve is dropped with one
// diagnostic, and a negative number is clamped to zero. A record is only
// rejected when it cannot be addressed (missing ID) or when a value that
// drives game logic (favor type, token type, starting time block) is
// unknown. Rejections wrap [ErrRejected].
package parse

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrWong99/wayfarer/internal/entity"
	"github.com/MrWong99/wayfarer/internal/enum"
)

// Closed tag sets. Sets are immutable and shared across parsers.
var (
	logicTypes          = enum.NewSet("logic type", entity.LogicTypes()...)
	equipmentCategories = enum.NewSet("equipment category", entity.EquipmentCategories()...)
	spotProperties      = enum.NewSet("spot property", entity.SpotProperties()...)
	timeBlocks          = enum.NewSet("time block", entity.TimeBlocks()...)
	tokenTypes          = enum.NewSet("token type", entity.TokenTypes()...)
	favorTypes          = enum.NewSet("favor type", entity.FavorTypes()...)
	attributes          = enum.NewSet("attribute", entity.Attributes()...)
)

// idPrefixes is prepended to generated identifiers.
var idPrefixes = map[entity.Kind]string{
	entity.KindVenue:              "venue",
	entity.KindLocationSpot:       "spot",
	entity.KindAccessRequirement:  "access",
	entity.KindTokenFavor:         "favor",
	entity.KindNetworkUnlock:      "unlock",
	entity.KindStandingObligation: "obligation",
	entity.KindRouteDiscovery:     "route",
	entity.KindActionDefinition:   "action",
	entity.KindItem:               "item",
	entity.KindRulesTable:         "rules",
}

// Rules answers numeric rule lookups. [*entity.Graph] implements it.
type Rules interface {
	RuleValue(key string) (int, bool)
}

// Parser converts raw records. It holds no per-record state, so one Parser
// can serve a whole ingestion run.
type Parser struct {
	sink  Sink
	rules Rules
	newID func() string
}

// Option configures a [Parser].
type Option func(*Parser)

// WithIDGenerator replaces the UUID source for generated identifiers.
func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) { p.newID = fn }
}

// New returns a [Parser] that reports to sink and consults rules for
// defaults. Either may be nil: diagnostics then go to [SlogSink] with the
// default logger, and built-in defaults are used.
func New(sink Sink, rules Rules, opts ...Option) *Parser {
	if sink == nil {
		sink = SlogSink{}
	}
	p := &Parser{sink: sink, rules: rules, newID: uuid.NewString}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ─── shared helpers ─────────────────────────────────────────────────────────

func (p *Parser) report(kind entity.Kind, id, field, value, msg string) {
	p.sink.Report(Diagnostic{EntityType: kind, EntityID: id, Field: field, Value: value, Message: msg})
}

// id returns raw trimmed, or a fresh identifier prefixed with the kind.
func (p *Parser) id(kind entity.Kind, raw string) string {
	if id := strings.TrimSpace(raw); id != "" {
		return id
	}
	prefix, ok := idPrefixes[kind]
	if !ok {
		prefix = string(kind)
	}
	return prefix + "_" + p.newID()
}

// count resolves an optional non-negative number. Negative values clamp to
// zero with a diagnostic.
func (p *Parser) count(kind entity.Kind, id, field string, v *int, def int) int {
	if v == nil {
		return def
	}
	if *v < 0 {
		p.report(kind, id, field, fmt.Sprint(*v), "negative value clamped to 0")
		return 0
	}
	return *v
}

// ids trims a list of references and drops blanks and case-insensitive
// repeats, keeping the first spelling.
func (p *Parser) ids(kind entity.Kind, id, field string, raws []string) []string {
	var out []string
	for _, raw := range raws {
		ref := strings.TrimSpace(raw)
		if ref == "" {
			p.report(kind, id, field, raw, "blank reference dropped")
			continue
		}
		dup := false
		for _, seen := range out {
			if entity.SameID(seen, ref) {
				dup = true
				break
			}
		}
		if dup {
			p.report(kind, id, field, ref, "duplicate reference dropped")
			continue
		}
		out = append(out, ref)
	}
	return out
}

// tags resolves a decorative tag list. Each unknown value is dropped with
// exactly one diagnostic.
func tags[T ~string](p *Parser, set *enum.Set[T], kind entity.Kind, id, field string, raws []string) []T {
	matched, unmatched := set.ParseAll(raws)
	for _, raw := range unmatched {
		unknownTag(p, set, kind, id, field, raw, "dropped")
	}
	return matched
}

// critical resolves a discriminant. An unknown value is reported once and
// returns a [*RejectedError].
func critical[T ~string](p *Parser, set *enum.Set[T], kind entity.Kind, id, field, raw string) (T, error) {
	if tag, ok := set.Parse(raw).OK(); ok {
		return tag, nil
	}
	unknownTag(p, set, kind, id, field, raw, "record rejected")
	var zero T
	return zero, &RejectedError{Kind: kind, EntityID: id, Field: field, Value: raw}
}

func unknownTag[T ~string](p *Parser, set *enum.Set[T], kind entity.Kind, id, field, raw, outcome string) {
	d := Diagnostic{
		EntityType: kind,
		EntityID:   id,
		Field:      field,
		Value:      raw,
		Message:    fmt.Sprintf("unknown %s, %s (known: %s)", set.Family(), outcome, strings.Join(set.Names(), ", ")),
	}
	if s, ok := set.Suggest(raw); ok {
		d.Suggestion = string(s)
	}
	p.sink.Report(d)
}

func (p *Parser) missing(kind entity.Kind, id, field string) error {
	p.report(kind, id, field, "", "missing required field, record rejected")
	return &MissingFieldError{Kind: kind, EntityID: id, Field: field}
}
