package placement

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MrWong99/wayfarer/internal/entity"
)

// SceneTemplate is an authored scene whose texts may contain placeholders
// such as {NPCName} or {LocationName}.
type SceneTemplate struct {
	ID          string
	DisplayName string
	Description string
	Situations  []string
}

// Scene is a template with every placeholder substituted.
type Scene struct {
	ID          string
	DisplayName string
	Description string
	Situations  []string
}

// UnresolvedPlaceholderError is returned by [Finalize] when texts still
// contain placeholders after substitution.
type UnresolvedPlaceholderError struct {
	SceneID      string
	Placeholders []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("placement: scene %q has unresolved placeholders %s", e.SceneID, strings.Join(e.Placeholders, ", "))
}

var placeholderRe = regexp.MustCompile(`\{\w+\}`)

// ScanPlaceholders returns the distinct {Token} markers in text in order of
// first appearance.
func ScanPlaceholders(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out
}

// Finalize substitutes the spawn context into tmpl. A scene whose texts still
// carry a placeholder afterwards is not returned.
func Finalize(tmpl SceneTemplate, sc SpawnContext) (Scene, error) {
	r := strings.NewReplacer(replacements(sc)...)

	scene := Scene{
		ID:          tmpl.ID,
		DisplayName: r.Replace(tmpl.DisplayName),
		Description: r.Replace(tmpl.Description),
	}
	for _, s := range tmpl.Situations {
		scene.Situations = append(scene.Situations, r.Replace(s))
	}

	var left []string
	seen := make(map[string]bool)
	for _, text := range append([]string{scene.DisplayName, scene.Description}, scene.Situations...) {
		for _, p := range ScanPlaceholders(text) {
			if !seen[p] {
				seen[p] = true
				left = append(left, p)
			}
		}
	}
	if len(left) > 0 {
		return Scene{}, &UnresolvedPlaceholderError{SceneID: tmpl.ID, Placeholders: left}
	}
	return scene, nil
}

func replacements(sc SpawnContext) []string {
	player := entity.DefaultPlayerName
	if sc.Player != nil && sc.Player.Name != "" {
		player = sc.Player.Name
	}
	pairs := []string{"{PlayerName}", player}

	if sc.NPC != nil && sc.NPC.Name != "" {
		pairs = append(pairs, "{NPCName}", sc.NPC.Name)
	}
	if sc.Spot != nil && sc.Spot.Name != "" {
		pairs = append(pairs, "{LocationName}", sc.Spot.Name)
	}
	if sc.Venue != nil {
		if sc.Venue.Name != "" {
			pairs = append(pairs, "{VenueName}", sc.Venue.Name)
		}
		if sc.Venue.District != "" {
			pairs = append(pairs, "{DistrictName}", sc.Venue.District)
		}
	}
	if sc.Route != nil && sc.Route.Name != "" {
		pairs = append(pairs, "{RouteName}", sc.Route.Name)
	}
	return pairs
}
