package player

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pixil98/go-rpg/internal/display"
	"github.com/pixil98/go-rpg/internal/game"
)

const statusLine = `[{{ .Health }}/{{ .MaxHealth }} HP] Level {{ .Level }}, {{ .Experience }}/{{ .NextLevel }} xp`

// renderView lays out v for a text terminal. Actions are numbered in view
// order, gathered under their group headings; the returned keys are indexed
// by number-1.
func renderView(v game.View, width int) (string, []string) {
	var b strings.Builder
	if v.Location != "" {
		fmt.Fprintf(&b, "%s\n", display.Title(v.Location))
	}
	fmt.Fprintf(&b, "%s\n\n", display.WrapWidth(v.Description, width))
	fmt.Fprintf(&b, "%s\n", display.MustExpand(statusLine, v))

	var groups []string
	byGroup := map[string][]game.ActionView{}
	for _, a := range v.Actions {
		if !slices.Contains(groups, a.Group) {
			groups = append(groups, a.Group)
		}
		byGroup[a.Group] = append(byGroup[a.Group], a)
	}

	// ungrouped actions come first
	slices.SortStableFunc(groups, func(a, b string) int {
		switch {
		case a == "" && b != "":
			return -1
		case b == "" && a != "":
			return 1
		}
		return 0
	})

	keys := make([]string, 0, len(v.Actions))
	for _, g := range groups {
		indent := ""
		if g != "" {
			fmt.Fprintf(&b, "%s:\n", g)
			indent = "  "
		}
		for _, a := range byGroup[g] {
			keys = append(keys, a.Key)
			fmt.Fprintf(&b, "%s%2d. %s\n", indent, len(keys), a.Name)
		}
	}
	return b.String(), keys
}

func promptFor(v game.View) string {
	return fmt.Sprintf("[%d/%dHP] > ", v.Health, v.MaxHealth)
}
