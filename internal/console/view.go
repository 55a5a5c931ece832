package console

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-rpg/internal/game"
)

type listItem struct {
	key   string
	label string
	group string
}

// listItems orders v's actions the way the text clients number them:
// ungrouped actions first, then each group in order of first appearance.
func listItems(v game.View) []listItem {
	var groups []string
	for _, a := range v.Actions {
		if !slices.Contains(groups, a.Group) {
			groups = append(groups, a.Group)
		}
	}
	if i := slices.Index(groups, ""); i > 0 {
		groups = slices.Delete(groups, i, i+1)
		groups = slices.Insert(groups, 0, "")
	}

	items := make([]listItem, 0, len(v.Actions))
	for _, g := range groups {
		for _, a := range v.Actions {
			if a.Group != g {
				continue
			}
			label := a.Name
			if g != "" {
				label = g + ": " + a.Name
			}
			items = append(items, listItem{key: a.Key, label: label, group: g})
		}
	}
	return items
}

func statusText(v game.View) string {
	return fmt.Sprintf("%s  %d/%d HP  Level %d  %d/%d xp", v.Name, v.Health, v.MaxHealth, v.Level, v.Experience, v.NextLevel)
}

// shortcut is the key that selects the i-th list entry, 1 to 9 then a to z.
func shortcut(i int) rune {
	switch {
	case i < 9:
		return rune('1' + i)
	case i < 9+26:
		return rune('a' + i - 9)
	}
	return 0
}
