// Package shopping formats a shopping list as plain text and delivers it to
// a clipboard-like destination.
package shopping

import (
	"strings"

	"mealcraft"
)

const Title = "Shopping List - MealCraft India"

// ExportText renders list as a line-oriented document. Categories and items
// keep the order the agent gave them.
func ExportText(list *mealcraft.ShoppingList) string {
	lines := []string{Title, ""}
	if list != nil {
		for _, cat := range list.Categories.Items {
			lines = append(lines, "--- "+cat.CategoryName.Or("Uncategorized")+" ---")
			for _, item := range cat.Items.Items {
				lines = append(lines, itemLine(item))
			}
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func itemLine(item mealcraft.ShoppingItem) string {
	line := "  " + item.Name.Or("Item") + " - " + item.Quantity.Or("")
	if item.UsedIn.Valid {
		line += " (used in: " + strings.Join(mealcraft.Strings(item.UsedIn, ""), ", ") + ")"
	}
	return line
}
