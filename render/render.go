// Package render draws a meal plan for the terminal.
package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"mealcraft"
	"mealcraft/nutrition"
)

var (
	ColorPrimary = lipgloss.Color("#2E7D32")
	ColorMuted   = lipgloss.Color("#6B7280")
	ColorError   = lipgloss.Color("#C62828")

	macroColors = map[nutrition.Macro]lipgloss.Color{
		nutrition.Protein: lipgloss.Color("#2E7D32"),
		nutrition.Carbs:   lipgloss.Color("#F9A825"),
		nutrition.Fats:    lipgloss.Color("#EF6C00"),
	}

	cuisineColors = map[string]lipgloss.Color{
		nutrition.CuisineSouthIndian: lipgloss.Color("#00897B"),
		nutrition.CuisineNorthIndian: lipgloss.Color("#D84315"),
		nutrition.CuisineContinental: lipgloss.Color("#5E35B1"),
	}

	categoryIcons = map[nutrition.CategoryKind]string{
		nutrition.CategoryVegetable: "[veg]",
		nutrition.CategoryDairyEgg:  "[dairy]",
		nutrition.CategoryGrain:     "[grain]",
		nutrition.CategoryLegume:    "[dal]",
		nutrition.CategorySpice:     "[spice]",
		nutrition.CategoryOil:       "[oil]",
		nutrition.CategoryFruit:     "[fruit]",
		nutrition.CategoryOther:     "[misc]",
	}

	sourceIcons = map[nutrition.SourceKind]string{
		nutrition.SourceVideo:  "▶",
		nutrition.SourceSocial: "◎",
		nutrition.SourceBlog:   "✎",
	}

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorPrimary)
	HeadingStyle = lipgloss.NewStyle().Bold(true)
	MutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StatusStyle  = lipgloss.NewStyle().Foreground(ColorPrimary)
	CardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorMuted).Padding(0, 1)
)

type Options struct {
	// ShowShoppingList includes the shopping list section.
	ShowShoppingList bool
}

// Plan renders every section of resp. A nil plan renders nothing.
func Plan(resp *mealcraft.MealPlanResponse, opts Options) string {
	if resp == nil {
		return ""
	}

	sections := []string{Header(resp)}
	for _, d := range nutrition.Days(resp) {
		sections = append(sections, Day(d))
	}
	sections = append(sections, Nutrition(resp))
	if opts.ShowShoppingList {
		sections = append(sections, ShoppingList(resp.ShoppingList))
	} else {
		sections = append(sections, MutedStyle.Render(fmt.Sprintf("Shopping list: %d items (hidden)", nutrition.TotalItems(resp.ShoppingList))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func Header(resp *mealcraft.MealPlanResponse) string {
	mode := resp.MealPlan.Mode.Or("Meal Plan")
	avg := nutrition.WeeklyAverages(resp.MealPlan)
	return lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.Render(fmt.Sprintf("%s · %d days", mode, len(nutrition.Days(resp)))),
		MutedStyle.Render(fmt.Sprintf("Daily average: %s kcal · P %sg · C %sg · F %sg",
			num(avg.Calories), num(avg.Protein), num(avg.Carbs), num(avg.Fats))),
	)
}

// Day renders one day card with both meals and the reported totals.
func Day(d mealcraft.DayPlan) string {
	title := d.Day.Or("Day")
	if d.DayNumber.Valid {
		title = fmt.Sprintf("Day %d · %s", d.DayNumber.Int(), title)
	}
	totals := nutrition.DayTotals(d)
	body := lipgloss.JoinVertical(lipgloss.Left,
		HeadingStyle.Render(title),
		Meal("Breakfast", d.Breakfast),
		Meal("Lunch", d.Lunch),
		MutedStyle.Render("Total: "+macroLine(totals)),
	)
	return CardStyle.Render(body)
}

func Meal(label string, m *mealcraft.MealItem) string {
	if m == nil {
		return MutedStyle.Render(label + ": -")
	}

	name := m.Name.Or("Untitled")
	badge := nutrition.CuisineBadge(m.CuisineType.Or(""))
	lines := []string{HeadingStyle.Render(label+": ") + name}
	if badge != "" {
		style := lipgloss.NewStyle().Foreground(ColorMuted)
		if c, ok := cuisineColors[badge]; ok {
			style = style.Foreground(c)
		}
		lines[0] += " " + style.Render("["+badge+"]")
	}
	lines = append(lines, "  "+macroLine(nutrition.MealMacros(m)))
	if m.SourceName.Valid {
		icon := sourceIcons[nutrition.SourceKindOf(m.SourceType.Or(""))]
		lines = append(lines, MutedStyle.Render("  "+icon+" "+m.SourceName.Value))
	}
	if m.KeyIngredients.Len() > 0 {
		lines = append(lines, MutedStyle.Render("  "+strings.Join(mealcraft.Strings(m.KeyIngredients, ""), ", ")))
	}
	return strings.Join(lines, "\n")
}

// Nutrition renders the weekly totals, daily averages and macro bar.
func Nutrition(resp *mealcraft.MealPlanResponse) string {
	weekly := nutrition.WeeklyTotals(resp.NutritionSummary)
	daily := nutrition.DailyAverages(resp.NutritionSummary)
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		HeadingStyle.Render("Nutrition"),
		fmt.Sprintf("Week:  %s kcal · P %sg · C %sg · F %sg", num(weekly.Calories), num(weekly.Protein), num(weekly.Carbs), num(weekly.Fats)),
		fmt.Sprintf("Daily: %s kcal · P %sg · C %sg · F %sg", num(daily.Calories), num(daily.Protein), num(daily.Carbs), num(daily.Fats)),
		MacroBar(nutrition.MacroSplitOf(resp)),
		MacroLegend(nutrition.MacroSplitOf(resp)),
	))
}

// MacroBar draws one cell per percentage point, so a split that does not
// add up to 100 draws a shorter or longer bar. Each segment is capped at
// MaxBarCells; the legend still shows the reported value.
func MacroBar(split *mealcraft.MacroSplit) string {
	var b strings.Builder
	for _, seg := range nutrition.MacroBar(split) {
		cells := Cells(seg.Width)
		if cells == 0 {
			continue
		}
		style := lipgloss.NewStyle().
			Background(macroColors[seg.Macro]).
			Foreground(lipgloss.Color("#FFFFFF")).
			Width(cells).
			Align(lipgloss.Center)
		label := ""
		if seg.ShowLabel {
			label = fmt.Sprintf("%s%%", num(seg.Width))
			if len(label) > cells {
				label = ""
			}
		}
		b.WriteString(style.Render(label))
	}
	return b.String()
}

// MaxBarCells caps a single segment. A well-formed split never comes near
// it; it only bounds payloads with absurd percentages.
const MaxBarCells = 200

// Cells is the bar width for a percentage, at most MaxBarCells.
func Cells(width float64) int {
	if width <= 0 || math.IsNaN(width) {
		return 0
	}
	if width >= MaxBarCells {
		return MaxBarCells
	}
	return int(math.Round(width))
}

func MacroLegend(split *mealcraft.MacroSplit) string {
	parts := make([]string, 0, 3)
	for _, seg := range nutrition.MacroBar(split) {
		dot := lipgloss.NewStyle().Foreground(macroColors[seg.Macro]).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s %s%%", dot, seg.Macro, num(seg.Width)))
	}
	return strings.Join(parts, "  ")
}

// ShoppingList renders the categories in the order given.
func ShoppingList(list *mealcraft.ShoppingList) string {
	lines := []string{HeadingStyle.Render(fmt.Sprintf("Shopping list (%d items)", nutrition.TotalItems(list)))}
	if list != nil {
		for _, cat := range list.Categories.Items {
			name := cat.CategoryName.Or("Uncategorized")
			icon := categoryIcons[nutrition.CategoryKindOf(name)]
			lines = append(lines, "", StatusStyle.Render(icon+" "+name))
			for _, item := range cat.Items.Items {
				line := fmt.Sprintf("  • %s  %s", item.Name.Or("Item"), MutedStyle.Render(item.Quantity.Or("")))
				if item.UsedIn.Len() > 0 {
					line += MutedStyle.Render(" (" + strings.Join(mealcraft.Strings(item.UsedIn, ""), ", ") + ")")
				}
				lines = append(lines, line)
			}
		}
	}
	return CardStyle.Render(strings.Join(lines, "\n"))
}

func macroLine(m nutrition.Macros) string {
	return fmt.Sprintf("%s kcal · P %sg · C %sg · F %sg", num(m.Calories), num(m.Protein), num(m.Carbs), num(m.Fats))
}

func num(f float64) string {
	return mealcraft.NumberOf(f).String()
}
