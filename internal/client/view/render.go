package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
	"github.com/facette/natsort"
	"github.com/fatih/color"
)

// StatusColor returns the colour used for a status: green for alive, red for
// dead, gray otherwise.
func StatusColor(s models.Status) *color.Color {
	switch s {
	case models.StatusAlive:
		return color.New(color.FgGreen)
	case models.StatusDead:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgHiBlack)
	}
}

// Renderer formats characters in one locale, with or without ANSI colours.
type Renderer struct {
	Locale Locale
	Color  bool
}

func (r Renderer) paint(c *color.Color, s string) string {
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Status is the localized, coloured status label.
func (r Renderer) Status(s models.Status) string {
	return r.paint(StatusColor(s), StatusLabel(r.Locale, s))
}

func (r Renderer) source(local bool) string {
	if local {
		return r.paint(color.New(color.FgCyan), "local")
	}
	return "api"
}

// Card is a one-line summary.
func (r Renderer) Card(c models.Character, local bool) string {
	return fmt.Sprintf("#%d %s [%s] %s, %s (%s)",
		c.ID, c.Name, r.Status(c.Status),
		SpeciesLabel(r.Locale, c.Species), GenderLabel(r.Locale, c.Gender),
		r.source(local))
}

// Detail is the multi-line view of one character.
func (r Renderer) Detail(c models.Character, local bool) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)

	fmt.Fprintf(&b, "%s (#%d)\n", c.Name, c.ID)
	row := func(k, v string) {
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "  %s:\t%s\n", k, v)
	}
	row("Status", r.Status(c.Status))
	row("Species", SpeciesLabel(r.Locale, c.Species))
	row("Type", c.Type)
	row("Gender", GenderLabel(r.Locale, c.Gender))
	row("Origin", c.Origin.Name)
	row("Location", c.Location.Name)
	row("Episodes", fmt.Sprint(len(c.Episode)))
	row("Image", c.Image)
	row("Created", c.Created)
	row("Source", r.source(local))
	_ = w.Flush()

	return b.String()
}

// Table writes chars as aligned columns. isLocal may be nil.
func (r Renderer) Table(out io.Writer, chars []models.Character, isLocal func(id int) bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tSPECIES\tGENDER\tSOURCE")
	for _, c := range chars {
		local := isLocal != nil && isLocal(c.ID)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, r.Status(c.Status),
			SpeciesLabel(r.Locale, c.Species), GenderLabel(r.Locale, c.Gender),
			r.source(local))
	}
	return w.Flush()
}

// Stats formats the aggregate counters.
func (r Renderer) Stats(st models.Stats) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "Local:\t%d\n", st.TotalLocal)
	fmt.Fprintf(w, "From API:\t%d\n", st.TotalFromAPI)
	fmt.Fprintf(w, "Total:\t%d\n", st.TotalAll)
	fmt.Fprintf(w, "%s:\t%d\n", r.Status(models.StatusAlive), st.Alive)
	fmt.Fprintf(w, "%s:\t%d\n", r.Status(models.StatusDead), st.Dead)
	fmt.Fprintf(w, "%s:\t%d\n", r.Status(models.StatusUnknown), st.Unknown)
	_ = w.Flush()
	return b.String()
}

// SortByName orders chars by name in natural order ("Rick 2" before
// "Rick 10"), ignoring case. Equal names keep their relative order.
func SortByName(chars []models.Character) {
	sort.SliceStable(chars, func(i, j int) bool {
		a, b := strings.ToLower(chars[i].Name), strings.ToLower(chars[j].Name)
		if a == b {
			return false
		}
		return natsort.Compare(a, b)
	})
}
