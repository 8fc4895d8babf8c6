package dashboard

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/nhle/safesignal/internal/model"
	"github.com/nhle/safesignal/internal/theme"
)

// LastSeen formats how long ago a location was recorded.
func LastSeen(at, now time.Time) string {
	if now.Sub(at) < time.Minute {
		return "just now"
	}
	return humanize.RelTime(at, now, "ago", "from now")
}

// RenderCard draws one family member.
func RenderCard(u model.User, now time.Time, mapsURL string, width int) string {
	name := u.Name
	if u.IsCurrentUser {
		name += " (You)"
	}

	var badges []string
	if u.IsPinging {
		badges = append(badges, lipgloss.NewStyle().Foreground(theme.ColorBlue).Render("🔔"))
	}
	dot := "●"
	badges = append(badges, theme.StatusStyle(u.Status).Render(dot+" "+string(u.Status)))

	titleLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.TitleStyle.Render(name),
		"  ",
		strings.Join(badges, " "),
	)

	var body []string
	if loc := u.LastLocation; loc != nil {
		body = append(body,
			"📍 Last seen "+LastSeen(loc.Time(), now),
			theme.LinkStyle.Render(fmt.Sprintf("View on map (%.2f, %.2f)", loc.Lat, loc.Lng)),
			theme.HelpStyle.Render(loc.MapURL(mapsURL)),
		)
	} else {
		body = append(body, theme.HelpStyle.Render("Location not available."))
	}

	style := theme.CardStyle
	if u.IsPinging {
		style = theme.PingingCardStyle
	}
	if width > 2 {
		style = style.Width(width - 2)
	}

	lines := append([]string{titleLine, ""}, body...)
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
