// Package onboarding renders the splash and the onboarding pages. Both are
// stateless; the app model owns the navigation gate.
package onboarding

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"airpulse/internal/ui/theme"
)

type page struct {
	title    string
	subtitle string
	action   string
}

var pages = []page{
	{
		title:    "Welcome to AirPulse",
		subtitle: "Transforming the way you monitor your\nhealth with digital technology.",
		action:   "Next ➝",
	},
	{
		title:    "Connect your\nWireless Stethoscope",
		subtitle: "Ensure Bluetooth is on and your device\nis nearby to pair.",
		action:   "Login ➝",
	},
}

const logo = `   _   _     ___      _
  /_\ (_)_ _| _ \_  _| |___ ___
 / _ \| | '_|  _/ || | (_-</ -_)
/_/ \_\_|_| |_|  \_,_|_/__/\___|`

// Splash renders the launch screen with a loading indicator.
func Splash(width, height int, spinner string) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render(logo),
		"",
		theme.Muted.Render("Monitoring Your Heart, Digitally ❤️"),
		"",
		spinner,
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// Page renders onboarding page n, counted from 1.
func Page(n, width, height int) string {
	if n < 1 || n > len(pages) {
		return ""
	}
	p := pages[n-1]
	dots := make([]string, len(pages))
	for i := range pages {
		if i == n-1 {
			dots[i] = theme.Hot.Render("●")
		} else {
			dots[i] = theme.Muted.Render("○")
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		theme.Title.Render(p.title),
		"",
		theme.Muted.Render(p.subtitle),
		"",
		strings.Join(dots, " "),
		"",
		theme.Button.Render(p.action),
		theme.Muted.Render("enter to continue"),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}

// Pages is the number of onboarding pages.
func Pages() int { return len(pages) }
