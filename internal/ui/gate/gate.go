// Package gate holds the top-level navigation state of the client: which
// stage is mounted and, inside Main, which tab and analysis screen. Every
// transition returns a new Gate or ErrIllegalTransition; the zero value is
// not used, start from New.
package gate

import (
	"errors"
	"fmt"
	"strings"
)

var ErrIllegalTransition = errors.New("illegal navigation transition")

type Stage int

const (
	StageSplash Stage = iota
	StageOnboarding
	StageAuth
	StageMain
)

func (s Stage) String() string {
	switch s {
	case StageSplash:
		return "splash"
	case StageOnboarding:
		return "onboarding"
	case StageAuth:
		return "auth"
	case StageMain:
		return "main"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

type AuthRoute int

const (
	RouteLogin AuthRoute = iota
	RouteSignup
)

type Tab int

const (
	TabHome Tab = iota
	TabAnalysis
	TabProfile
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabHome:
		return "Home"
	case TabAnalysis:
		return "Analysis"
	case TabProfile:
		return "Profile"
	}
	return fmt.Sprintf("tab(%d)", int(t))
}

// Tabs lists the Main tabs in display order.
func Tabs() []Tab {
	return []Tab{TabHome, TabAnalysis, TabProfile}
}

// AnalysisRoute is the position in the Analysis tab stack.
type AnalysisRoute int

const (
	RouteRecordings AnalysisRoute = iota
	RouteAnalysis
	RouteChat
)

const onboardingPages = 2

type Gate struct {
	stage    Stage
	page     int
	auth     AuthRoute
	tab      Tab
	analysis AnalysisRoute

	recordingID   string
	recordingName string
}

func New() Gate {
	return Gate{stage: StageSplash}
}

func (g Gate) Stage() Stage                 { return g.stage }
func (g Gate) OnboardingPage() int          { return g.page }
func (g Gate) AuthRoute() AuthRoute         { return g.auth }
func (g Gate) Tab() Tab                     { return g.tab }
func (g Gate) AnalysisRoute() AnalysisRoute { return g.analysis }

// Recording is the recording the Analysis and Chat screens show.
func (g Gate) Recording() (id, name string) {
	return g.recordingID, g.recordingName
}

func illegal(from Gate, action string) error {
	return fmt.Errorf("%w: %s from %s", ErrIllegalTransition, action, from.stage)
}

// SplashElapsed leaves the splash. A resumed session goes straight to Main;
// otherwise onboarding starts at page 1.
func (g Gate) SplashElapsed(resumed bool) (Gate, error) {
	if g.stage != StageSplash {
		return g, illegal(g, "splash elapsed")
	}
	if resumed {
		return mainAt(TabHome), nil
	}
	return Gate{stage: StageOnboarding, page: 1}, nil
}

// NextOnboarding advances a page. Finishing the last page is the onboarding
// "done" signal and mounts Auth on the login route.
func (g Gate) NextOnboarding() (Gate, error) {
	if g.stage != StageOnboarding {
		return g, illegal(g, "next onboarding")
	}
	if g.page < onboardingPages {
		g.page++
		return g, nil
	}
	return Gate{stage: StageAuth, auth: RouteLogin}, nil
}

func (g Gate) ShowSignup() (Gate, error) {
	if g.stage != StageAuth {
		return g, illegal(g, "show signup")
	}
	g.auth = RouteSignup
	return g, nil
}

func (g Gate) ShowLogin() (Gate, error) {
	if g.stage != StageAuth {
		return g, illegal(g, "show login")
	}
	g.auth = RouteLogin
	return g, nil
}

func (g Gate) LoggedIn() (Gate, error) {
	if g.stage != StageAuth {
		return g, illegal(g, "logged in")
	}
	return mainAt(TabHome), nil
}

// LoggedOut resets navigation to the login screen and drops all Main state.
func (g Gate) LoggedOut() (Gate, error) {
	if g.stage != StageMain {
		return g, illegal(g, "logged out")
	}
	return Gate{stage: StageAuth, auth: RouteLogin}, nil
}

// SelectTab switches tabs. The Analysis stack keeps its position.
func (g Gate) SelectTab(tab Tab) (Gate, error) {
	if g.stage != StageMain {
		return g, illegal(g, "select tab")
	}
	if tab < 0 || tab >= tabCount {
		return g, fmt.Errorf("%w: unknown tab %d", ErrIllegalTransition, int(tab))
	}
	g.tab = tab
	return g, nil
}

func (g Gate) OpenAnalysis(recordingID, recordingName string) (Gate, error) {
	if g.stage != StageMain || g.tab != TabAnalysis || g.analysis != RouteRecordings {
		return g, illegal(g, "open analysis")
	}
	if strings.TrimSpace(recordingID) == "" {
		return g, fmt.Errorf("%w: open analysis without recording id", ErrIllegalTransition)
	}
	g.analysis = RouteAnalysis
	g.recordingID = recordingID
	g.recordingName = recordingName
	return g, nil
}

func (g Gate) OpenChat() (Gate, error) {
	if g.stage != StageMain || g.tab != TabAnalysis || g.analysis != RouteAnalysis {
		return g, illegal(g, "open chat")
	}
	g.analysis = RouteChat
	return g, nil
}

// Back pops the Analysis stack: Chat to Analysis to Recordings.
func (g Gate) Back() (Gate, error) {
	if g.stage != StageMain || g.tab != TabAnalysis {
		return g, illegal(g, "back")
	}
	switch g.analysis {
	case RouteChat:
		g.analysis = RouteAnalysis
	case RouteAnalysis:
		g.analysis = RouteRecordings
		g.recordingID, g.recordingName = "", ""
	default:
		return g, illegal(g, "back")
	}
	return g, nil
}

func mainAt(tab Tab) Gate {
	return Gate{stage: StageMain, tab: tab, analysis: RouteRecordings}
}
