package domain

import (
	"fmt"
	"strings"
)

type Source string

const (
	SourceLocal  Source = "local"
	SourceHosted Source = "hosted"
)

type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeLocal  Mode = "local"
	ModeHosted Mode = "hosted"
)

func (m Mode) Validate() error {
	switch m {
	case ModeAuto, ModeLocal, ModeHosted:
		return nil
	default:
		return fmt.Errorf("invalid endpoint mode %q", m)
	}
}

// Candidates are the two base URLs the resolver chooses between.
type Candidates struct {
	Local  string
	Hosted string
}

func (c Candidates) Validate() error {
	if strings.TrimSpace(c.Local) == "" || strings.TrimSpace(c.Hosted) == "" {
		return fmt.Errorf("local and hosted base urls are required")
	}
	return nil
}

// Endpoint is the resolved API root. It is passed explicitly to every
// network component; nothing reads it from package state.
type Endpoint struct {
	BaseURL  string
	Source   Source
	Probed   bool
	ProbeErr string
}

func (c Candidates) Pick(source Source) Endpoint {
	if source == SourceLocal {
		return Endpoint{BaseURL: c.Local, Source: SourceLocal}
	}
	return Endpoint{BaseURL: c.Hosted, Source: SourceHosted}
}
