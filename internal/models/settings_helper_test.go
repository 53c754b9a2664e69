package models

import (
	"testing"
	"time"

	"github.com/julianstephens/weekdiary/internal/constants"
)

func TestSettingsMapRoundTrip(t *testing.T) {
	in := Settings{
		RepoOwner:          "me",
		RepoName:           "diary",
		Branch:             "main",
		DataDir:            "data/weeks",
		ShowParentsComment: true,
		Timezone:           "Asia/Tokyo",
		AutosaveInterval:   90 * time.Second,
	}

	out, err := MapToSettings(SettingsToMap(in))
	if err != nil {
		t.Fatalf("MapToSettings() error = %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestMapToSettingsInvalidDuration(t *testing.T) {
	_, err := MapToSettings(map[string]string{constants.SettingAutosaveInterval: "soon"})
	if err == nil {
		t.Error("expected error for invalid autosave interval")
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{RepoOwner: "me"}
	ApplyDefaultSettings(&s)

	if s.Branch != constants.DefaultBranch {
		t.Errorf("Branch = %q, want %q", s.Branch, constants.DefaultBranch)
	}
	if s.DataDir != constants.DefaultDataDir {
		t.Errorf("DataDir = %q, want %q", s.DataDir, constants.DefaultDataDir)
	}
	if s.AutosaveInterval != constants.DefaultAutosaveInterval {
		t.Errorf("AutosaveInterval = %v, want %v", s.AutosaveInterval, constants.DefaultAutosaveInterval)
	}
	if s.RepoOwner != "me" {
		t.Errorf("RepoOwner overwritten: %q", s.RepoOwner)
	}
}

func TestSettingsConfigured(t *testing.T) {
	if (Settings{RepoOwner: "me"}).Configured() {
		t.Error("Configured() = true without repo name")
	}
	if !(Settings{RepoOwner: "me", RepoName: "diary"}).Configured() {
		t.Error("Configured() = false with owner and repo")
	}
}

func TestSettingsLocation(t *testing.T) {
	if got := (Settings{Timezone: "Local"}).Location(); got != time.Local {
		t.Errorf("Location() = %v, want Local", got)
	}
	if got := (Settings{Timezone: "Not/AZone"}).Location(); got != time.Local {
		t.Errorf("Location() = %v, want Local fallback", got)
	}
}
