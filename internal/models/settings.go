package models

import "time"

// Settings represents application-wide settings
type Settings struct {
	RepoOwner          string        `json:"repo_owner"`           // GitHub account or organization that owns the diary repository
	RepoName           string        `json:"repo_name"`            // repository holding the week files
	Branch             string        `json:"branch"`               // branch commits are written to
	DataDir            string        `json:"data_dir"`             // directory of week files inside the repository
	ShowParentsComment bool          `json:"show_parents_comment"` // whether the parents' comment panel is shown
	Timezone           string        `json:"timezone"`             // IANA timezone name or "Local"
	AutosaveInterval   time.Duration `json:"autosave_interval"`    // how often a dirty week is saved while editing
}

// Configured reports whether enough settings are present to reach the repository.
func (s Settings) Configured() bool {
	return s.RepoOwner != "" && s.RepoName != ""
}

// Location resolves the configured timezone, falling back to the local zone.
func (s Settings) Location() *time.Location {
	if s.Timezone == "" || s.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
