package models

import (
	"fmt"
	"strconv"
	"time"

	"github.com/julianstephens/weekdiary/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingRepoOwner:
			settings.RepoOwner = value
		case constants.SettingRepoName:
			settings.RepoName = value
		case constants.SettingBranch:
			settings.Branch = value
		case constants.SettingDataDir:
			settings.DataDir = value
		case constants.SettingShowParentsComment:
			settings.ShowParentsComment = value == "true"
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingAutosaveInterval:
			d, err := time.ParseDuration(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing %s: %w", constants.SettingAutosaveInterval, err)
			}
			settings.AutosaveInterval = d
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingRepoOwner:          settings.RepoOwner,
		constants.SettingRepoName:           settings.RepoName,
		constants.SettingBranch:             settings.Branch,
		constants.SettingDataDir:            settings.DataDir,
		constants.SettingShowParentsComment: strconv.FormatBool(settings.ShowParentsComment),
		constants.SettingTimezone:           settings.Timezone,
		constants.SettingAutosaveInterval:   settings.AutosaveInterval.String(),
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Branch == "" {
		settings.Branch = constants.DefaultBranch
	}
	if settings.DataDir == "" {
		settings.DataDir = constants.DefaultDataDir
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.AutosaveInterval <= 0 {
		settings.AutosaveInterval = constants.DefaultAutosaveInterval
	}
}
