package constants

import "time"

const (
	// Connection Settings
	SettingRepoOwner = "repo_owner"
	SettingRepoName  = "repo_name"
	SettingBranch    = "branch"
	SettingDataDir   = "data_dir"

	// Display Settings
	SettingShowParentsComment = "show_parents_comment"
	SettingTimezone           = "timezone"

	// Sync Settings
	SettingAutosaveInterval = "autosave_interval"

	// Session item cache, stored as a JSON array
	SettingLastUsedItems = "last_used_items"

	// Default Settings Values
	DefaultBranch             = "main"
	DefaultDataDir            = "data/weeks"
	DefaultShowParentsComment = false
	DefaultTimezone           = "Local" // Use system local timezone by default
	DefaultAutosaveInterval   = 2 * time.Minute
)
