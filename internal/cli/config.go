package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/weekdiary/internal/constants"
	"github.com/julianstephens/weekdiary/internal/keyring"
	"github.com/julianstephens/weekdiary/internal/models"
)

// configKeys maps user facing names to setting keys.
var configKeys = map[string]string{
	"owner":           constants.SettingRepoOwner,
	"repo":            constants.SettingRepoName,
	"branch":          constants.SettingBranch,
	"dir":             constants.SettingDataDir,
	"timezone":        constants.SettingTimezone,
	"autosave":        constants.SettingAutosaveInterval,
	"parents-comment": constants.SettingShowParentsComment,
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx.println("Repository:")
	ctx.printf("  Owner:            %s\n", orUnset(settings.RepoOwner))
	ctx.printf("  Repository:       %s\n", orUnset(settings.RepoName))
	ctx.printf("  Branch:           %s\n", settings.Branch)
	ctx.printf("  Data directory:   %s\n", settings.DataDir)
	ctx.println("\nEditing:")
	ctx.printf("  Timezone:         %s\n", settings.Timezone)
	ctx.printf("  Autosave:         %s\n", settings.AutosaveInterval)
	ctx.printf("  Parents' comment: %v\n", settings.ShowParentsComment)

	ctx.println("\nToken:")
	token, source, err := keyring.ResolveToken()
	switch {
	case err == nil:
		ctx.printf("  %s (from %s)\n", keyring.Mask(token), source)
	case errors.Is(err, keyring.ErrNotFound):
		ctx.println("  not set")
	default:
		ctx.printf("  unavailable: %v\n", err)
	}
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

type ConfigSetCmd struct {
	Key   string `arg:"" help:"Setting to change: owner, repo, branch, dir, timezone, autosave, parents-comment."`
	Value string `arg:"" help:"New value."`
}

func (c *ConfigSetCmd) Run(ctx *Context) error {
	key, ok := configKeys[strings.ToLower(c.Key)]
	if !ok {
		names := make([]string, 0, len(configKeys))
		for name := range configKeys {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown setting %q (choose from %s)", c.Key, strings.Join(names, ", "))
	}

	value, err := normalizeSetting(key, strings.TrimSpace(c.Value))
	if err != nil {
		return err
	}
	if err := ctx.Store.SetSetting(key, value); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}
	ctx.printf("✓ %s = %s\n", c.Key, value)
	return nil
}

func normalizeSetting(key, value string) (string, error) {
	switch key {
	case constants.SettingAutosaveInterval:
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return "", fmt.Errorf("autosave must be a positive duration such as 2m or 30s")
		}
		return d.String(), nil
	case constants.SettingShowParentsComment:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("parents-comment must be true or false")
		}
		return strconv.FormatBool(b), nil
	case constants.SettingTimezone:
		if value != "Local" {
			if _, err := time.LoadLocation(value); err != nil {
				return "", fmt.Errorf("unknown timezone %q", value)
			}
		}
	case constants.SettingDataDir:
		value = strings.Trim(value, "/")
	}
	if value == "" {
		return "", fmt.Errorf("value cannot be empty")
	}

	// round trip through the settings model so stored values always parse
	if _, err := models.MapToSettings(map[string]string{key: value}); err != nil {
		return "", err
	}
	return value, nil
}

type ConfigTokenCmd struct {
	Token  string `arg:"" optional:"" help:"GitHub token. Prompted for when omitted."`
	Delete bool   `help:"Remove the stored token."`
}

func (c *ConfigTokenCmd) Run(ctx *Context) error {
	if c.Delete {
		if err := keyring.DeleteToken(); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				ctx.println("No token stored.")
				return nil
			}
			return err
		}
		ctx.println("✓ Token removed from keyring.")
		return nil
	}

	if !keyring.IsAvailable() {
		return fmt.Errorf("%w; set %s instead", keyring.ErrKeyringUnavailable, constants.EnvGitHubToken)
	}

	token := c.Token
	if token == "" {
		if !Interactive() {
			return fmt.Errorf("no token given and stdin is not a terminal")
		}
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("GitHub token").
					Description("Needs contents read/write access to the diary repository.").
					EchoMode(huh.EchoModePassword).
					Value(&token),
			),
		).Run()
		if err != nil {
			return err
		}
	}

	if err := keyring.SetToken(token); err != nil {
		return err
	}
	ctx.printf("✓ Token stored in keyring (%s).\n", keyring.Mask(strings.TrimSpace(token)))
	return nil
}
