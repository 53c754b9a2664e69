package cli

type InitCmd struct {
	Owner string `help:"GitHub account that owns the diary repository."`
	Repo  string `help:"Name of the diary repository."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if err := ctx.Store.Init(); err != nil {
		return err
	}

	if c.Owner != "" || c.Repo != "" {
		settings, err := ctx.Store.GetSettings()
		if err != nil {
			return err
		}
		if c.Owner != "" {
			settings.RepoOwner = c.Owner
		}
		if c.Repo != "" {
			settings.RepoName = c.Repo
		}
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return err
		}
	}

	ctx.printf("Initialized weekdiary storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}
