package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cornerstone-fellowship/members/internal/config"
	"github.com/cornerstone-fellowship/members/pkg/utils"
)

// AuthorizeGmailCmd creates the authorizeGmail command
func AuthorizeGmailCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:         "authorizeGmail",
		Short:       "Authorize the Gmail sender and store its OAuth token",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{SkipDatabase: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
			if err != nil {
				return fmt.Errorf("failed to load OAuth client config: %w", err)
			}
			oauthConfig, err := utils.GetOAuthConfig(oauthCfg)
			if err != nil {
				return err
			}

			if _, err := utils.Authorize(app.Ctx, oauthConfig, app.Env, app.Logger); err != nil {
				return err
			}

			fmt.Printf("\n✓ Gmail authorized for environment %s\n\n", app.Env)
			return nil
		},
	}
}
