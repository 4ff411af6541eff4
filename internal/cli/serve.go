package cli

import (
	"tasktimer/backend/internal/database"
	"tasktimer/backend/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var (
		host        string
		port        string
		autoMigrate bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			if host != "" {
				a.config.Server.Host = host
			}
			if port != "" {
				a.config.Server.Port = port
			}
			if a.config.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			if autoMigrate {
				if err := database.Migrate(a.DB()); err != nil {
					return err
				}
			}

			return server.New(a.config, a.DB(), a.cache).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Host to listen on (overrides config)")
	cmd.Flags().StringVar(&port, "port", "", "Port to listen on (overrides config)")
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply the schema before serving")
	return cmd
}
