package main

import (
	"context"
	"os"
	"os/signal"
	"snooze/internal/story/nest"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := nest.NewStoryNest(os.Stdout, os.Stdin)

	var configFile string

	rootCmd := &cobra.Command{
		Use:   "snooze",
		Short: "📰 Read, share and star stories from the terminal",
		Long: `
┌──────────────────────────────────────┐
│  📰 snooze                           │
│  Stories worth staying up for        │
└──────────────────────────────────────┘

Browse the latest stories, share your own and keep a list of favorites.
Your login is remembered between runs.
		`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.Init(cmd.Context(), configFile)
		},
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowWelcome()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (default $HOME/.snooze/snooze.yaml)")

	// Stories command
	storiesCmd := &cobra.Command{
		Use:     "stories",
		Aliases: []string{"list"},
		Short:   "📚 List the latest stories",
		Long:    "Fetch every story from the service, newest first",
		Args:    cobra.NoArgs,
		RunE:    app.ListStories,
	}
	storiesCmd.Flags().BoolP("mine", "m", false, "Only stories you submitted")
	storiesCmd.Flags().BoolP("favorites", "f", false, "Only your favorite stories")

	// Submit command
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "📝 Submit a new story",
		Long:  "Share a story link; missing fields are asked for interactively",
		Args:  cobra.NoArgs,
		RunE:  app.SubmitStory,
	}
	submitCmd.Flags().StringP("title", "t", "", "Story title")
	submitCmd.Flags().StringP("author", "a", "", "Story author")
	submitCmd.Flags().StringP("url", "u", "", "Story url")

	// Account commands
	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "🪪 Create an account",
		Args:  cobra.NoArgs,
		RunE:  app.Signup,
	}
	signupCmd.Flags().StringP("username", "u", "", "Username")
	signupCmd.Flags().StringP("password", "p", "", "Password")
	signupCmd.Flags().StringP("name", "n", "", "Your name")

	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "🔑 Log in",
		Args:  cobra.NoArgs,
		RunE:  app.Login,
	}
	loginCmd.Flags().StringP("username", "u", "", "Username")
	loginCmd.Flags().StringP("password", "p", "", "Password")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "👋 Log out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE:  app.Logout,
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "👤 Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE:  app.WhoAmI,
	}

	// Favorites commands
	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "⭐ List your favorite stories",
		Args:  cobra.NoArgs,
		RunE:  app.ListFavorites,
	}

	favoriteCmd := &cobra.Command{
		Use:   "favorite",
		Short: "★ Star or unstar a story",
	}
	favoriteCmd.AddCommand(
		&cobra.Command{
			Use:   "add [story-id]",
			Short: "★ Add a story to your favorites",
			Args:  cobra.ExactArgs(1),
			RunE:  app.AddFavorite,
		},
		&cobra.Command{
			Use:   "remove [story-id]",
			Short: "☆ Remove a story from your favorites",
			Args:  cobra.ExactArgs(1),
			RunE:  app.RemoveFavorite,
		},
		&cobra.Command{
			Use:   "toggle [story-id]",
			Short: "✨ Flip the star on a story",
			Args:  cobra.ExactArgs(1),
			RunE:  app.ToggleFavorite,
		},
	)

	rootCmd.AddCommand(storiesCmd, submitCmd, signupCmd, loginCmd, logoutCmd, whoamiCmd, favoritesCmd, favoriteCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		app.ReportError(err)
		stop()
		os.Exit(1)
	}
}
