package nest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"snooze/internal/api"
	"snooze/internal/cli/scheme/colours"
	"snooze/internal/config"
	"snooze/internal/domain/errs"
	"snooze/internal/domain/library"
	"snooze/internal/domain/story"
	"snooze/internal/domain/user"
	"snooze/internal/logging"
	"snooze/internal/session"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// StoryNest is the command-line front end over a session.
type StoryNest struct {
	state *session.State
	store *session.Store
	out   io.Writer
	in    *bufio.Reader
}

// NewStoryNest returns an app that still needs Init or Attach before use.
func NewStoryNest(out io.Writer, in io.Reader) *StoryNest {
	return &StoryNest{
		out: out,
		in:  bufio.NewReader(in),
	}
}

// Init loads configuration, sets up logging and resumes any stored session.
func (sn *StoryNest) Init(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	store := session.NewStore(cfg.Session.Path)
	sn.Attach(session.NewState(api.New(cfg.Client()), store), store)
	sn.state.Start(ctx)
	return nil
}

// Attach wires an existing session into the app.
func (sn *StoryNest) Attach(state *session.State, store *session.Store) {
	sn.state = state
	sn.store = store
}

func (sn *StoryNest) ShowWelcome() {
	fmt.Fprintln(sn.out)
	colours.Title.Fprintln(sn.out, "📰 snooze: stories worth staying up for")
	fmt.Fprintln(sn.out)
	colours.Info.Fprintln(sn.out, "📚 Available commands:")
	fmt.Fprintln(sn.out, "  • snooze stories         - Browse the latest stories")
	fmt.Fprintln(sn.out, "  • snooze submit          - Share a new story")
	fmt.Fprintln(sn.out, "  • snooze favorites       - Show your starred stories")
	fmt.Fprintln(sn.out, "  • snooze favorite toggle - Star or unstar a story")
	fmt.Fprintln(sn.out, "  • snooze login | signup  - Sign in or create an account")
	fmt.Fprintln(sn.out)

	if u := sn.state.CurrentUser(); u != nil {
		colours.Success.Fprintf(sn.out, "👋 Logged in as %s\n", u.Username)
	} else {
		colours.Warning.Fprintln(sn.out, "🔒 Not logged in")
	}
}

func (sn *StoryNest) ListStories(cmd *cobra.Command, args []string) error {
	mine, _ := cmd.Flags().GetBool("mine")
	favorites, _ := cmd.Flags().GetBool("favorites")

	switch {
	case favorites:
		return sn.ListFavorites(cmd, args)
	case mine:
		u := sn.state.CurrentUser()
		if u == nil {
			return fmt.Errorf("my stories: %w: login required", errs.ErrAuth)
		}
		if err := sn.state.RefreshFavorites(cmd.Context()); err != nil {
			return err
		}
		colours.Title.Fprintln(sn.out, "\n✍️  My Stories")
		sn.renderStories(sn.state.CurrentUser().OwnStories, "📭 You have not submitted any stories yet.")
		return nil
	}

	list, err := sn.state.LoadStories(cmd.Context())
	if err != nil {
		return err
	}

	colours.Title.Fprintln(sn.out, "\n📚 Latest Stories")
	sn.renderStories(list.Stories, "🔍 No stories yet.")
	return nil
}

func (sn *StoryNest) ListFavorites(cmd *cobra.Command, args []string) error {
	if sn.state.CurrentUser() == nil {
		return fmt.Errorf("favorites: %w: login required", errs.ErrAuth)
	}
	if err := sn.state.RefreshFavorites(cmd.Context()); err != nil {
		return err
	}

	colours.Title.Fprintln(sn.out, "\n⭐ Favorite Stories")
	sn.renderStories(sn.state.CurrentUser().Favorites, "☆ No favorites added!")
	return nil
}

func (sn *StoryNest) SubmitStory(cmd *cobra.Command, args []string) error {
	if sn.state.CurrentUser() == nil {
		return fmt.Errorf("submit story: %w: login required", errs.ErrAuth)
	}

	draft := story.Draft{}
	draft.Title, _ = cmd.Flags().GetString("title")
	draft.Author, _ = cmd.Flags().GetString("author")
	draft.URL, _ = cmd.Flags().GetString("url")

	if draft.Title == "" {
		draft.Title = sn.prompt("📝 Title: ")
	}
	if draft.Author == "" {
		draft.Author = sn.prompt("✍️  Author: ")
	}
	if draft.URL == "" {
		draft.URL = sn.prompt("🔗 URL: ")
	}

	created, err := sn.state.SubmitStory(cmd.Context(), draft)
	if err != nil {
		return err
	}

	colours.Success.Fprintln(sn.out, "✅ Story submitted!")
	sn.renderStory(1, created, sn.state.CurrentUser())
	return nil
}

func (sn *StoryNest) Signup(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	name, _ := cmd.Flags().GetString("name")

	if username == "" {
		username = sn.prompt("👤 Username: ")
	}
	if password == "" {
		password = sn.prompt("🔑 Password: ")
	}
	if name == "" {
		name = sn.prompt("🪪 Name: ")
	}

	u, err := sn.state.Signup(cmd.Context(), username, password, name)
	if err != nil {
		return err
	}

	colours.Success.Fprintf(sn.out, "🎉 Welcome, %s! Your account %s is ready.\n", u.Name, u.Username)
	return nil
}

func (sn *StoryNest) Login(cmd *cobra.Command, args []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	if username == "" {
		username = sn.prompt("👤 Username: ")
	}
	if password == "" {
		password = sn.prompt("🔑 Password: ")
	}

	u, err := sn.state.Login(cmd.Context(), username, password)
	if err != nil {
		return err
	}

	colours.Success.Fprintf(sn.out, "👋 Welcome back, %s!\n", u.Name)
	return nil
}

func (sn *StoryNest) Logout(cmd *cobra.Command, args []string) error {
	if err := sn.state.Logout(); err != nil {
		return err
	}
	colours.Warning.Fprintln(sn.out, "👋 Logged out. See you soon!")
	return nil
}

func (sn *StoryNest) WhoAmI(cmd *cobra.Command, args []string) error {
	u := sn.state.CurrentUser()
	if u == nil {
		colours.Warning.Fprintln(sn.out, "🔒 Not logged in")
		return nil
	}

	colours.Title.Fprintf(sn.out, "👤 %s", u.Username)
	fmt.Fprintf(sn.out, " (%s)\n", u.Name)
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(sn.out, "   📅 Member since %s\n", u.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintf(sn.out, "   ⭐ %d favorites | ✍️  %d stories\n", len(u.Favorites), len(u.OwnStories))
	if iat, ok := session.TokenIssuedAt(u.Token()); ok {
		fmt.Fprintf(sn.out, "   🔑 Token issued %s\n", iat.Format(time.RFC1123))
	}
	if sn.store != nil {
		colours.Info.Fprintf(sn.out, "   📁 Session file: %s\n", sn.store.Path())
	}
	return nil
}

func (sn *StoryNest) AddFavorite(cmd *cobra.Command, args []string) error {
	if err := sn.state.AddFavorite(cmd.Context(), args[0]); err != nil {
		return err
	}
	colours.Star.Fprintf(sn.out, "★ Added %s to favorites\n", sn.storyLabel(args[0]))
	return nil
}

func (sn *StoryNest) RemoveFavorite(cmd *cobra.Command, args []string) error {
	label := sn.storyLabel(args[0])
	if err := sn.state.RemoveFavorite(cmd.Context(), args[0]); err != nil {
		return err
	}
	colours.Info.Fprintf(sn.out, "☆ Removed %s from favorites\n", label)
	return nil
}

func (sn *StoryNest) ToggleFavorite(cmd *cobra.Command, args []string) error {
	label := sn.storyLabel(args[0])
	starred, err := sn.state.ToggleFavorite(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if starred {
		colours.Star.Fprintf(sn.out, "★ %s is now a favorite\n", sn.storyLabel(args[0]))
	} else {
		colours.Info.Fprintf(sn.out, "☆ %s is no longer a favorite\n", label)
	}
	return nil
}

// storyLabel names a story by title when it is in the loaded list or among
// the user's favorites, and by its identifier otherwise.
func (sn *StoryNest) storyLabel(id string) string {
	if s, ok := sn.state.Stories().Find(id); ok {
		return fmt.Sprintf("%q (%s)", s.Title, id)
	}
	if u := sn.state.CurrentUser(); u != nil {
		if s, ok := library.New(u.Favorites).Find(id); ok {
			return fmt.Sprintf("%q (%s)", s.Title, id)
		}
	}
	return id
}

// ReportError prints err with a hint that depends on its kind.
func (sn *StoryNest) ReportError(err error) {
	colours.Error.Fprintf(sn.out, "❌ Error: %v\n", err)

	switch errs.KindOf(err) {
	case errs.ErrAuth:
		colours.Info.Fprintln(sn.out, "💡 Log in again with: snooze login")
	case errs.ErrNetwork:
		colours.Info.Fprintln(sn.out, "💡 The story service could not be reached; try again later")
	case errs.ErrValidation:
		colours.Info.Fprintln(sn.out, "💡 Check the values you entered")
	case errs.ErrNotFound:
		colours.Info.Fprintln(sn.out, "💡 No such story or user; run snooze stories for current IDs")
	case errs.ErrMalformedURL:
		colours.Info.Fprintln(sn.out, "💡 Story URLs must be absolute, like https://example.com/post")
	case errs.ErrAPI:
		colours.Info.Fprintln(sn.out, "💡 The story service reported a problem; try again later")
	}
}

func (sn *StoryNest) renderStories(stories []story.Story, empty string) {
	fmt.Fprintln(sn.out)
	if len(stories) == 0 {
		colours.Warning.Fprintln(sn.out, empty)
		return
	}

	u := sn.state.CurrentUser()
	for i, s := range stories {
		sn.renderStory(i+1, s, u)
	}
	colours.Success.Fprintf(sn.out, "✨ %d stories\n", len(stories))
}

// renderStory prints one story. The star is only shown to a logged-in user.
func (sn *StoryNest) renderStory(n int, s story.Story, u *user.User) {
	fmt.Fprintf(sn.out, "  %d. ", n)
	if u != nil {
		if u.IsFavorite(s.ID) {
			colours.Star.Fprint(sn.out, "★ ")
		} else {
			fmt.Fprint(sn.out, "☆ ")
		}
	}
	colours.Title.Fprint(sn.out, s.Title)

	host, err := s.HostName()
	if err != nil {
		logrus.WithError(err).WithField("story_id", s.ID).Debug("Story has an unusable url")
		host = "invalid url"
	}
	colours.Host.Fprintf(sn.out, " (%s)\n", host)

	fmt.Fprint(sn.out, "     by ")
	colours.Author.Fprint(sn.out, s.Author)
	fmt.Fprintf(sn.out, " | posted by %s", s.Username)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(sn.out, " on %s", s.CreatedAt.Format("2006-01-02"))
	}
	fmt.Fprintln(sn.out)
	colours.Info.Fprintf(sn.out, "     ID: %s\n", s.ID)
	fmt.Fprintln(sn.out)
}

func (sn *StoryNest) prompt(label string) string {
	colours.Prompt.Fprint(sn.out, label)
	input, _ := sn.in.ReadString('\n')
	return strings.TrimSpace(input)
}
