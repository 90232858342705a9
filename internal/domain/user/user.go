// Package user models the signed-in account: its token, favorites and own stories.
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"snooze/internal/api"
	"snooze/internal/domain/errs"
	"snooze/internal/domain/story"

	"github.com/sirupsen/logrus"
)

// API is the part of the remote service a User needs.
type API interface {
	Signup(ctx context.Context, username, password, name string) (api.AuthResult, error)
	Login(ctx context.Context, username, password string) (api.AuthResult, error)
	GetUser(ctx context.Context, token, username string) (api.UserRecord, error)
	AddFavorite(ctx context.Context, token, username, storyID string) (api.UserRecord, error)
	RemoveFavorite(ctx context.Context, token, username, storyID string) (api.UserRecord, error)
}

// User is the account behind the current session.
type User struct {
	Username   string
	Name       string
	CreatedAt  time.Time
	Favorites  []story.Story
	OwnStories []story.Story

	token string
}

func fromRecord(rec api.UserRecord, token string) *User {
	return &User{
		Username:   rec.Username,
		Name:       rec.Name,
		CreatedAt:  rec.CreatedAt,
		Favorites:  nonNil(rec.Favorites),
		OwnStories: nonNil(rec.Stories),
		token:      token,
	}
}

func nonNil(stories []story.Story) []story.Story {
	if stories == nil {
		return []story.Story{}
	}
	return stories
}

// Register creates a new account and returns it signed in.
func Register(ctx context.Context, a API, username, password, name string) (*User, error) {
	switch {
	case strings.TrimSpace(username) == "":
		return nil, fmt.Errorf("register: %w", &errs.FieldError{Field: "username", Message: "is required"})
	case password == "":
		return nil, fmt.Errorf("register: %w", &errs.FieldError{Field: "password", Message: "is required"})
	case strings.TrimSpace(name) == "":
		return nil, fmt.Errorf("register: %w", &errs.FieldError{Field: "name", Message: "is required"})
	}

	res, err := a.Signup(ctx, username, password, name)
	if err != nil {
		return nil, fmt.Errorf("register %q: %w", username, err)
	}

	logrus.WithField("username", res.User.Username).Info("Registered new user")
	return fromRecord(res.User, res.Token), nil
}

// Authenticate logs in with a username and password.
func Authenticate(ctx context.Context, a API, username, password string) (*User, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("authenticate: %w: username and password are required", errs.ErrAuth)
	}

	res, err := a.Login(ctx, username, password)
	if err != nil {
		// the API answers 404 for an unknown username; to the caller that is a bad login
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("authenticate %q: %w: %v", username, errs.ErrAuth, err)
		}
		return nil, fmt.Errorf("authenticate %q: %w", username, err)
	}

	logrus.WithField("username", res.User.Username).Info("Logged in")
	return fromRecord(res.User, res.Token), nil
}

// RestoreSession rebuilds a User from stored credentials. Any failure yields
// nil so the caller can carry on logged out.
func RestoreSession(ctx context.Context, a API, token, username string) *User {
	if token == "" || username == "" {
		return nil
	}

	rec, err := a.GetUser(ctx, token, username)
	if err != nil {
		logrus.WithError(err).WithField("username", username).Info("Could not restore session")
		return nil
	}

	return fromRecord(rec, token)
}

// Token returns the session token, or "" for a nil user.
func (u *User) Token() string {
	if u == nil {
		return ""
	}
	return u.token
}

// AddFavorite marks storyID as a favorite. On success the local favorites are
// replaced by the server's list.
func (u *User) AddFavorite(ctx context.Context, a API, storyID string) error {
	if err := u.requireToken("add favorite"); err != nil {
		return err
	}

	rec, err := a.AddFavorite(ctx, u.token, u.Username, storyID)
	if err != nil {
		return fmt.Errorf("add favorite %q: %w", storyID, err)
	}

	u.Favorites = nonNil(rec.Favorites)
	return nil
}

// RemoveFavorite unmarks storyID, same contract as AddFavorite.
func (u *User) RemoveFavorite(ctx context.Context, a API, storyID string) error {
	if err := u.requireToken("remove favorite"); err != nil {
		return err
	}

	rec, err := a.RemoveFavorite(ctx, u.token, u.Username, storyID)
	if err != nil {
		return fmt.Errorf("remove favorite %q: %w", storyID, err)
	}

	u.Favorites = nonNil(rec.Favorites)
	return nil
}

// RefreshFavorites re-reads the profile and replaces favorites and own stories.
func (u *User) RefreshFavorites(ctx context.Context, a API) error {
	if err := u.requireToken("refresh favorites"); err != nil {
		return err
	}

	rec, err := a.GetUser(ctx, u.token, u.Username)
	if err != nil {
		return fmt.Errorf("refresh favorites: %w", err)
	}

	u.Favorites = nonNil(rec.Favorites)
	u.OwnStories = nonNil(rec.Stories)
	return nil
}

// IsFavorite reports whether a favorite has exactly this identifier.
func (u *User) IsFavorite(storyID string) bool {
	if u == nil {
		return false
	}
	return contains(u.Favorites, storyID)
}

// IsOwnStory reports whether the user submitted storyID.
func (u *User) IsOwnStory(storyID string) bool {
	if u == nil {
		return false
	}
	return contains(u.OwnStories, storyID)
}

func contains(stories []story.Story, id string) bool {
	for _, s := range stories {
		if s.ID == id {
			return true
		}
	}
	return false
}

func (u *User) requireToken(op string) error {
	if u.Token() == "" {
		return fmt.Errorf("%s: %w: login required", op, errs.ErrAuth)
	}
	return nil
}
