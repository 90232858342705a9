// Package session holds the process-wide client state: who is logged in and
// which stories are loaded. It starts logged out with no stories; every
// mutation replaces state only after the remote call succeeded.
package session

import (
	"context"
	"fmt"
	"sync"

	"snooze/internal/domain/errs"
	"snooze/internal/domain/library"
	"snooze/internal/domain/story"
	"snooze/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// API is everything the session calls on the remote service.
type API interface {
	library.API
	user.API
}

// State is the current user and story list.
type State struct {
	api   API
	store *Store

	mu      sync.RWMutex
	current *user.User
	stories *library.StoryList
}

// NewState returns a logged-out state with an empty story list.
func NewState(api API, store *Store) *State {
	return &State{
		api:     api,
		store:   store,
		stories: library.New(nil),
	}
}

// Start tries once to resume the stored session. Failure is never reported,
// the state just stays logged out for this run. The stored credentials are
// kept so a later run can retry; login and logout replace them.
func (s *State) Start(ctx context.Context) {
	creds, err := s.store.Load()
	if err != nil {
		logrus.WithError(err).Warn("Ignoring unreadable session file")
		return
	}
	if creds.Empty() {
		return
	}

	u := user.RestoreSession(ctx, s.api, creds.Token, creds.Username)
	if u == nil {
		return
	}

	s.mu.Lock()
	s.current = u
	s.mu.Unlock()
}

// Login authenticates and remembers the credentials.
func (s *State) Login(ctx context.Context, username, password string) (*user.User, error) {
	u, err := user.Authenticate(ctx, s.api, username, password)
	if err != nil {
		return nil, err
	}
	s.setUser(u)
	return u, nil
}

// Signup registers and remembers the credentials.
func (s *State) Signup(ctx context.Context, username, password, name string) (*user.User, error) {
	u, err := user.Register(ctx, s.api, username, password, name)
	if err != nil {
		return nil, err
	}
	s.setUser(u)
	return u, nil
}

func (s *State) setUser(u *user.User) {
	s.mu.Lock()
	s.current = u
	s.mu.Unlock()

	if err := s.store.Save(Credentials{Username: u.Username, Token: u.Token()}); err != nil {
		logrus.WithError(err).Warn("Failed to persist session; it will not survive a restart")
	}
}

// Logout drops the current user and the stored credentials. The token is
// not revoked server-side.
func (s *State) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	return s.store.Clear()
}

// CurrentUser returns the logged-in user, or nil.
func (s *State) CurrentUser() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Stories returns the loaded story list.
func (s *State) Stories() *library.StoryList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stories
}

// LoadStories fetches the story list and replaces the loaded one.
func (s *State) LoadStories(ctx context.Context) (*library.StoryList, error) {
	list, err := library.Fetch(ctx, s.api)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.stories = list
	s.mu.Unlock()
	return list, nil
}

// SubmitStory submits draft as the current user and puts the new story at
// the front of the loaded list.
func (s *State) SubmitStory(ctx context.Context, draft story.Draft) (story.Story, error) {
	u, err := s.requireUser("submit story")
	if err != nil {
		return story.Story{}, err
	}

	created, err := library.Submit(ctx, s.api, u, draft)
	if err != nil {
		return story.Story{}, err
	}

	s.mu.Lock()
	s.stories.Prepend(created)
	if s.current == u {
		next := *u
		next.OwnStories = append([]story.Story{created}, u.OwnStories...)
		s.current = &next
	}
	s.mu.Unlock()
	return created, nil
}

// AddFavorite marks storyID as a favorite of the current user.
func (s *State) AddFavorite(ctx context.Context, storyID string) error {
	return s.mutateUser("add favorite", func(u *user.User) error {
		return u.AddFavorite(ctx, s.api, storyID)
	})
}

// RemoveFavorite unmarks storyID.
func (s *State) RemoveFavorite(ctx context.Context, storyID string) error {
	return s.mutateUser("remove favorite", func(u *user.User) error {
		return u.RemoveFavorite(ctx, s.api, storyID)
	})
}

// RefreshFavorites replaces favorites with the server's list.
func (s *State) RefreshFavorites(ctx context.Context) error {
	return s.mutateUser("refresh favorites", func(u *user.User) error {
		return u.RefreshFavorites(ctx, s.api)
	})
}

// ToggleFavorite flips the star on storyID and returns whether it is now a favorite.
func (s *State) ToggleFavorite(ctx context.Context, storyID string) (bool, error) {
	u, err := s.requireUser("toggle favorite")
	if err != nil {
		return false, err
	}

	if u.IsFavorite(storyID) {
		if err := s.RemoveFavorite(ctx, storyID); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.AddFavorite(ctx, storyID); err != nil {
		return false, err
	}
	return true, nil
}

// mutateUser runs fn on a copy of the current user and swaps the copy in
// only when fn succeeds.
func (s *State) mutateUser(op string, fn func(u *user.User) error) error {
	u, err := s.requireUser(op)
	if err != nil {
		return err
	}

	next := *u
	if err := fn(&next); err != nil {
		return err
	}

	s.mu.Lock()
	if s.current == u {
		s.current = &next
	}
	s.mu.Unlock()
	return nil
}

func (s *State) requireUser(op string) (*user.User, error) {
	u := s.CurrentUser()
	if u == nil {
		return nil, fmt.Errorf("%s: %w: login required", op, errs.ErrAuth)
	}
	return u, nil
}
