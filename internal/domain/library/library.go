package library

import (
	"context"
	"fmt"

	"snooze/internal/domain/errs"
	"snooze/internal/domain/story"

	"github.com/sirupsen/logrus"
)

// API is the part of the remote service a StoryList needs.
type API interface {
	ListStories(ctx context.Context) ([]story.Story, error)
	CreateStory(ctx context.Context, token string, draft story.Draft) (story.Story, error)
}

// Author is whoever submits a story. Only the token is used.
type Author interface {
	Token() string
}

// StoryList is an ordered collection of stories, newest first.
type StoryList struct {
	Stories []story.Story `json:"stories"`
}

// New wraps stories without copying them.
func New(stories []story.Story) *StoryList {
	return &StoryList{Stories: stories}
}

// Fetch reads the full story list from the API, keeping server order.
func Fetch(ctx context.Context, api API) (*StoryList, error) {
	stories, err := api.ListStories(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch stories: %w", err)
	}

	logrus.WithField("count", len(stories)).Debug("Fetched stories")
	return New(stories), nil
}

// Submit creates draft on behalf of author and returns the stored story.
// The list itself is untouched; callers Prepend the result.
func Submit(ctx context.Context, api API, author Author, draft story.Draft) (story.Story, error) {
	if author == nil || author.Token() == "" {
		return story.Story{}, fmt.Errorf("submit story: %w: login required", errs.ErrAuth)
	}
	if err := draft.Validate(); err != nil {
		return story.Story{}, fmt.Errorf("submit story: %w", err)
	}

	created, err := api.CreateStory(ctx, author.Token(), draft)
	if err != nil {
		return story.Story{}, fmt.Errorf("submit story: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"story_id": created.ID,
		"title":    created.Title,
	}).Info("Submitted story")
	return created, nil
}

// Prepend puts s at the front, keeping the relative order of the rest.
func (l *StoryList) Prepend(s story.Story) {
	l.Stories = append([]story.Story{s}, l.Stories...)
}

// Len returns the number of stories.
func (l *StoryList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Stories)
}

// Find looks a story up by identifier.
func (l *StoryList) Find(id string) (story.Story, bool) {
	if l == nil {
		return story.Story{}, false
	}
	for _, s := range l.Stories {
		if s.ID == id {
			return s, true
		}
	}
	return story.Story{}, false
}
