package library

import (
	"context"
	"errors"
	"testing"

	"snooze/internal/domain/errs"
	"snooze/internal/domain/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	stories []story.Story
	listErr error

	created    story.Story
	createErr  error
	gotToken   string
	gotDraft   story.Draft
	createCall int
}

func (f *fakeAPI) ListStories(ctx context.Context) ([]story.Story, error) {
	return f.stories, f.listErr
}

func (f *fakeAPI) CreateStory(ctx context.Context, token string, draft story.Draft) (story.Story, error) {
	f.createCall++
	f.gotToken = token
	f.gotDraft = draft
	return f.created, f.createErr
}

type tokenHolder string

func (t tokenHolder) Token() string { return string(t) }

func ids(l *StoryList) []string {
	out := make([]string, 0, l.Len())
	for _, s := range l.Stories {
		out = append(out, s.ID)
	}
	return out
}

func TestFetch_PreservesOrder(t *testing.T) {
	api := &fakeAPI{stories: []story.Story{{ID: "c"}, {ID: "a"}, {ID: "b"}}}

	list, err := Fetch(context.Background(), api)
	require.NoError(t, err)
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, []string{"c", "a", "b"}, ids(list))
}

func TestFetch_Error(t *testing.T) {
	api := &fakeAPI{listErr: &errs.APIError{Op: "list stories", Kind: errs.ErrNetwork}}

	list, err := Fetch(context.Background(), api)
	assert.Nil(t, list)
	assert.ErrorIs(t, err, errs.ErrNetwork)
}

func TestSubmit(t *testing.T) {
	draft := story.Draft{Title: "T", Author: "A", URL: "https://example.com"}
	api := &fakeAPI{created: story.Story{ID: "new", Title: "T", Author: "A", URL: "https://example.com", Username: "ann"}}

	created, err := Submit(context.Background(), api, tokenHolder("tok"), draft)
	require.NoError(t, err)
	assert.Equal(t, "new", created.ID)
	assert.Equal(t, "tok", api.gotToken)
	assert.Equal(t, draft, api.gotDraft)
}

func TestSubmit_RejectsBeforeCalling(t *testing.T) {
	testCases := []struct {
		name   string
		author Author
		draft  story.Draft
		want   error
	}{
		{"empty title", tokenHolder("tok"), story.Draft{Author: "A", URL: "https://example.com"}, errs.ErrValidation},
		{"bad url", tokenHolder("tok"), story.Draft{Title: "T", Author: "A", URL: "nope"}, errs.ErrValidation},
		{"no token", tokenHolder(""), story.Draft{Title: "T", Author: "A", URL: "https://example.com"}, errs.ErrAuth},
		{"no author", nil, story.Draft{Title: "T", Author: "A", URL: "https://example.com"}, errs.ErrAuth},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{}
			_, err := Submit(context.Background(), api, tc.author, tc.draft)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, api.createCall)
		})
	}
}

func TestSubmit_PropagatesAPIError(t *testing.T) {
	api := &fakeAPI{createErr: &errs.APIError{Op: "create story", Status: 401, Kind: errs.ErrAuth}}

	_, err := Submit(context.Background(), api, tokenHolder("expired"), story.Draft{Title: "T", Author: "A", URL: "https://example.com"})
	assert.ErrorIs(t, err, errs.ErrAuth)
	assert.True(t, errors.Is(err, errs.ErrAuth))
}

func TestStoryList_Prepend(t *testing.T) {
	list := New([]story.Story{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	list.Prepend(story.Story{ID: "new"})

	assert.Equal(t, []string{"new", "a", "b", "c"}, ids(list))
}

func TestStoryList_PrependEmpty(t *testing.T) {
	list := New(nil)
	list.Prepend(story.Story{ID: "only"})
	assert.Equal(t, []string{"only"}, ids(list))
}

func TestStoryList_Find(t *testing.T) {
	list := New([]story.Story{{ID: "a1", Title: "first"}, {ID: "b2"}})

	s, ok := list.Find("a1")
	assert.True(t, ok)
	assert.Equal(t, "first", s.Title)

	_, ok = list.Find("a")
	assert.False(t, ok)

	var nilList *StoryList
	_, ok = nilList.Find("a1")
	assert.False(t, ok)
	assert.Zero(t, nilList.Len())
}
