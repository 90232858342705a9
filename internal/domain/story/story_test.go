package story

import (
	"testing"
	"time"

	"snooze/internal/domain/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStory_HostName(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{"plain", "http://example.com/a", "example.com"},
		{"https with query", "https://news.example.org/path?q=1#frag", "news.example.org"},
		{"port is dropped", "http://localhost:8080/x", "localhost"},
		{"userinfo is dropped", "https://user:pw@host.example.net", "host.example.net"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			host, err := Story{URL: tc.url}.HostName()
			require.NoError(t, err)
			assert.Equal(t, tc.want, host)
		})
	}
}

func TestStory_HostNameMalformed(t *testing.T) {
	for _, raw := range []string{"not a url", "", "/relative/path", "mailto:someone@example.com", "http://[::1"} {
		t.Run(raw, func(t *testing.T) {
			host, err := Story{URL: raw}.HostName()
			assert.ErrorIs(t, err, errs.ErrMalformedURL)
			assert.Empty(t, host)
		})
	}
}

func TestStory_Validate(t *testing.T) {
	valid := Story{
		ID:        "a1",
		Title:     "Title",
		Author:    "Author",
		URL:       "http://example.com",
		Username:  "ann",
		CreatedAt: time.Now(),
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.Username = ""
	err := missing.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidation)

	var fieldErr *errs.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "username", fieldErr.Field)
}

func TestDraft_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		draft   Draft
		wantErr bool
		field   string
	}{
		{"complete", Draft{Title: "T", Author: "A", URL: "https://example.com"}, false, ""},
		{"empty title", Draft{Author: "A", URL: "https://example.com"}, true, "title"},
		{"blank author", Draft{Title: "T", Author: "   ", URL: "https://example.com"}, true, "author"},
		{"empty url", Draft{Title: "T", Author: "A"}, true, "url"},
		{"relative url", Draft{Title: "T", Author: "A", URL: "example.com/page"}, true, "url"},
		{"not a url", Draft{Title: "T", Author: "A", URL: "not a url"}, true, "url"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrValidation)
			var fieldErr *errs.FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
		})
	}
}
