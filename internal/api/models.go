package api

import (
	"time"

	"snooze/internal/domain/story"
)

// UserRecord is the user object returned by the signup, login and user endpoints.
type UserRecord struct {
	Username  string        `json:"username" validate:"required"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Favorites []story.Story `json:"favorites" validate:"dive"`
	Stories   []story.Story `json:"stories" validate:"dive"`
}

// AuthResult is what signup and login hand back.
type AuthResult struct {
	User  UserRecord `json:"user" validate:"required"`
	Token string     `json:"token" validate:"required"`
}

type storiesResponse struct {
	Stories []story.Story `json:"stories" validate:"required,dive"`
}

type storyResponse struct {
	Story story.Story `json:"story" validate:"required"`
}

type userResponse struct {
	User UserRecord `json:"user" validate:"required"`
}

type createStoryRequest struct {
	Token string      `json:"token"`
	Story story.Draft `json:"story"`
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type authRequest struct {
	User credentialsBody `json:"user"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

// errorBody matches {"error": {"status": 401, "title": "...", "message": "..."}}.
type errorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Title   string `json:"title"`
		Message string `json:"message"`
	} `json:"error"`
}
