package view

import (
	"context"

	"cinecity-client/internal/model"
	"cinecity-client/internal/service"
)

const notProvided = "Not provided"

// Profile is the signed-in user page
type Profile struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Role     string  `json:"role"`
	Active   bool    `json:"active"`
	Error    *Banner `json:"error,omitempty"`
}

// BuildProfile formats user. The role is shown verbatim.
func BuildProfile(user model.User) *Profile {
	p := &Profile{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		Active:   user.IsActive == nil || *user.IsActive,
	}
	if p.FullName == "" {
		p.FullName = notProvided
	}
	return p
}

// LoadProfile fetches the current user
func LoadProfile(ctx context.Context, api *service.API) *Profile {
	user, err := api.Auth.CurrentUser(ctx)
	if err != nil {
		return &Profile{Error: Classify(err)}
	}
	return BuildProfile(*user)
}
