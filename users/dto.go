package users

import "time"

// UserProfileResponse is the signed-in user's own profile.
// @Description User profile information
type UserProfileResponse struct {
	ID        string       `json:"id" example:"7d5c2c8e-6a0e-4a43-9d0e-3f1d4b5a9c11"`
	Email     *string      `json:"email,omitempty" example:"cook@example.com"`
	Name      string       `json:"name" example:"Ada"`
	Image     *string      `json:"image,omitempty"`
	Providers []string     `json:"providers" example:"google,credentials"`
	Stats     ProfileStats `json:"stats"`
	CreatedAt time.Time    `json:"createdAt"`
}

// ProfileStats summarises the user's cooking activity.
type ProfileStats struct {
	Recipes       int `json:"recipes"`
	PublicRecipes int `json:"publicRecipes"`
	LikesReceived int `json:"likesReceived"`
	DaysLogged    int `json:"daysLogged"`
}

// PublicProfileResponse is what other users can see.
type PublicProfileResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Image         *string   `json:"image,omitempty"`
	PublicRecipes int       `json:"publicRecipes"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UpdateUserProfileRequest is a partial update; nil fields are left unchanged.
// An empty image string removes the image.
type UpdateUserProfileRequest struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=100" example:"Ada L."`
	Image *string `json:"image,omitempty" validate:"omitempty,url,max=2048"`
}
