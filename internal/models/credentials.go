package models

// SignInRequest is the body of POST /sessions
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" validate:"required,email,max=255"`
	Password string `json:"password" binding:"required" validate:"required"`
}

// SignUpRequest is the body of POST /users
type SignUpRequest struct {
	Name     string `json:"name" binding:"required,max=100" validate:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255" validate:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6" validate:"required,min=6"`
}

// UpdateProfileRequest is the body of PUT /profile. The password fields are
// only sent when the user asks to change the password.
type UpdateProfileRequest struct {
	Name                 string `json:"name" binding:"required,max=100" validate:"required,max=100"`
	Email                string `json:"email" binding:"required,email,max=255" validate:"required,email,max=255"`
	OldPassword          string `json:"old_password,omitempty" validate:"omitempty"`
	Password             string `json:"password,omitempty" binding:"required_with=OldPassword,omitempty,min=6" validate:"required_with=OldPassword,omitempty,min=6"`
	PasswordConfirmation string `json:"password_confirmation,omitempty" binding:"required_with=OldPassword,eqfield=Password" validate:"required_with=OldPassword,eqfield=Password"`
}

// WantsPasswordChange reports whether the password fields take part in the update
func (r *UpdateProfileRequest) WantsPasswordChange() bool {
	return r.OldPassword != ""
}
