package v1

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30" example:"alice"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.org"`
	Password string `json:"password" binding:"required,min=6" example:"123456"`
}

type LoginRequest struct {
	Account  string `json:"account" binding:"required" example:"alice"` // username or email
	Password string `json:"password" binding:"required" example:"123456"`
}
type LoginResponseData struct {
	AccessToken string `json:"accessToken"`
}
type LoginResponse struct {
	Response
	Data LoginResponseData
}

// UpdateProfileRequest changes the email, display settings or password.
// A password change needs the old password and a matching confirmation.
type UpdateProfileRequest struct {
	Email           string `json:"email" binding:"omitempty,email" example:"alice@example.org"`
	DisplayName     string `json:"displayName" example:"Alice"`
	Language        string `json:"language" binding:"omitempty,max=10" example:"en"`
	OldPassword     string `json:"oldPassword" example:"oldpassword"`
	NewPassword     string `json:"newPassword" binding:"omitempty,min=6" example:"newpassword"`
	ConfirmPassword string `json:"confirmPassword" example:"newpassword"`
}
type GetProfileResponseData struct {
	UserId      string `json:"userId"`
	Username    string `json:"username" example:"alice"`
	Email       string `json:"email" example:"alice@example.org"`
	DisplayName string `json:"displayName" example:"Alice"`
	Language    string `json:"language" example:"en"`
	IsSuperuser bool   `json:"isSuperuser"`
}
type GetProfileResponse struct {
	Response
	Data GetProfileResponseData
}
