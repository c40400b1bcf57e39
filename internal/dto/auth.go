package dto

// LoginRequest admin login
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// RefreshTokenRequest refresh token exchange
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse issued token pair
type TokenResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"` // seconds
	Admin        AdminResponse `json:"admin"`
}

// AdminResponse admin profile without credentials
type AdminResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	AdminRole   string `json:"adminRole"`
	LastLoginAt string `json:"lastLoginAt,omitempty"`
}

// CreateAdminRequest provisioning a back-office account
type CreateAdminRequest struct {
	Name      string `json:"name"      binding:"required,min=2,max=100"`
	Email     string `json:"email"     binding:"required,email"`
	Password  string `json:"password"  binding:"required,min=8,max=72"`
	AdminRole string `json:"adminRole" binding:"omitempty,oneof=super_admin admin"`
}
