package controllers

import (
	"net/http"

	"go-storefront/services"
	"go-storefront/utils"
)

// AuthController handles sign-up, sign-in and password reset requests
type AuthController struct {
	Auth   *services.AuthService
	Reset  *services.PasswordResetService
	Cookie CookieConfig
}

func NewAuthController(auth *services.AuthService, reset *services.PasswordResetService, cookie CookieConfig) *AuthController {
	return &AuthController{Auth: auth, Reset: reset, Cookie: cookie}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleRequest struct {
	AccessToken string `json:"access_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type otpRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type resetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (ac *AuthController) respondSession(w http.ResponseWriter, status int, message string, sess *services.Session) {
	ac.Cookie.set(w, sess.Token)
	utils.WriteSuccess(w, status, utils.H{"message": message, "user": sess.User, "token": sess.Token})
}

// Signup handles account registration
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	sess, err := ac.Auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	ac.respondSession(w, http.StatusCreated, "User registered successfully", sess)
}

// Login handles password authentication
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	sess, err := ac.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	ac.respondSession(w, http.StatusOK, "Login successful", sess)
}

// Google signs in with a Google OAuth access token
func (ac *AuthController) Google(w http.ResponseWriter, r *http.Request) {
	var req googleRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	sess, err := ac.Auth.GoogleLogin(r.Context(), req.AccessToken)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	ac.respondSession(w, http.StatusOK, "Google login successful", sess)
}

// Logout clears the session cookie. Tokens are stateless, so nothing is revoked server side.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	ac.Cookie.clear(w)
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Logout successful"})
}

func (ac *AuthController) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := ac.Reset.RequestReset(r.Context(), req.Email); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "OTP sent to your email"})
}

func (ac *AuthController) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req otpRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := ac.Reset.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "OTP verified"})
}

func (ac *AuthController) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decode(r, &req); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if err := ac.Reset.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, utils.H{"message": "Password reset successful"})
}
