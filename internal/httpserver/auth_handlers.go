package httpserver

import (
	"encoding/json"
	"net/http"

	"quickchat/internal/service"
)

type signupRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Bio      string `json:"bio"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName   string `json:"fullName"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profilePic"`
}

// authResponse mirrors the shape the frontend stores on login/signup.
type authResponse struct {
	Success  bool   `json:"success"`
	Token    string `json:"token"`
	UserData any    `json:"userData"`
	Message  string `json:"message"`
}

func handleSignup(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failure("invalid JSON body"))
			return
		}
		if msg, ok := validateBody(&req); !ok {
			writeJSON(w, http.StatusBadRequest, failure(msg))
			return
		}

		user, token, err := authSvc.Signup(r.Context(), service.SignupInput{
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
			Bio:      req.Bio,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, authResponse{
			Success:  true,
			Token:    token,
			UserData: user,
			Message:  "Account created successfully",
		})
	}
}

func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failure("invalid JSON body"))
			return
		}
		if msg, ok := validateBody(&req); !ok {
			writeJSON(w, http.StatusBadRequest, failure(msg))
			return
		}

		user, token, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, authResponse{
			Success:  true,
			Token:    token,
			UserData: user,
			Message:  "Login successful",
		})
	}
}

func handleCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    user,
		})
	}
}

func handleUpdateProfile(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)

		var req updateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, failure("invalid JSON body"))
			return
		}

		updated, err := authSvc.UpdateProfile(r.Context(), user, service.UpdateProfileInput{
			FullName:   req.FullName,
			Bio:        req.Bio,
			ProfilePic: req.ProfilePic,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"user":    updated,
		})
	}
}
