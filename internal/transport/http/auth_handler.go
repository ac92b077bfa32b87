package http

import (
	"net/http"

	"authsvc/internal/domain"
	"authsvc/internal/dto"
	"authsvc/internal/service"
)

type authHandler struct {
	auth    service.AuthService
	cookies CookieConfig
}

func (h *authHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Verification email sent", res)
}

func (h *authHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.auth.VerifyEmail(r.Context(), req.Token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Email verified successfully", map[string]any{"user": view})
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req, r.RemoteAddr, r.UserAgent())
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.setAuthCookies(w, res.AccessToken, res.RefreshToken, res.Persistent)
	writeSuccess(w, http.StatusOK, "Login successful", res)
}

func (h *authHandler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "If an account exists with this email, you will receive a password reset link", nil)
}

func (h *authHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Password reset successful", nil)
}

// logout revokes whatever the cookies (or a bearer header) still hold.
func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	access := accessToken(r)
	refresh := cookieValue(r, refreshCookie)
	if access == "" && refresh == "" {
		writeError(w, r, domain.ErrSessionExpired)
		return
	}
	for _, tok := range []string{access, refresh} {
		if err := h.auth.Logout(r.Context(), tok); err != nil {
			writeError(w, r, err)
			return
		}
	}
	h.cookies.clearAuthCookies(w)
	writeSuccess(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, refreshCookie)
	if token == "" {
		var req dto.RefreshRequest
		if err := decodeOptionalJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		writeError(w, r, domain.ErrRefreshTokenRequired)
		return
	}
	res, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.cookies.setAuthCookies(w, res.AccessToken, res.RefreshToken, res.Persistent)
	writeSuccess(w, http.StatusOK, "Token refreshed", res)
}
