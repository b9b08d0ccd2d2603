package httpapi

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/dmitrijs2005/accountd/internal/server/services"
)

const (
	maxBodyBytes   = 1 << 20
	msgInvalidBody = "Invalid request body"
	msgInvalidAge  = "Invalid age"
)

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Age      json.Number `json:"age"`
	DOB      string      `json:"dob"`
	Contact  string      `json:"contact"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type updateProfileRequest struct {
	Name    string      `json:"name"`
	Age     json.Number `json:"age"`
	DOB     string      `json:"dob"`
	Contact string      `json:"contact"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeMessage(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// age turns an optional JSON number into an int; absent is 0.
func age(n json.Number) (int, bool) {
	if n == "" {
		return 0, true
	}
	v, err := n.Int64()
	if err != nil || v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

func (h *Router) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}
	a, ok := age(req.Age)
	if !ok {
		writeMessage(w, http.StatusBadRequest, msgInvalidAge)
		return
	}

	_, err := h.accounts.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Age:      a,
		DOB:      req.DOB,
		Contact:  req.Contact,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusCreated, services.MsgUserRegistered)
}

func (h *Router) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), services.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *Router) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	user, err := h.accounts.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Router) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, services.MsgMissingToken)
		return
	}

	var req updateProfileRequest
	if !decode(w, r, &req) {
		return
	}
	a, ok := age(req.Age)
	if !ok {
		writeMessage(w, http.StatusBadRequest, msgInvalidAge)
		return
	}

	_, err := h.accounts.UpdateProfile(r.Context(), userID, services.UpdateProfileInput{
		Name:    req.Name,
		Age:     a,
		DOB:     req.DOB,
		Contact: req.Contact,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeMessage(w, http.StatusOK, services.MsgProfileUpdated)
}
