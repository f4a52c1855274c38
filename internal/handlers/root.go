package handlers

import (
	"net/http"

	"github.com/vaughan-dsouza/thepath/internal/utils"
)

const welcomeMessage = "Welcome to The Path!"

type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

func (h *RootHandler) Greet(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"message": welcomeMessage})
}
