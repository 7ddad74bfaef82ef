package handlers

import (
	"net/http"

	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"
	"blogapi/internal/utils/helpers"

	"go.uber.org/zap"
)

type AuthHandler struct {
	svc AuthService
}

func NewAuthHandler(svc AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary      Регистрация нового пользователя
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      models.RegisterRequest  true  "Данные регистрации"
// @Success      201    {object}  helpers.Response{data=models.AuthResponse}
// @Failure      400    {object}  helpers.Response
// @Router       /api/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := bind(w, r, &req, req.Trim); err != nil {
		logger.WithCtx(r.Context()).Warn("Некорректный запрос регистрации", zap.Error(err))
		helpers.Fail(w, r, err)
		return
	}

	resp, err := h.svc.Register(r.Context(), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, resp)
}

// Login godoc
// @Summary      Вход по email и паролю
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input  body      models.LoginRequest  true  "Учётные данные"
// @Success      200    {object}  helpers.Response{data=models.AuthResponse}
// @Failure      400    {object}  helpers.Response
// @Failure      401    {object}  helpers.Response
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := bind(w, r, &req, req.Trim); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	resp, err := h.svc.Login(r.Context(), req)
	if err != nil {
		logger.WithCtx(r.Context()).Info("Неудачный вход", zap.String("email", req.Email), zap.Error(err))
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, resp)
}

// Me godoc
// @Summary      Текущий пользователь
// @Description  Профиль с подписчиками и подписками
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  helpers.Response{data=map[string]models.Me}
// @Failure      401  {object}  helpers.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.svc.Me(r.Context(), reqctx.GetUserID(r.Context()))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": me})
}
