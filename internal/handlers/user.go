package handlers

import (
	"net/http"

	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"
	"blogapi/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile
// @Summary      Публичный профиль
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  helpers.Response{data=map[string]models.Profile}
// @Failure      404       {object}  helpers.Response
// @Router       /api/users/{username} [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Profile(r.Context(), mux.Vars(r)["username"], reqctx.GetUserID(r.Context()))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": p})
}

// ToggleFollow
// @Summary      Подписаться или отписаться
// @Tags         users
// @Produce      json
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  helpers.Response{data=models.FollowResult}
// @Failure      400       {object}  helpers.Response
// @Failure      404       {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/users/{username}/follow [post]
func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ToggleFollow(r.Context(), reqctx.GetUserID(r.Context()), mux.Vars(r)["username"])
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}

// UpdateProfile
// @Summary      Изменить свой профиль
// @Description  name, bio, avatar; пустые bio и avatar очищают поле
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      models.UpdateProfileRequest  true  "Изменения"
// @Success      200   {object}  helpers.Response{data=map[string]models.User}
// @Failure      400   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/users/profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := bind(w, r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), reqctx.GetUserID(r.Context()), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Профиль обновлён", zap.String("user_id", u.ID.String()))
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": u})
}
