package handlers

import (
	"net/http"

	"blogapi/internal/models"
	"blogapi/internal/reqctx"
	"blogapi/internal/utils/helpers"

	"github.com/gorilla/mux"
)

type CommentHandler struct {
	svc CommentService
}

func NewCommentHandler(svc CommentService) *CommentHandler {
	return &CommentHandler{svc: svc}
}

// List
// @Summary      Комментарии к статье
// @Description  Корневые комментарии (новые сверху) с ответами (старые сверху)
// @Tags         comments
// @Produce      json
// @Param        slug  path      string  true  "Слаг статьи"
// @Success      200   {object}  helpers.Response{data=map[string][]models.Comment}
// @Failure      404   {object}  helpers.Response
// @Router       /api/comments/{slug} [get]
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.List(r.Context(), mux.Vars(r)["slug"], reqctx.GetUserID(r.Context()))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Create
// @Summary      Добавить комментарий
// @Description  parentId делает комментарий ответом; вложенность — один уровень
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        slug  path      string                       true  "Слаг статьи"
// @Param        body  body      models.CreateCommentRequest  true  "Комментарий"
// @Success      201   {object}  helpers.Response{data=map[string]models.Comment}
// @Failure      400   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/comments/{slug} [post]
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCommentRequest
	if err := bind(w, r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	c, err := h.svc.Create(r.Context(), mux.Vars(r)["slug"], reqctx.GetUserID(r.Context()), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusCreated, map[string]interface{}{"comment": c})
}

// Update
// @Summary      Изменить комментарий
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id    path      string                       true  "ID комментария"
// @Param        body  body      models.UpdateCommentRequest  true  "Новый текст"
// @Success      200   {object}  helpers.Response{data=map[string]models.Comment}
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/comments/{id} [put]
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	var req models.UpdateCommentRequest
	if err := bind(w, r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	c, err := h.svc.Update(r.Context(), id, reqctx.GetUserID(r.Context()), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"comment": c})
}

// Delete
// @Summary      Удалить комментарий
// @Description  Вместе с ответами
// @Tags         comments
// @Produce      json
// @Param        id  path      string  true  "ID комментария"
// @Success      200 {object}  helpers.Response
// @Failure      403 {object}  helpers.Response
// @Failure      404 {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/comments/{id} [delete]
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "id")
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id, reqctx.GetUserID(r.Context())); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.Message(w, http.StatusOK, "Comment deleted successfully")
}
