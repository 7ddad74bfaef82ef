package handlers

import (
	"net/http"

	"blogapi/internal/logger"
	"blogapi/internal/utils/helpers"

	"go.uber.org/zap"
)

type TagHandler struct{ svc TagService }

func NewTagHandler(s TagService) *TagHandler {
	return &TagHandler{svc: s}
}

// List
// @Summary      Теги
// @Description  Все теги с количеством опубликованных статей
// @Tags         tags
// @Produce      json
// @Success      200 {object} helpers.Response{data=map[string][]models.TagWithCount}
// @Router       /api/tags [get]
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.List(r.Context())
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Debug("tags: список получен", zap.Int("count", len(tags)))
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}
