package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"blogapi/internal/logger"
	"blogapi/internal/models"
	"blogapi/internal/reqctx"
	"blogapi/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ArticleHandler struct {
	svc ArticleService
}

func NewArticleHandler(svc ArticleService) *ArticleHandler {
	return &ArticleHandler{svc: svc}
}

// List
// @Summary      Список статей
// @Description  Пагинация и фильтры по тегу, автору и поиску. Черновики (published=false) видит только их автор.
// @Tags         articles
// @Produce      json
// @Param        page       query  int     false  "Страница (с 1)"
// @Param        limit      query  int     false  "Размер страницы (до 100)"
// @Param        tag        query  string  false  "Слаг тега"
// @Param        author     query  string  false  "Username автора"
// @Param        search     query  string  false  "Поиск по заголовку и тексту"
// @Param        published  query  bool    false  "Опубликованные (по умолчанию true)"
// @Success      200  {object}  helpers.Response{data=models.ArticleList}
// @Router       /api/articles [get]
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), articleFilter(r))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, list)
}

// articleFilter собирает фильтр из query; нечисловые page/limit заменяются дефолтами в сервисе.
func articleFilter(r *http.Request) models.ArticleFilter {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	published := true
	if v, err := strconv.ParseBool(q.Get("published")); err == nil {
		published = v
	}

	return models.ArticleFilter{
		Page:      page,
		Limit:     limit,
		Tag:       strings.TrimSpace(q.Get("tag")),
		Author:    strings.TrimSpace(q.Get("author")),
		Search:    strings.TrimSpace(q.Get("search")),
		Published: published,
		ViewerID:  reqctx.GetUserID(r.Context()),
	}
}

// Get
// @Summary      Статья по слагу
// @Description  Возвращает статью с комментариями и лайками, увеличивает счётчик просмотров
// @Tags         articles
// @Produce      json
// @Param        slug  path      string  true  "Слаг статьи"
// @Success      200   {object}  helpers.Response{data=map[string]models.ArticleDetail}
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Router       /api/articles/{slug} [get]
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.svc.Get(r.Context(), mux.Vars(r)["slug"], reqctx.GetUserID(r.Context()))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

// Create
// @Summary      Создать статью
// @Description  Слаг строится из заголовка; HTML очищается. До 10 тегов.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        body  body      models.CreateArticleRequest  true  "Данные статьи"
// @Success      201   {object}  helpers.Response{data=map[string]models.Article}
// @Failure      400   {object}  helpers.Response
// @Failure      401   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/articles [post]
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateArticleRequest
	if err := bind(w, r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	article, err := h.svc.Create(r.Context(), reqctx.GetUserID(r.Context()), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}

	logger.WithCtx(r.Context()).Info("Статья создана",
		zap.String("id", article.ID.String()),
		zap.String("slug", article.Slug),
	)
	helpers.JSON(w, http.StatusCreated, map[string]interface{}{"article": article})
}

// Update
// @Summary      Обновить статью
// @Description  Только автор. Переданные поля заменяются, tags заменяет весь набор.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Param        slug  path      string                       true  "Слаг статьи"
// @Param        body  body      models.UpdateArticleRequest  true  "Изменения"
// @Success      200   {object}  helpers.Response{data=map[string]models.Article}
// @Failure      400   {object}  helpers.Response
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/articles/{slug} [put]
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateArticleRequest
	if err := bind(w, r, &req); err != nil {
		helpers.Fail(w, r, err)
		return
	}

	article, err := h.svc.Update(r.Context(), mux.Vars(r)["slug"], reqctx.GetUserID(r.Context()), req)
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"article": article})
}

// Delete
// @Summary      Удалить статью
// @Tags         articles
// @Produce      json
// @Param        slug  path      string  true  "Слаг статьи"
// @Success      200   {object}  helpers.Response
// @Failure      403   {object}  helpers.Response
// @Failure      404   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/articles/{slug} [delete]
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	if err := h.svc.Delete(r.Context(), slug, reqctx.GetUserID(r.Context())); err != nil {
		helpers.Fail(w, r, err)
		return
	}
	logger.WithCtx(r.Context()).Info("Статья удалена", zap.String("slug", slug))
	helpers.Message(w, http.StatusOK, "Article deleted successfully")
}

// ToggleLike
// @Summary      Поставить или снять лайк
// @Tags         articles
// @Produce      json
// @Param        slug  path      string  true  "Слаг статьи"
// @Success      200   {object}  helpers.Response{data=models.LikeResult}
// @Failure      404   {object}  helpers.Response
// @Security     BearerAuth
// @Router       /api/articles/{slug}/like [post]
func (h *ArticleHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ToggleLike(r.Context(), mux.Vars(r)["slug"], reqctx.GetUserID(r.Context()))
	if err != nil {
		helpers.Fail(w, r, err)
		return
	}
	helpers.JSON(w, http.StatusOK, res)
}
