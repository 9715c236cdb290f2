// Пакет httpapi переводит HTTP-запросы в события виджета корзины:
// клик по кнопке "добавить", ввод количества и клик по удалению.
package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/carrinho/internal/cart"
	"github.com/vladislavdragonenkov/carrinho/internal/catalog"
	"github.com/vladislavdragonenkov/carrinho/internal/domain"
	"github.com/vladislavdragonenkov/carrinho/internal/money"
	"github.com/vladislavdragonenkov/carrinho/internal/presenter"
	"github.com/vladislavdragonenkov/carrinho/internal/storage"
	"github.com/vladislavdragonenkov/carrinho/internal/widget"
)

// Metrics нужен и корзине, и виджету.
type Metrics interface {
	cart.Recorder
	widget.Recorder
}

// Deps зависимости обработчиков.
type Deps struct {
	KV       domain.KVStore
	Catalog  *catalog.Template
	Notifier domain.ChangeNotifier
	Metrics  Metrics
	Logger   *log.Entry
}

// Handler обслуживает витрину и корзину текущей сессии.
type Handler struct {
	kv       domain.KVStore
	catalog  *catalog.Template
	notifier domain.ChangeNotifier
	metrics  Metrics
	locale   money.Locale
	logger   *log.Entry
}

func NewHandler(deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	return &Handler{
		kv:       deps.KV,
		catalog:  deps.Catalog,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		locale:   money.BRL{},
		logger:   logger,
	}
}

// Register регистрирует маршруты. Группа должна быть под sessionMiddleware.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/", h.page)
	r.GET("/carrinho", h.view)
	r.POST("/carrinho/adicionar/:trigger", h.add)
	r.POST("/carrinho/quantidade", h.quantity)
	r.POST("/carrinho/remover", h.remove)
}

type quantityRequest struct {
	ID    string `json:"id" form:"id" binding:"required"`
	Valor string `json:"valor" form:"valor"`
}

type removeRequest struct {
	ID string `json:"id" form:"id" binding:"required"`
}

// session: документ витрины и корзина одной сессии в рамках запроса.
type session struct {
	id      string
	store   *cart.Store
	page    *catalog.Page
	widget  *widget.Widget
	regions *presenter.DocumentRegions
}

func (h *Handler) open(c *gin.Context) (*session, error) {
	id := sessionID(c)
	logger := h.logger.WithField("session", id)

	opts := []cart.Option{cart.WithScope(id)}
	if h.notifier != nil {
		opts = append(opts, cart.WithNotifier(h.notifier))
	}
	if h.metrics != nil {
		opts = append(opts, cart.WithMetrics(h.metrics))
	}
	store := cart.NewStore(cart.NewStorage(storage.Scoped(h.kv, id)), logger, opts...)

	page := h.catalog.Page()
	var recorder widget.Recorder
	if h.metrics != nil {
		recorder = h.metrics
	}
	w, regions, err := widget.Assemble(page, store, recorder, logger)
	if err != nil {
		return nil, err
	}
	return &session{id: id, store: store, page: page, widget: w, regions: regions}, nil
}

// mount открывает сессию и выполняет первоначальную перерисовку,
// после которой в таблице есть строки с полями и кнопками.
func (h *Handler) mount(c *gin.Context) (*session, bool) {
	s, err := h.open(c)
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	if err := s.widget.Mount(c.Request.Context()); err != nil {
		h.fail(c, err)
		return nil, false
	}
	return s, true
}

func (h *Handler) page(c *gin.Context) {
	s, ok := h.mount(c)
	if !ok {
		return
	}
	h.renderPage(c, s)
}

func (h *Handler) view(c *gin.Context) {
	s, ok := h.mount(c)
	if !ok {
		return
	}
	h.respond(c, s)
}

func (h *Handler) add(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("trigger"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "trigger must be an integer index"})
		return
	}

	s, ok := h.mount(c)
	if !ok {
		return
	}
	trigger, err := s.page.Trigger(index)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := s.widget.OnAddClick(c.Request.Context(), trigger); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s)
}

func (h *Handler) quantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.mount(c)
	if !ok {
		return
	}
	target := s.regions.QuantityEditor(req.ID)
	if target == nil {
		h.fail(c, domain.ErrRowNotFound)
		return
	}
	if err := s.widget.OnTableInput(c.Request.Context(), target, req.Valor); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s)
}

func (h *Handler) remove(c *gin.Context) {
	var req removeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := h.mount(c)
	if !ok {
		return
	}
	target := s.regions.RemoveControl(req.ID)
	if target == nil {
		h.fail(c, domain.ErrRowNotFound)
		return
	}
	if err := s.widget.OnTableClick(c.Request.Context(), target); err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, s)
}

// respond отдаёт страницу браузеру (Accept: text/html) или снимок корзины в JSON.
func (h *Handler) respond(c *gin.Context, s *session) {
	if c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML {
		h.renderPage(c, s)
		return
	}

	snapshot := &presenter.Snapshot{}
	if err := presenter.New(s.store, snapshot, h.locale).Refresh(c.Request.Context()); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *Handler) renderPage(c *gin.Context, s *session) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Render(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrTriggerNotFound), errors.Is(err, domain.ErrRowNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
