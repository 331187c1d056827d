package mentor

import (
	"bytes"
	"embed"
	"errors"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/emandor/mcq_mentor/internal/config"
	"github.com/emandor/mcq_mentor/internal/middleware"
	"github.com/emandor/mcq_mentor/internal/telemetry"
)

//go:embed templates/*.tmpl templates/mentor.css
var templatesFS embed.FS

type Handler struct {
	cfg  *config.Config
	svc  *Service
	tmpl *template.Template
	css  template.CSS
}

type NavItem struct {
	Slug, Title string
	Active      bool
}

type PageView struct {
	CSS     template.CSS
	Variant Variant
	Nav     []NavItem
	Topic   string
	Result  *Result
	Error   string
}

func NewHandler(cfg *config.Config, svc *Service) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	rawCSS, err := templatesFS.ReadFile("templates/mentor.css")
	if err != nil {
		return nil, err
	}
	return &Handler{cfg: cfg, svc: svc, tmpl: tmpl, css: template.CSS(rawCSS)}, nil
}

func (h *Handler) Index(c *fiber.Ctx) error {
	slug := h.cfg.DefaultVariant
	if _, ok := LookupVariant(slug); !ok {
		slug = Variants[0].Slug
	}
	return c.Redirect("/"+slug, fiber.StatusFound)
}

func (h *Handler) Page(c *fiber.Ctx) error {
	v, ok := LookupVariant(c.Params("variant"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}
	return h.render(c, fiber.StatusOK, h.view(v))
}

// Submit handles the topic form. An empty topic re-renders the form
// without calling the vendor.
func (h *Handler) Submit(c *fiber.Ctx) error {
	v, ok := LookupVariant(c.Params("variant"))
	if !ok {
		return c.Status(fiber.StatusNotFound).SendString("not found")
	}
	view := h.view(v)
	view.Topic = c.FormValue("topic")

	res, err := h.svc.Generate(c.UserContext(), v, view.Topic)
	switch {
	case errors.Is(err, ErrEmptyTopic):
		return h.render(c, fiber.StatusOK, view)
	case err != nil:
		code, status := ErrorCode(err)
		log := telemetry.L().With().Str("req_id", reqID(c)).Logger()
		log.Warn().Str("variant", v.Slug).Str("code", code).Msg("mcq_page_failed")
		view.Error = FailureMessage
		return h.render(c, status, view)
	}
	view.Result = &res
	return h.render(c, fiber.StatusOK, view)
}

type generateRequest struct {
	Variant string `json:"variant"`
	Topic   string `json:"topic"`
}

type generateResponse struct {
	Variant string `json:"variant"`
	Vendor  string `json:"vendor"`
	Raw     string `json:"raw"`
	Lines   any    `json:"lines,omitempty"`
	HTML    string `json:"html"`
}

func (h *Handler) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_body", "message": "invalid request body"})
	}
	v, ok := LookupVariant(req.Variant)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown_variant", "message": "unknown variant"})
	}

	res, err := h.svc.Generate(c.UserContext(), v, req.Topic)
	if err != nil {
		code, status := ErrorCode(err)
		log := telemetry.L().With().Str("req_id", reqID(c)).Logger()
		log.Warn().Str("variant", v.Slug).Str("code", code).Msg("mcq_api_failed")
		msg := FailureMessage
		if errors.Is(err, ErrEmptyTopic) {
			msg = "topic required"
		}
		return c.Status(status).JSON(fiber.Map{"error": code, "message": msg})
	}

	out := generateResponse{
		Variant: v.Slug,
		Vendor:  string(v.Vendor),
		Raw:     res.Raw,
		HTML:    string(res.HTML),
	}
	if res.Lines != nil {
		out.Lines = res.Lines
	}
	return c.JSON(out)
}

func (h *Handler) ListVariants(c *fiber.Ctx) error {
	type item struct {
		Variant
		Available bool `json:"available"`
	}
	list := make([]item, 0, len(Variants))
	for _, v := range Variants {
		list = append(list, item{Variant: v, Available: h.svc.Available(v)})
	}
	return c.JSON(list)
}

func (h *Handler) view(v Variant) PageView {
	nav := make([]NavItem, 0, len(Variants))
	for _, it := range Variants {
		if !h.svc.Available(it) {
			continue
		}
		nav = append(nav, NavItem{Slug: it.Slug, Title: it.Title, Active: it.Slug == v.Slug})
	}
	return PageView{CSS: h.css, Variant: v, Nav: nav}
}

func (h *Handler) render(c *fiber.Ctx, status int, view PageView) error {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page", view); err != nil {
		log := telemetry.L()
		log.Error().Err(err).Msg("page_render_failed")
		return c.Status(fiber.StatusInternalServerError).SendString("render fail")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

func reqID(c *fiber.Ctx) string {
	rid, _ := c.Locals(middleware.ReqIDKey).(string)
	return rid
}
