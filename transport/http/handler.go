package http

import (
	"net/url"
	"strings"

	"github.com/aisgo/ais-validate/logger"
	"github.com/aisgo/ais-validate/response"
	"github.com/aisgo/ais-validate/ruleset"
	"github.com/aisgo/ais-validate/validator"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

/* ========================================================================
 * Validation Handler - 表单验证 API
 * ========================================================================
 * POST /v1/forms/:form/validate
 *   JSON:  {"values": {...}, "checked": {...}, "kinds": {...}, "ids": {...}, "fields": [...]}
 *   Form:  application/x-www-form-urlencoded，checkbox/radio 名称通过 ?checkable=a,b 声明
 *   响应:  {"code":200,"msg":"ok","data":{"form":..,"valid":..,"pass_id":..,"errors":[..]}}
 * GET /v1/forms
 *   已加载的表单及字段
 * ======================================================================== */

const (
	apiPrefix      = "/v1"
	queryCheckable = "checkable"
)

// ValidateRequest 验证请求
type ValidateRequest struct {
	Values  map[string]string              `json:"values"`
	Checked map[string]bool                `json:"checked"`
	// Kinds 可选，未声明时为 text（只出现在 Checked 中的名称为 checkbox）
	Kinds map[string]validator.InputKind `json:"kinds"`
	IDs     map[string]string              `json:"ids"`
	// Fields 只验证指定字段，为空时验证全部
	Fields []string `json:"fields"`
}

// Source 将请求转换为值来源
// values / checked 中出现的名称，以及声明为 checkbox / radio 的名称，都可被定位；
// kinds 可省略，只出现在 checked 中的名称视为 checkbox
func (r *ValidateRequest) Source() validator.Elements {
	elements := make(validator.Elements, len(r.Values))
	get := func(name string) *validator.Element {
		el, ok := elements[name]
		if !ok {
			el = &validator.Element{ID: r.IDs[name], Kind: validator.KindText}
			if kind, declared := r.Kinds[name]; declared && kind != "" {
				el.Kind = kind
			}
			elements[name] = el
		}
		return el
	}

	for name, value := range r.Values {
		get(name).Value = value
	}
	for name, checked := range r.Checked {
		el := get(name)
		el.Checked = checked
		// 只出现在 checked 中且未声明类型的名称按 checkbox 处理
		if _, hasValue := r.Values[name]; !hasValue && r.Kinds[name] == "" {
			el.Kind = validator.KindCheckbox
		}
	}
	for name, kind := range r.Kinds {
		if kind == validator.KindCheckbox || kind == validator.KindRadio {
			get(name)
		}
	}
	return elements
}

// FormInfo 表单描述
type FormInfo struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// ValidationHandler 表单验证处理器
type ValidationHandler struct {
	catalog *ruleset.Catalog
	log     *logger.Logger
}

// NewValidationHandler 创建处理器
func NewValidationHandler(catalog *ruleset.Catalog, log *logger.Logger) *ValidationHandler {
	if log == nil {
		log = logger.NewNop()
	}
	return &ValidationHandler{catalog: catalog, log: log.Named("validation")}
}

// Register 注册路由，limiter 为 nil 时不限流
func (h *ValidationHandler) Register(app *fiber.App, limiter fiber.Handler) {
	group := app.Group(apiPrefix)
	if limiter != nil {
		group.Use(limiter)
	}
	group.Get("/forms", h.ListForms)
	group.Post("/forms/:form/validate", h.Validate)
}

// ListForms 列出已加载的表单
func (h *ValidationHandler) ListForms(c fiber.Ctx) error {
	names := h.catalog.Names()
	forms := make([]FormInfo, 0, len(names))
	for _, name := range names {
		form, _ := h.catalog.Form(name)
		forms = append(forms, FormInfo{Name: name, Fields: form.FieldNames()})
	}
	return response.OkWithData(c, forms)
}

// Validate 验证一次表单提交
func (h *ValidationHandler) Validate(c fiber.Ctx) error {
	form := c.Params("form")

	src, fields, err := h.bind(c)
	if err != nil {
		return response.BadRequest(c, "invalid request body: "+err.Error())
	}

	var passID string
	engine, err := h.catalog.Engine(form, src, func(_ validator.Errors, ctx *validator.Context) {
		passID = ctx.PassID
	})
	if err != nil {
		return response.Error(c, err)
	}

	engine.ValidateFields(fields...)
	errs := engine.Errors()

	h.log.Debug("Form validated",
		zap.String("form", engine.Form()),
		zap.String("pass_id", passID),
		zap.Int("errors", len(errs)),
	)
	return response.Validation(c, engine.Form(), passID, errs)
}

// bind 按 Content-Type 解析请求
func (h *ValidationHandler) bind(c fiber.Ctx) (validator.Source, []string, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationForm) {
		values, err := url.ParseQuery(string(c.Body()))
		if err != nil {
			return nil, nil, err
		}
		kinds := make(map[string]validator.InputKind)
		for _, name := range strings.Split(c.Query(queryCheckable), ",") {
			if name = strings.TrimSpace(name); name != "" {
				kinds[name] = validator.KindCheckbox
			}
		}
		return validator.Values{Form: values, Kinds: kinds}, nil, nil
	}

	var req ValidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, nil, err
	}
	return req.Source(), req.Fields, nil
}
