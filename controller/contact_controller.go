package controller

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"prcontacts-backend/models"
	"prcontacts-backend/services"
	"prcontacts-backend/utils/logger"

	"github.com/gin-gonic/gin"
)

const defaultPageSize = 10

type ContactController struct {
	service services.ContactServiceInterface
	config  *models.Config
	logger  logger.Logger
}

func NewContactController(service services.ContactServiceInterface, cfg *models.Config, log logger.Logger) *ContactController {
	return &ContactController{
		service: service,
		config:  cfg,
		logger:  log,
	}
}

// ListContacts handles GET /contacts
// @Summary List contacts
// @Description One page of contacts matching the search, tag and organization filters
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param search query string false "Whitespace separated search terms"
// @Param tags query string false "Comma-joined tags, any may match"
// @Param organization query string false "Exact organization"
// @Param sort query string false "Sort field, prefix with - for descending" default(-createdAt)
// @Success 200 {object} models.APIResponse{data=models.ContactPage}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Router /contacts [get]
func (h *ContactController) ListContacts(c *gin.Context) {
	params, err := h.listParams(c)
	if err != nil {
		respondError(c, h.logger, "Invalid query parameters", err)
		return
	}

	page, err := h.service.ListContacts(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, "Failed to list contacts", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Contacts retrieved successfully",
		Data:    page,
	})
}

func (h *ContactController) listParams(c *gin.Context) (models.ListParams, error) {
	limit := h.config.DefaultPageSize
	if limit <= 0 {
		limit = defaultPageSize
	}
	params := models.ListParams{
		Page:         1,
		Limit:        limit,
		Search:       c.Query("search"),
		Tags:         services.SplitTags(c.Query("tags")),
		Organization: c.Query("organization"),
		Sort:         c.Query("sort"),
	}

	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return params, models.NewValidationError("page", "page must be an integer")
		}
		params.Page = p
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		l, err := strconv.Atoi(raw)
		if err != nil {
			return params, models.NewValidationError("limit", "limit must be an integer")
		}
		params.Limit = l
	}
	return params, nil
}

// GetContact handles GET /contacts/:id
// @Summary Get a contact
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} models.APIResponse{data=models.Contact}
// @Failure 404 {object} models.APIResponse
// @Router /contacts/{id} [get]
func (h *ContactController) GetContact(c *gin.Context) {
	contact, err := h.service.GetContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to get contact", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Contact retrieved successfully",
		Data:    contact,
	})
}

// CreateContact handles POST /contacts
// @Summary Create a contact
// @Tags Contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.ContactInput true "Contact"
// @Success 201 {object} models.APIResponse{data=models.Contact}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Router /contacts [post]
func (h *ContactController) CreateContact(c *gin.Context) {
	var req models.ContactInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "Invalid request", models.NewValidationError("", err.Error()))
		return
	}

	contact, err := h.service.CreateContact(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to create contact", err)
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Status:  "success",
		Code:    http.StatusCreated,
		Message: "Contact created successfully",
		Data:    contact,
	})
}

// UpdateContact handles PATCH /contacts/:id
// @Summary Update a contact
// @Description Fields absent from the body are left unchanged
// @Tags Contacts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Contact ID"
// @Param request body models.ContactPatch true "Fields to change"
// @Success 200 {object} models.APIResponse{data=models.Contact}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /contacts/{id} [patch]
func (h *ContactController) UpdateContact(c *gin.Context) {
	var req models.ContactPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, "Invalid request", models.NewValidationError("", err.Error()))
		return
	}

	contact, err := h.service.UpdateContact(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, h.logger, "Failed to update contact", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Contact updated successfully",
		Data:    contact,
	})
}

// DeleteContact handles DELETE /contacts/:id
// @Summary Delete a contact
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} models.APIResponse{data=models.Contact}
// @Failure 404 {object} models.APIResponse
// @Router /contacts/{id} [delete]
func (h *ContactController) DeleteContact(c *gin.Context) {
	contact, err := h.service.DeleteContact(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "Failed to delete contact", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Contact deleted successfully",
		Data:    contact,
	})
}

// GetTags handles GET /contacts/tags
// @Summary Distinct tags
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string}
// @Router /contacts/tags [get]
func (h *ContactController) GetTags(c *gin.Context) {
	tags, err := h.service.GetTags(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get tags", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Tags retrieved successfully",
		Data:    tags,
	})
}

// GetOrganizations handles GET /contacts/organizations
// @Summary Distinct organizations
// @Tags Contacts
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string}
// @Router /contacts/organizations [get]
func (h *ContactController) GetOrganizations(c *gin.Context) {
	orgs, err := h.service.GetOrganizations(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to get organizations", err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Organizations retrieved successfully",
		Data:    orgs,
	})
}

// ExportContacts handles GET /contacts/export
// @Summary Export every contact
// @Tags Contacts
// @Security BearerAuth
// @Produce json,text/vcard
// @Param format query string false "json or vcard" Enums(json, vcard)
// @Success 200 {object} models.APIResponse{data=[]models.Contact}
// @Failure 400 {object} models.APIResponse
// @Router /contacts/export [get]
func (h *ContactController) ExportContacts(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "vcard" {
		respondError(c, h.logger, "Invalid export format",
			models.NewValidationError("format", "format must be json or vcard"))
		return
	}

	contacts, err := h.service.ExportContacts(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "Failed to export contacts", err)
		return
	}

	if format == "vcard" {
		var buf bytes.Buffer
		if err := services.WriteVCards(&buf, contacts); err != nil {
			respondError(c, h.logger, "Failed to export contacts", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="contacts.vcf"`)
		c.Data(http.StatusOK, "text/vcard; charset=utf-8", buf.Bytes())
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: "Contacts exported successfully",
		Data:    contacts,
	})
}
