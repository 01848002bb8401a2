package web

import (
	"database/sql"
	stderrors "errors"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/Lewis310/lewishealthapplication/internal/advice"
	"github.com/Lewis310/lewishealthapplication/internal/config"
	"github.com/Lewis310/lewishealthapplication/internal/errors"
	"github.com/Lewis310/lewishealthapplication/internal/logger"
	"github.com/Lewis310/lewishealthapplication/internal/observability"
	"github.com/Lewis310/lewishealthapplication/internal/ops"
	"github.com/Lewis310/lewishealthapplication/internal/report"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	log      *logger.Logger
	renderer *Renderer
}

// CreateResponse is the JSON body returned by POST /reports.
type CreateResponse struct {
	ID      string      `json:"id"`
	URL     string      `json:"url"`
	Evicted int         `json:"evicted"`
	Report  report.View `json:"report"`
}

// HandleIndex handles GET /: the upload form and recent reports.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "index", IndexPageData{
		PageData: PageData{
			Title:   "Health Report",
			Version: h.renderer.version,
			Nav:     "new",
		},
		Params:     advice.Params{WeightKg: h.cfg.WeightKg, ProteinPerKg: h.cfg.ProteinPerKg},
		Duplicates: h.cfg.DuplicateDates,
		MaxUpload:  h.cfg.MaxUploadBytes,
		Items:      result.Items,
		Pagination: result.Pagination,
	})
}

// HandleList handles GET /reports: JSON listing, or the index page for browsers.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	if !wantsJSON(r) {
		h.HandleIndex(w, r)
		return
	}

	result, err := ops.List(h.db, ops.ListInput{
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	renderJSON(w, http.StatusOK, result)
}

// HandleCreate handles POST /reports: upload CSVs and generate a report.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			h.renderer.renderError(w, r, errors.NewUploadTooLarge(h.cfg.MaxUploadBytes))
			return
		}
		h.renderer.renderError(w, r, errors.NewInvalidRequest("expected a multipart/form-data upload"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	activity, activityHeader, err := r.FormFile("activity")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("activity CSV is required"))
		return
	}
	defer activity.Close()

	input := ops.GenerateInput{
		Activity:     activity,
		ActivityName: activityHeader.Filename,
		Surface:      observability.SurfaceWeb,
	}

	nutrition, nutritionHeader, err := optionalFile(r, "nutrition")
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	if nutrition != nil {
		defer nutrition.Close()
		input.Nutrition = nutrition
		input.NutritionName = nutritionHeader.Filename
	}

	if input.Overrides, err = formOverrides(r); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	out, err := ops.Generate(r.Context(), h.db, h.cfg, input)
	if err != nil {
		h.log.Warn("report failed",
			"code", string(errors.As(err).Code),
			"source", input.ActivityName,
			"request_id", RequestID(r.Context()),
		)
		h.renderer.renderError(w, r, err)
		return
	}
	h.log.Info("report generated",
		"id", out.ID,
		"rows", out.Report.Table.Len(),
		"evicted", out.Evicted,
		"source", out.Report.Source,
		"request_id", RequestID(r.Context()),
	)

	location := "/reports/" + out.ID

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if wantsJSON(r) {
		w.Header().Set("Location", location)
		renderJSON(w, http.StatusCreated, CreateResponse{
			ID:      out.ID,
			URL:     location,
			Evicted: out.Evicted,
			Report:  out.Report.View(),
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// HandleDetail handles GET /reports/{id}: view a stored report.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("report ID is required"))
		return
	}

	out, err := ops.Fetch(h.db, ops.FetchInput{ID: id, IncludeCSV: wantsJSON(r)})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, out)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: PageData{
			Title:   out.SourceName,
			Version: h.renderer.version,
			Nav:     "reports",
		},
		Report:       out,
		RenderedHTML: h.renderer.renderMarkdown(out.Markdown),
	})
}

// HandleDownload returns a handler serving one stored file of a report.
func (h *Handlers) HandleDownload(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := ops.FetchDownload(h.db, r.PathValue("id"), kind)
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", d.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(d.Body)))
		if kind != ops.KindChart || r.URL.Query().Has("download") {
			w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(d.Body)
	}
}

// HandlePurge handles POST /reports/purge: delete stored reports.
func (h *Handlers) HandlePurge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	input := ops.PurgeInput{}
	if keep := r.FormValue("keep"); keep != "" {
		k, err := strconv.Atoi(keep)
		if err != nil {
			h.renderer.renderError(w, r, errors.NewInvalidRequest("keep must be an integer"))
			return
		}
		input.Keep = &k
	}

	result, err := ops.Purge(r.Context(), h.db, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: return HTML fragment
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`<div class="purge-result">` + template.HTMLEscapeString(result.Message) + `</div>`))
		return
	}

	// JSON request
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// optionalFile returns the named upload, or nil when the field is absent or
// an empty file was submitted.
func optionalFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	f, fh, err := r.FormFile(field)
	if stderrors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.NewInvalidRequest(fmt.Sprintf("invalid %s upload", field))
	}
	if fh.Size == 0 && fh.Filename == "" {
		f.Close()
		return nil, nil, nil
	}
	return f, fh, nil
}

// formOverrides reads the optional per-run settings from the form.
func formOverrides(r *http.Request) (ops.Overrides, error) {
	var o ops.Overrides
	var err error
	if o.WeightKg, err = parseFloatField(r, "weight_kg"); err != nil {
		return o, err
	}
	if o.ProteinPerKg, err = parseFloatField(r, "protein_per_kg"); err != nil {
		return o, err
	}
	if s := strings.TrimSpace(r.FormValue("duplicate_dates")); s != "" {
		o.DuplicateDates = &s
	}
	return o, nil
}

// parseFloatField parses an optional numeric form field.
func parseFloatField(r *http.Request, name string) (*float64, error) {
	s := strings.TrimSpace(r.FormValue(name))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("%s must be a number", name))
	}
	return &v, nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
