package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"rpi-index-lab/internal/domain"
	"rpi-index-lab/internal/explorer"
	"rpi-index-lab/internal/lookup"
	"rpi-index-lab/internal/series"
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationDetails flattens validator errors into field -> rule.
func validationDetails(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// BaseRequest is the body of PUT /api/base.
type BaseRequest struct {
	Year    int `json:"year" validate:"required,gt=0"`
	Quarter int `json:"quarter" validate:"required,min=1,max=4"`
}

// Bind implements render.Binder.
func (b *BaseRequest) Bind(*http.Request) error { return nil }

// BaseResponse describes the active base period.
type BaseResponse struct {
	Year    int    `json:"year"`
	Quarter int    `json:"quarter"`
	Label   string `json:"label"`
	Rebased bool   `json:"rebased"`
}

func (s *Server) baseResponse() BaseResponse {
	b := s.explorer.BasePeriod()
	return BaseResponse{Year: b.Year, Quarter: b.Quarter, Label: b.Label(), Rebased: s.explorer.Rebased()}
}

// handleGetBase handles GET /api/base
func (s *Server) handleGetBase(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.baseResponse())
}

// handlePutBase handles PUT /api/base
func (s *Server) handlePutBase(w http.ResponseWriter, r *http.Request) {
	var req BaseRequest
	if err := render.Bind(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_JSON", "request body must be a JSON object", nil)
		return
	}
	if err := s.validator.Struct(req); err != nil {
		writeError(w, r, http.StatusBadRequest, "VALIDATION_FAILED", "invalid base period", validationDetails(err))
		return
	}

	p := domain.Period{Year: req.Year, Quarter: req.Quarter}
	if err := s.explorer.SetBase(r.Context(), p); err != nil {
		status, code := rebaseStatus(err)
		var details map[string]string
		if nearest, ok := s.explorer.NearestBase(p); ok && status == http.StatusNotFound {
			details = map[string]string{"nearest": nearest.Label()}
		}
		writeError(w, r, status, code, err.Error(), details)
		return
	}

	render.JSON(w, r, s.baseResponse())
}

// ChartResponse is the body of GET /api/chart.
type ChartResponse struct {
	Chart   series.ChartData `json:"chart"`
	Summary string           `json:"summary"`
	Base    string           `json:"base"`
	Rebased bool             `json:"rebased"`
}

// handleChart handles GET /api/chart
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	defStart, defEnd := s.explorer.DefaultRange()

	q := r.URL.Query()
	start, err := periodParam(q.Get("start_year"), q.Get("start_quarter"), defStart)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PERIOD", err.Error(), nil)
		return
	}
	end, err := periodParam(q.Get("end_year"), q.Get("end_quarter"), defEnd)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_PERIOD", err.Error(), nil)
		return
	}

	res := s.explorer.Plot(start, end)
	render.JSON(w, r, ChartResponse{
		Chart:   res.Chart,
		Summary: res.Summary,
		Base:    res.Base.Label(),
		Rebased: res.Rebased,
	})
}

// periodParam parses a year/quarter pair, falling back to def for omitted parts.
func periodParam(year, quarter string, def domain.Period) (domain.Period, error) {
	p := def
	if year != "" {
		y, err := strconv.Atoi(strings.TrimSpace(year))
		if err != nil {
			return p, fmt.Errorf("invalid year %q", year)
		}
		p.Year = y
	}
	if quarter != "" {
		q, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(quarter)), "Q"))
		if err != nil || q < 1 || q > 4 {
			return p, fmt.Errorf("invalid quarter %q", quarter)
		}
		p.Quarter = q
	}
	return p, nil
}

// PriceResponse is the body of GET /api/price.
type PriceResponse struct {
	Text  string `json:"text"`
	Hint  string `json:"hint,omitempty"`
	Found bool   `json:"found"`
}

// handlePrice handles GET /api/price
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := lookup.Selection{
		Town:     q.Get("town"),
		FlatType: q.Get("flat_type"),
	}
	// Unparseable numbers leave the field unset, which reads as an incomplete selection.
	sel.Year, _ = strconv.Atoi(q.Get("year"))
	sel.Quarter, _ = strconv.Atoi(strings.TrimPrefix(strings.ToUpper(q.Get("quarter")), "Q"))

	res := s.explorer.Price(sel)
	render.JSON(w, r, PriceResponse{Text: res.Text, Hint: res.Hint, Found: res.Found})
}

// handleSelectors handles GET /api/selectors
func (s *Server) handleSelectors(w http.ResponseWriter, r *http.Request) {
	var resp struct {
		explorer.Selectors
		DefaultStart string `json:"default_start"`
		DefaultEnd   string `json:"default_end"`
	}
	resp.Selectors = s.explorer.Selectors()
	start, end := s.explorer.DefaultRange()
	resp.DefaultStart, resp.DefaultEnd = start.Label(), end.Label()
	render.JSON(w, r, resp)
}
