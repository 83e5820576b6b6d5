package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ginjaninja78/ibankit/internal/metrics"
	"github.com/ginjaninja78/ibankit/internal/validation"
	"github.com/ginjaninja78/ibankit/pkg/iban"
)

// API is the HTTP API for IBAN and BIC validation.
type API struct {
	log     *slog.Logger
	metrics *metrics.Metrics
}

func NewAPI(log *slog.Logger, m *metrics.Metrics) *API {
	return &API{
		log:     log,
		metrics: m,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Route("/ibans", func(r chi.Router) {
			r.Post("/", a.buildIBAN)
			r.Get("/random", a.randomIBAN)
			r.Get("/{iban}", a.getIBAN)
		})
		r.Get("/bics/{bic}", a.getBIC)
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", a.listCountries)
			r.Get("/{code}", a.getCountry)
		})
	})
}

// =============================================================================
// RESPONSES
// =============================================================================

type ibanResponse struct {
	Valid       bool              `json:"valid"`
	IBAN        string            `json:"iban"`
	Formatted   string            `json:"formatted"`
	CountryCode string            `json:"country_code"`
	CountryName string            `json:"country_name"`
	CheckDigit  string            `json:"check_digit"`
	BBAN        string            `json:"bban"`
	Fields      map[string]string `json:"fields"`
}

type bicResponse struct {
	Valid        bool   `json:"valid"`
	BIC          string `json:"bic"`
	BankCode     string `json:"bank_code"`
	CountryCode  string `json:"country_code"`
	LocationCode string `json:"location_code"`
	BranchCode   string `json:"branch_code,omitempty"`
	TestBIC      bool   `json:"test_bic"`
}

type countryResponse struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Alpha3     string          `json:"alpha3,omitempty"`
	BBANLength int             `json:"bban_length"`
	IBANLength int             `json:"iban_length"`
	Structure  string          `json:"structure"`
	Fields     []fieldResponse `json:"fields"`
}

type fieldResponse struct {
	Type   string `json:"type"`
	Class  string `json:"class"`
	Length int    `json:"length"`
}

type errorDetail struct {
	Kind     string `json:"kind"`
	Rule     string `json:"rule"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

type errorResponse struct {
	Valid bool        `json:"valid"`
	Error errorDetail `json:"error"`
}

func newIBANResponse(v iban.IBAN) ibanResponse {
	fields := make(map[string]string)
	for t, value := range v.Fields() {
		fields[t.String()] = value
	}

	return ibanResponse{
		Valid:       true,
		IBAN:        v.String(),
		Formatted:   v.Formatted(),
		CountryCode: string(v.CountryCode()),
		CountryName: v.CountryCode().Name(),
		CheckDigit:  v.CheckDigit(),
		BBAN:        v.BBAN(),
		Fields:      fields,
	}
}

func newCountryResponse(code iban.CountryCode, s *iban.Structure) countryResponse {
	resp := countryResponse{
		Code:       string(code),
		Name:       code.Name(),
		Alpha3:     code.Alpha3(),
		BBANLength: s.Length(),
		IBANLength: s.Length() + 4,
		Structure:  s.Notation(),
	}
	for _, f := range s.Fields() {
		resp.Fields = append(resp.Fields, fieldResponse{
			Type:   f.Type.String(),
			Class:  f.Class.String(),
			Length: f.Length,
		})
	}
	return resp
}

// =============================================================================
// HANDLERS
// =============================================================================

func (a *API) getIBAN(w http.ResponseWriter, r *http.Request) {
	raw := strings.ReplaceAll(chi.URLParam(r, "iban"), " ", "")

	v, err := iban.Parse(raw)
	a.metrics.RecordValidation("iban", ruleOf(err))
	if err != nil {
		a.writeValidationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, newIBANResponse(v))
}

func (a *API) randomIBAN(w http.ResponseWriter, r *http.Request) {
	country := iban.CountryCode(strings.ToUpper(r.URL.Query().Get("country")))

	var src iban.RandomSource
	if s := r.URL.Query().Get("seed"); s != "" {
		seed, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid seed %q", s), http.StatusBadRequest)
			return
		}
		src = iban.NewSeededSource(seed)
	}

	v, err := iban.Random(src, country)
	if err != nil {
		a.writeValidationError(w, err)
		return
	}

	a.writeJSON(w, http.StatusOK, newIBANResponse(v))
}

// buildIBAN builds an IBAN from its parts.
// Request body: {"country_code": "DE", "bank_code": "37040044", "account_number": "0532013000"}
func (a *API) buildIBAN(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	b := iban.NewBuilder()
	for name, value := range body {
		if name == "country_code" {
			b.CountryCode(iban.CountryCode(strings.ToUpper(value)))
			continue
		}
		t, ok := iban.ParseFieldType(name)
		if !ok {
			http.Error(w, fmt.Sprintf("unknown field %q", name), http.StatusBadRequest)
			return
		}
		b.Set(t, value)
	}

	v, err := b.Build()
	if err != nil {
		a.writeValidationError(w, err)
		return
	}

	a.log.Debug("built iban", slog.String("country", string(v.CountryCode())))
	a.writeJSON(w, http.StatusCreated, newIBANResponse(v))
}

func (a *API) getBIC(w http.ResponseWriter, r *http.Request) {
	v, err := iban.ParseBIC(chi.URLParam(r, "bic"))
	a.metrics.RecordValidation("bic", ruleOf(err))
	if err != nil {
		a.writeValidationError(w, err)
		return
	}

	branch, _ := v.BranchCode()
	a.writeJSON(w, http.StatusOK, bicResponse{
		Valid:        true,
		BIC:          v.String(),
		BankCode:     v.BankCode(),
		CountryCode:  string(v.CountryCode()),
		LocationCode: v.LocationCode(),
		BranchCode:   branch,
		TestBIC:      v.IsTestBIC(),
	})
}

func (a *API) listCountries(w http.ResponseWriter, r *http.Request) {
	codes := iban.SupportedCountries()
	resp := make([]countryResponse, 0, len(codes))
	for _, code := range codes {
		s, _ := iban.StructureFor(code)
		resp = append(resp, newCountryResponse(code, s))
	}

	a.writeJSON(w, http.StatusOK, resp)
}

func (a *API) getCountry(w http.ResponseWriter, r *http.Request) {
	code := iban.CountryCode(strings.ToUpper(chi.URLParam(r, "code")))

	s, ok := iban.StructureFor(code)
	if !ok {
		http.Error(w, fmt.Sprintf("country %q is not supported", string(code)), http.StatusNotFound)
		return
	}

	a.writeJSON(w, http.StatusOK, newCountryResponse(code, s))
}

// =============================================================================
// HELPERS
// =============================================================================

// writeJSON sends v with the given status. The status line is already out
// when encoding fails, so the error can only be logged.
func (a *API) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Error("failed to write response", "status", status, "error", err)
	}
}

// writeValidationError reports identifier errors as 422 with their details.
func (a *API) writeValidationError(w http.ResponseWriter, err error) {
	var ierr *iban.Error
	if !errors.As(err, &ierr) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	detail := errorDetail{
		Kind:     ierr.Kind.String(),
		Rule:     validation.RuleName(ierr),
		Message:  ierr.Error(),
		Expected: ierr.Expected,
		Actual:   ierr.Actual,
	}
	if ierr.Field != 0 {
		detail.Field = ierr.Field.String()
	}

	a.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: detail})
}

func ruleOf(err error) string {
	if err == nil {
		return ""
	}
	return validation.RuleName(err)
}
