package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kailas-cloud/nobelidx/internal/domain/document"
	laureateuc "github.com/kailas-cloud/nobelidx/internal/usecase/laureate"
)

type getPrizesByCategoryRequest struct {
	Category string `json:"category"`
}

type getPrizesByCategoryResponse struct {
	Prizes []prizeDTO `json:"prizes"`
}

type countByCategoryAndYearRangeRequest struct {
	Category  string `json:"category"`
	StartYear int    `json:"startYear"`
	EndYear   int    `json:"endYear"`
}

type countByMotivationKeywordRequest struct {
	Keyword string `json:"keyword"`
}

type countResponse struct {
	TotalLaureates int           `json:"totalLaureates"`
	Laureates      []laureateDTO `json:"laureates"`
}

type detailsByNameRequest struct {
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
}

type detailsByNameResponse struct {
	Laureates []detailDTO `json:"laureates"`
}

type searchByNameRequest struct {
	Name     string `json:"name"`
	K        int    `json:"k"`
	Category string `json:"category,omitempty"`
}

type searchByNameResponse struct {
	Laureates []scoredLaureateDTO `json:"laureates"`
}

type prizeDTO struct {
	Year      int                 `json:"year"`
	Category  string              `json:"category"`
	Laureates []nestedLaureateDTO `json:"laureates"`
}

type nestedLaureateDTO struct {
	ID         string `json:"id"`
	Firstname  string `json:"firstname,omitempty"`
	Surname    string `json:"surname,omitempty"`
	Motivation string `json:"motivation"`
	Share      string `json:"share"`
}

type laureateDTO struct {
	Year     int    `json:"year"`
	Category string `json:"category"`
	nestedLaureateDTO
}

type scoredLaureateDTO struct {
	laureateDTO
	Score float64 `json:"score"`
}

type detailDTO struct {
	Year       int    `json:"year"`
	Category   string `json:"category"`
	Motivation string `json:"motivation"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// GetPrizesByCategory handles POST /rpc/GetPrizesByCategory.
func (s *Server) GetPrizesByCategory(w http.ResponseWriter, r *http.Request) {
	var req getPrizesByCategoryRequest
	if !s.decode(w, r, &req) {
		return
	}

	prizes, err := s.queries.PrizesByCategory(r.Context(), req.Category)
	if err != nil {
		s.handleDomainError(w, r, MethodGetPrizesByCategory, err)
		return
	}

	out := make([]prizeDTO, len(prizes))
	for i, p := range prizes {
		out[i] = prizeToDTO(p)
	}
	writeJSON(w, http.StatusOK, getPrizesByCategoryResponse{Prizes: out})
}

// CountLaureatesByCategoryAndYearRange handles POST /rpc/CountLaureatesByCategoryAndYearRange.
func (s *Server) CountLaureatesByCategoryAndYearRange(w http.ResponseWriter, r *http.Request) {
	var req countByCategoryAndYearRangeRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.queries.CountByCategoryAndYearRange(r.Context(), req.Category, req.StartYear, req.EndYear)
	if err != nil {
		s.handleDomainError(w, r, MethodCountLaureatesByCategoryAndYearRange, err)
		return
	}
	writeJSON(w, http.StatusOK, countToDTO(c))
}

// CountLaureatesByMotivationKeyword handles POST /rpc/CountLaureatesByMotivationKeyword.
func (s *Server) CountLaureatesByMotivationKeyword(w http.ResponseWriter, r *http.Request) {
	var req countByMotivationKeywordRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := s.queries.CountByMotivationKeyword(r.Context(), req.Keyword)
	if err != nil {
		s.handleDomainError(w, r, MethodCountLaureatesByMotivationKeyword, err)
		return
	}
	writeJSON(w, http.StatusOK, countToDTO(c))
}

// GetLaureateDetailsByName handles POST /rpc/GetLaureateDetailsByName.
func (s *Server) GetLaureateDetailsByName(w http.ResponseWriter, r *http.Request) {
	var req detailsByNameRequest
	if !s.decode(w, r, &req) {
		return
	}

	details, err := s.queries.DetailsByName(r.Context(), req.Firstname, req.Surname)
	if err != nil {
		s.handleDomainError(w, r, MethodGetLaureateDetailsByName, err)
		return
	}

	out := make([]detailDTO, len(details))
	for i, d := range details {
		out[i] = detailDTO{Year: d.Year, Category: d.Category, Motivation: d.Motivation}
	}
	writeJSON(w, http.StatusOK, detailsByNameResponse{Laureates: out})
}

// SearchLaureatesByName handles POST /rpc/SearchLaureatesByName.
func (s *Server) SearchLaureatesByName(w http.ResponseWriter, r *http.Request) {
	var req searchByNameRequest
	if !s.decode(w, r, &req) {
		return
	}

	matches, err := s.queries.SearchByName(r.Context(), req.Name, req.K, req.Category)
	if err != nil {
		s.handleDomainError(w, r, MethodSearchLaureatesByName, err)
		return
	}

	out := make([]scoredLaureateDTO, len(matches))
	for i, m := range matches {
		out[i] = scoredLaureateDTO{laureateDTO: flattenedToDTO(m.Flattened), Score: m.Score}
	}
	writeJSON(w, http.StatusOK, searchByNameResponse{Laureates: out})
}

// decode reads the JSON request body. An empty body decodes as the zero request.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, codeInvalidArgument, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func prizeToDTO(p document.Prize) prizeDTO {
	ls := make([]nestedLaureateDTO, len(p.Laureates))
	for i, l := range p.Laureates {
		ls[i] = nestedLaureateDTO{
			ID: l.ID, Firstname: l.Firstname, Surname: l.Surname,
			Motivation: l.Motivation, Share: l.Share,
		}
	}
	return prizeDTO{Year: p.Year, Category: p.Category, Laureates: ls}
}

func flattenedToDTO(f document.Flattened) laureateDTO {
	return laureateDTO{
		Year:     f.Year,
		Category: f.Category,
		nestedLaureateDTO: nestedLaureateDTO{
			ID: f.ID, Firstname: f.Firstname, Surname: f.Surname,
			Motivation: f.Motivation, Share: f.Share,
		},
	}
}

func countToDTO(c laureateuc.Count) countResponse {
	out := make([]laureateDTO, len(c.Laureates))
	for i, f := range c.Laureates {
		out[i] = flattenedToDTO(f)
	}
	return countResponse{TotalLaureates: c.Total, Laureates: out}
}
