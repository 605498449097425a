// Package api exposes the search pipeline over HTTP for an external front end.
package api

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"go-easyhunt/internal/models"
	"go-easyhunt/internal/pipeline"
	"go-easyhunt/internal/report"

	"github.com/gin-gonic/gin"
)

// Searcher runs one query. *pipeline.Searcher satisfies it.
type Searcher interface {
	Search(ctx context.Context, q models.Query) (*pipeline.Result, error)
}

type Server struct {
	searcher Searcher
	topN     int
	// one browser session at a time
	mu sync.Mutex
}

func NewServer(searcher Searcher, topN int) *Server {
	if topN <= 0 {
		topN = report.DefaultTopCompanies
	}
	return &Server{searcher: searcher, topN: topN}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/", s.health)
	api := r.Group("/api")
	api.GET("/levels", s.levels)
	api.POST("/search", s.search)
	api.POST("/search/export", s.export)
	return r
}

type searchRequest struct {
	Role string `json:"role"`
	// Locations may be given as a list, a comma separated string, or both.
	Locations    []string `json:"locations"`
	Location     string   `json:"location"`
	Levels       []string `json:"levels"`
	PostedWithin string   `json:"posted_within"`
}

func (req searchRequest) query() (models.Query, error) {
	q := models.Query{
		Role:      req.Role,
		Locations: append(append([]string(nil), req.Locations...), models.ParseLocations(req.Location)...),
	}
	for _, l := range req.Levels {
		q.Levels = append(q.Levels, models.ExperienceLevel(l))
	}
	if s := strings.TrimSpace(req.PostedWithin); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return q, fmt.Errorf("invalid posted_within %q: %w", s, err)
		}
		q.PostedWithin = d
	}
	return q, nil
}

type searchResponse struct {
	RunID        string              `json:"run_id"`
	Status       string              `json:"status"`
	Query        models.Query        `json:"query"`
	Postings     []models.JobPosting `json:"postings"`
	TotalFetched int                 `json:"total_fetched"`
	Warnings     []pipeline.Warning  `json:"warnings"`
	TopCompanies []report.Count      `json:"top_companies"`
	Locations    []report.Count      `json:"locations"`
	DurationMs   int64               `json:"duration_ms"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "easyhunt job search API is running!",
		"status":  "healthy",
	})
}

func (s *Server) levels(c *gin.Context) {
	out := make([]gin.H, 0, len(models.Levels))
	for _, lvl := range models.Levels {
		out = append(out, gin.H{"name": lvl, "slug": lvl.Slug(), "code": lvl.Code()})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) search(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	status := "ok"
	if res.Empty() {
		status = "no_results"
	}
	c.JSON(http.StatusOK, searchResponse{
		RunID:        res.RunID,
		Status:       status,
		Query:        res.Query,
		Postings:     nonNil(res.Postings),
		TotalFetched: res.TotalFetched,
		Warnings:     nonNil(res.Warnings),
		TopCompanies: nonNil(report.TopCompanies(res.Postings, s.topN)),
		Locations:    nonNil(report.CountByLocation(res.Postings)),
		DurationMs:   res.Duration.Milliseconds(),
	})
}

func (s *Server) export(c *gin.Context) {
	res, ok := s.run(c)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := report.WriteCSV(&buf, res.Postings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, report.ExportFileName(res.Query.Role)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// run binds the request and executes it. It writes the error response itself
// and reports whether the caller should continue.
func (s *Server) run(c *gin.Context) (*pipeline.Result, bool) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return nil, false
	}
	q, err := req.query()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if _, err := q.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.searcher.Search(c.Request.Context(), q)
	if err != nil {
		log.Printf("❌ Search failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return res, true
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
