// Package spellserver serves word lookups and spelling suggestions over HTTP.
package spellserver

import (
	"compress/gzip"
	"net/http"
	"sync"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"

	"github.com/acronis/perfkit-sets/logger"
	"github.com/acronis/perfkit-sets/set"
	"github.com/acronis/perfkit-sets/spell"
)

const apiPrefix = "/api/v1"

var quickJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// WordResponse answers a membership query
type WordResponse struct {
	Word   string `json:"word"`
	Exists bool   `json:"exists"`
}

// SuggestionsResponse answers a suggestion query
type SuggestionsResponse struct {
	Word        string   `json:"word"`
	Exists      bool     `json:"exists"`
	Suggestions []string `json:"suggestions"`
}

// AddResponse answers an insertion
type AddResponse struct {
	Word string `json:"word"`
	Size int    `json:"size"`
}

// StatsResponse describes the served vocabulary
type StatsResponse struct {
	Size int `json:"size"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server guards one vocabulary Set, lookups share a read lock and insertions take the write lock
type Server struct {
	mu      sync.RWMutex
	words   set.Set[string]
	checker *spell.WordChecker
	logger  logger.Logger
	engine  *gin.Engine
}

// New creates a Server for words, opts configure the suggestion engine
func New(words set.Set[string], lg logger.Logger, opts ...spell.Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		words:   words,
		checker: spell.NewWordChecker(words, opts...),
		logger:  lg,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog)
	r.Use(ginGzip.Gzip(gzip.DefaultCompression))

	api := r.Group(apiPrefix)
	api.GET("/words/:word", s.getWord)
	api.POST("/words/:word", s.addWord)
	api.GET("/suggestions/:word", s.getSuggestions)
	api.GET("/stats", s.getStats)

	s.engine = r

	return s
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until the listener fails
func (s *Server) Run(addr string) error {
	s.logger.Info("spell server listening on %s", addr)

	return s.engine.Run(addr) //nolint:wrapcheck
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("%s %s -> %d in %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
}

func (s *Server) reply(c *gin.Context, status int, v interface{}) {
	body, err := quickJSON.Marshal(v)
	if err != nil {
		s.logger.Error("cannot encode response: %v", err)
		c.String(http.StatusInternalServerError, err.Error())

		return
	}

	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) getWord(c *gin.Context) {
	word := c.Param("word")

	s.mu.RLock()
	exists := s.checker.WordExists(word)
	s.mu.RUnlock()

	s.reply(c, http.StatusOK, WordResponse{Word: word, Exists: exists})
}

func (s *Server) getSuggestions(c *gin.Context) {
	word := c.Param("word")

	s.mu.RLock()
	exists := s.checker.WordExists(word)
	suggestions := s.checker.FindSuggestions(word)
	s.mu.RUnlock()

	if suggestions == nil {
		suggestions = []string{}
	}

	s.reply(c, http.StatusOK, SuggestionsResponse{Word: word, Exists: exists, Suggestions: suggestions})
}

func (s *Server) addWord(c *gin.Context) {
	word := c.Param("word")
	if word == "" {
		s.reply(c, http.StatusBadRequest, errorResponse{Error: "empty word"})

		return
	}

	s.mu.Lock()
	s.words.Add(word)
	size := s.words.Size()
	s.mu.Unlock()

	s.logger.Trace("added word %s, vocabulary size %d", word, size)

	s.reply(c, http.StatusOK, AddResponse{Word: word, Size: size})
}

func (s *Server) getStats(c *gin.Context) {
	s.mu.RLock()
	size := s.words.Size()
	s.mu.RUnlock()

	s.reply(c, http.StatusOK, StatsResponse{Size: size})
}
