// Package source loads the English reference corpus: the regulation's
// articles and recitals in their original language, used by the translation
// validator for number lookup and mismatch detection. The corpus is loaded
// once and treated as read-only for the session.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Article is one English source article.
type Article struct {
	ArticleNumber int    `json:"article_number"`
	Title         string `json:"title"`
	Content       string `json:"content"`
}

// Recital is one English source recital.
type Recital struct {
	RecitalNumber int    `json:"recital_number"`
	Content       string `json:"content"`
}

// EnglishSource is the reference corpus for cross-referencing translations.
type EnglishSource struct {
	Articles []*Article `json:"articles"`
	Recitals []*Recital `json:"recitals"`

	articlesByNumber map[int]*Article
	recitalsByNumber map[int]*Recital
}

// Load reads an English source corpus from JSON.
func Load(r io.Reader) (*EnglishSource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading source corpus: %w", err)
	}

	var src EnglishSource
	if err := json.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("parsing source corpus: %w", err)
	}

	src.buildIndexes()
	return &src, nil
}

// LoadFile reads an English source corpus from a JSON file.
func LoadFile(path string) (*EnglishSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening source corpus: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// New builds a corpus from already-loaded records. Used by tests and by
// callers that fetch the corpus from a store rather than a file.
func New(articles []*Article, recitals []*Recital) *EnglishSource {
	src := &EnglishSource{Articles: articles, Recitals: recitals}
	src.buildIndexes()
	return src
}

func (s *EnglishSource) buildIndexes() {
	s.articlesByNumber = make(map[int]*Article, len(s.Articles))
	for _, a := range s.Articles {
		s.articlesByNumber[a.ArticleNumber] = a
	}
	s.recitalsByNumber = make(map[int]*Recital, len(s.Recitals))
	for _, r := range s.Recitals {
		s.recitalsByNumber[r.RecitalNumber] = r
	}
}

// HasArticle reports whether the corpus contains an article with the number.
func (s *EnglishSource) HasArticle(number int) bool {
	_, ok := s.articlesByNumber[number]
	return ok
}

// HasRecital reports whether the corpus contains a recital with the number.
func (s *EnglishSource) HasRecital(number int) bool {
	_, ok := s.recitalsByNumber[number]
	return ok
}

// GetArticle returns the article with the given number, or nil.
func (s *EnglishSource) GetArticle(number int) *Article {
	return s.articlesByNumber[number]
}

// GetRecital returns the recital with the given number, or nil.
func (s *EnglishSource) GetRecital(number int) *Recital {
	return s.recitalsByNumber[number]
}

// ArticleCount returns the number of articles in the corpus.
func (s *EnglishSource) ArticleCount() int { return len(s.Articles) }

// RecitalCount returns the number of recitals in the corpus.
func (s *EnglishSource) RecitalCount() int { return len(s.Recitals) }
