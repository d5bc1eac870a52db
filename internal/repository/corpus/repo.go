// Package corpus adapts the Redis FT index to passage search and storage.
package corpus

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lakshaychetal/astrologyfinalrk/internal/db"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain"
	"github.com/lakshaychetal/astrologyfinalrk/internal/domain/tag"
	"github.com/lakshaychetal/astrologyfinalrk/internal/knowledge"
)

// Hash field names for passage documents.
const (
	fieldContent  = "__content"
	fieldVector   = "__vector"
	fieldTitle    = "title"
	fieldOneLiner = "one_liner"
	fieldSection  = "section"
	fieldTags     = "tags"
	fieldRareRule = "rare_rule"
)

// store is the consumer interface for passage storage and search (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds HNSW build parameters for the vector index.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repository reads and writes passages in the corpus index.
type Repository struct {
	store     store
	indexName string
	keyPrefix string
	hnsw      HNSWConfig
}

// New creates a corpus repository.
func New(s store, indexName, keyPrefix string) *Repository {
	return &Repository{store: s, indexName: indexName, keyPrefix: keyPrefix}
}

// WithHNSW overrides HNSW build parameters.
func (r *Repository) WithHNSW(cfg HNSWConfig) *Repository {
	r.hnsw = cfg
	return r
}

// Search runs a KNN query and maps hits to passages.
func (r *Repository) Search(ctx context.Context, vector []float32, topK int) ([]domain.Passage, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName: r.indexName,
		Vector:    vector,
		K:         topK,
		ReturnFields: []string{
			"__vector_score", fieldContent, fieldTitle, fieldOneLiner,
			fieldSection, fieldTags, fieldRareRule,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	passages := make([]domain.Passage, 0, len(res.Entries))
	for _, e := range res.Entries {
		passages = append(passages, r.entryToPassage(e))
	}
	return passages, nil
}

func (r *Repository) entryToPassage(e db.SearchEntry) domain.Passage {
	id := strings.TrimPrefix(e.Key, r.keyPrefix)

	p := domain.Passage{
		ID:       id,
		Title:    e.Fields[fieldTitle],
		Content:  e.Fields[fieldContent],
		OneLiner: e.Fields[fieldOneLiner],
		Score:    e.Score,
	}

	if section := e.Fields[fieldSection]; section != "" {
		p.SectionID = section
	} else {
		p.SectionID = knowledge.SectionFromID(id)
	}

	if tags := e.Fields[fieldTags]; tags != "" {
		p.Tags = tag.NormalizeAll(strings.Split(tags, ","))
	}

	if rare, err := strconv.ParseBool(e.Fields[fieldRareRule]); err == nil {
		p.RareRule = rare
	}

	return p
}

// Put stores passages as hashes in a single pipelined round-trip.
func (r *Repository) Put(ctx context.Context, passages []domain.Passage) error {
	items := make([]db.HashSetItem, 0, len(passages))
	for i := range passages {
		p := &passages[i]
		items = append(items, db.HashSetItem{
			Key: r.keyPrefix + p.ID,
			Fields: map[string]string{
				fieldContent:  p.Content,
				fieldVector:   vectorToBytes(p.Embedding),
				fieldTitle:    p.Title,
				fieldOneLiner: p.OneLiner,
				fieldSection:  p.SectionID,
				fieldTags:     strings.Join(p.Tags, ","),
				fieldRareRule: strconv.FormatBool(p.RareRule),
			},
		})
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store passages: %w", err)
	}
	return nil
}

// EnsureIndex creates the FT index if absent.
func (r *Repository) EnsureIndex(ctx context.Context, vectorDim int) error {
	exists, err := r.store.IndexExists(ctx, r.indexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     r.indexName,
		Prefixes: []string{r.keyPrefix},
		Fields: []db.IndexField{
			{Name: fieldContent, Type: db.IndexFieldText},
			{Name: fieldSection, Type: db.IndexFieldTag},
			{Name: fieldTags, Type: db.IndexFieldTag, TagSeparator: ","},
			{
				Name:              fieldVector,
				Type:              db.IndexFieldVector,
				VectorAlgo:        db.VectorHNSW,
				VectorDim:         vectorDim,
				VectorDistance:    db.DistanceCosine,
				VectorM:           r.hnsw.M,
				VectorEFConstruct: r.hnsw.EFConstruct,
			},
		},
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
