package scripture

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/mcp-scripture-server/internal/domain"
)

const (
	// MaxBatchSize is the maximum number of documents per batch
	MaxBatchSize = 100

	// nameBoost ranks abbreviation hits above full name hits
	nameBoost = 5.0
)

// CreateIndexMapping creates the Bleve index mapping for version documents.
func CreateIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	// Abbreviation, analyzed so "niv" finds "NIV"
	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = standard.Name
	nameField.Store = true
	docMapping.AddFieldMappingsAt(domain.VersionFieldName, nameField)

	fullNameField := bleve.NewTextFieldMapping()
	fullNameField.Analyzer = standard.Name
	fullNameField.Store = true
	fullNameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt(domain.VersionFieldFullName, fullNameField)

	langField := bleve.NewTextFieldMapping()
	langField.Analyzer = keyword.Name
	langField.Store = true
	docMapping.AddFieldMappingsAt(domain.VersionFieldLanguage, langField)

	versionIDField := bleve.NewNumericFieldMapping()
	versionIDField.Index = false
	versionIDField.Store = true
	docMapping.AddFieldMappingsAt(domain.VersionFieldVersionID, versionIDField)

	// ID - stored but not indexed (we use the document ID)
	idField := bleve.NewTextFieldMapping()
	idField.Index = false
	idField.Store = true
	docMapping.AddFieldMappingsAt(domain.VersionFieldID, idField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name

	return indexMapping
}

// NewVersionDocument converts a catalog version into an index document.
func NewVersionDocument(v domain.Version, languageID string) domain.VersionDocument {
	return domain.VersionDocument{
		ID:        strconv.Itoa(v.ID),
		VersionID: v.ID,
		Name:      v.Name,
		FullName:  v.FullName,
		Language:  languageID,
	}
}

// BuildVersionIndex indexes the versions of a catalog in memory.
func BuildVersionIndex(c *domain.Catalog) (index bleve.Index, err error) {
	index, err = bleve.NewMemOnly(CreateIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	defer func() {
		if err != nil {
			_ = index.Close()
			index = nil
		}
	}()

	batch := index.NewBatch()
	for _, v := range c.Versions {
		doc := NewVersionDocument(v, c.Language.ID)
		if err := batch.Index(doc.ID, doc); err != nil {
			return nil, fmt.Errorf("failed to index version %d: %w", v.ID, err)
		}

		if batch.Size() >= MaxBatchSize {
			if err := index.Batch(batch); err != nil {
				return nil, fmt.Errorf("failed to execute batch: %w", err)
			}
			batch.Reset()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return nil, fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	return index, nil
}

// buildVersionQuery matches whole words of the full name and abbreviation,
// plus word prefixes so partial input like "inter" still finds versions.
func buildVersionQuery(text string) query.Query {
	fullNameQuery := bleve.NewMatchQuery(text)
	fullNameQuery.SetField(domain.VersionFieldFullName)

	nameQuery := bleve.NewMatchQuery(text)
	nameQuery.SetField(domain.VersionFieldName)
	nameQuery.SetBoost(nameBoost)

	disjuncts := []query.Query{fullNameQuery, nameQuery}
	for _, term := range strings.Fields(strings.ToLower(text)) {
		namePrefix := bleve.NewPrefixQuery(term)
		namePrefix.SetField(domain.VersionFieldName)
		namePrefix.SetBoost(nameBoost)

		fullNamePrefix := bleve.NewPrefixQuery(term)
		fullNamePrefix.SetField(domain.VersionFieldFullName)

		disjuncts = append(disjuncts, namePrefix, fullNamePrefix)
	}

	return bleve.NewDisjunctionQuery(disjuncts...)
}

// searchVersionIndex returns the ids of matching versions, best first.
func searchVersionIndex(index bleve.Index, text string, limit int) ([]int, error) {
	req := bleve.NewSearchRequest(buildVersionQuery(text))
	req.Size = limit

	results, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	ids := make([]int, 0, len(results.Hits))
	for _, hit := range results.Hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
