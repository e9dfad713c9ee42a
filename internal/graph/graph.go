// Package graph maintains a Neo4j graph of messages and the catalogs
// that translate them, and answers cross-catalog queries.
package graph

import (
	"context"
	"fmt"

	"mocat/internal/store"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Occurrence is one catalog carrying a translation for a msgid.
type Occurrence struct {
	CatalogPath string
	Locale      string
	Msgstr      string
}

// Graph wraps the Neo4j driver for catalog graph operations.
type Graph struct {
	driver neo4j.DriverWithContext
}

// New creates a graph on an existing driver.
func New(driver neo4j.DriverWithContext) *Graph {
	return &Graph{driver: driver}
}

// EnsureSchema creates constraints on the Neo4j database.
func (g *Graph) EnsureSchema(ctx context.Context) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Message) REQUIRE m.msgid IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (c:Catalog) REQUIRE c.path IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Debug().Msg("Graph schema ensured")
	return nil
}

// UpsertCatalog stores a catalog node and one Message node per entry,
// linked by IN_CATALOG edges carrying the translation.
func (g *Graph) UpsertCatalog(ctx context.Context, path, locale string, messages []store.Message) error {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	_, err := session.Run(ctx, `
		MERGE (c:Catalog {path: $path})
		SET c.locale = $locale
	`, map[string]any{
		"path":   path,
		"locale": locale,
	})
	if err != nil {
		return fmt.Errorf("upsert catalog node: %w", err)
	}

	for _, m := range messages {
		_, err := session.Run(ctx, `
			MERGE (m:Message {msgid: $msgid})
			MERGE (c:Catalog {path: $path})
			MERGE (m)-[r:IN_CATALOG]->(c)
			SET r.msgstr = $msgstr
		`, map[string]any{
			"msgid":  m.Msgid,
			"path":   path,
			"msgstr": m.Msgstr,
		})
		if err != nil {
			return fmt.Errorf("upsert message node: %w", err)
		}
	}

	log.Info().Str("catalog", path).Int("messages", len(messages)).Msg("Updated catalog graph")
	return nil
}

// Where lists every catalog that carries a translation for the given
// msgid.
func (g *Graph) Where(ctx context.Context, msgid string) ([]Occurrence, error) {
	session := g.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Message {msgid: $msgid})-[r:IN_CATALOG]->(c:Catalog)
		RETURN c.path AS path, c.locale AS locale, r.msgstr AS msgstr
		ORDER BY c.path
	`, map[string]any{"msgid": msgid})
	if err != nil {
		return nil, fmt.Errorf("query catalogs for msgid: %w", err)
	}

	var occurrences []Occurrence
	for result.Next(ctx) {
		record := result.Record()
		path, _ := record.Get("path")
		locale, _ := record.Get("locale")
		msgstr, _ := record.Get("msgstr")

		occurrences = append(occurrences, Occurrence{
			CatalogPath: fmt.Sprintf("%v", path),
			Locale:      fmt.Sprintf("%v", locale),
			Msgstr:      fmt.Sprintf("%v", msgstr),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog results: %w", err)
	}

	return occurrences, nil
}
