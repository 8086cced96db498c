package graph

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/veracity-backend/internal/logger"
	"github.com/yungbote/veracity-backend/internal/platform/apierr"
	"github.com/yungbote/veracity-backend/internal/types"
)

type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	log      *logger.Logger
}

// NewNeo4jFromEnv builds the production graph store. Returns (nil, nil) when
// NEO4J_URI is unset so local runs can fall back to the memory store.
func NewNeo4jFromEnv(log *logger.Logger) (*Neo4jStore, error) {
	if log == nil {
		return nil, fmt.Errorf("graph: logger required")
	}

	uri := strings.TrimSpace(os.Getenv("NEO4J_URI"))
	if uri == "" {
		return nil, nil
	}

	user := strings.TrimSpace(os.Getenv("NEO4J_USER"))
	if user == "" {
		user = "neo4j"
	}
	password := strings.TrimSpace(os.Getenv("NEO4J_PASSWORD"))
	database := strings.TrimSpace(os.Getenv("NEO4J_DATABASE"))

	timeoutSec := 10
	if v := strings.TrimSpace(os.Getenv("NEO4J_TIMEOUT_SECONDS")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	auth := neo4j.BasicAuth(user, password, "")
	driver, err := neo4j.NewDriverWithContext(uri, auth, func(cfg *neo4j.Config) {
		cfg.SocketConnectTimeout = time.Duration(timeoutSec) * time.Second
	})
	if err != nil {
		return nil, fmt.Errorf("graph: init neo4j driver: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graph: verify neo4j connectivity: %w", err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: database,
		log:      log.With("component", "Neo4jStore"),
	}, nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

func (s *Neo4jStore) GetTarget(ctx context.Context, ref types.TargetRef) (*TargetInfo, error) {
	if err := ref.Validate(); err != nil {
		return nil, apierr.Validation("invalid target: %v", err)
	}

	sess := s.session(ctx)
	defer sess.Close(ctx)

	var cypher string
	switch ref.Kind {
	case types.TargetNode:
		cypher = `MATCH (n:Entity {id: $id}) RETURN coalesce(n.is_level_0, false) AS is_level_0 LIMIT 1`
	case types.TargetEdge:
		cypher = `MATCH ()-[r:RELATION {id: $id}]->() RETURN coalesce(r.is_level_0, false) AS is_level_0 LIMIT 1`
	}

	result, err := sess.Run(ctx, cypher, map[string]any{"id": ref.ID.String()})
	if err != nil {
		return nil, fmt.Errorf("graph: resolve target %s: %w", ref, err)
	}
	rec, err := result.Single(ctx)
	if err != nil {
		return nil, apierr.NotFound("target %s not found", ref)
	}

	isLevel0 := false
	if v, ok := rec.Get("is_level_0"); ok {
		if b, ok := v.(bool); ok {
			isLevel0 = b
		}
	}
	return &TargetInfo{Ref: ref, IsLevel0: isLevel0}, nil
}

func (s *Neo4jStore) GetRelatedNodeCredibilities(ctx context.Context, nodeIDs []uuid.UUID) ([]float64, error) {
	if len(nodeIDs) == 0 {
		return nil, nil
	}

	sess := s.session(ctx)
	defer sess.Close(ctx)

	ids := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		ids = append(ids, id.String())
	}

	cypher := `
		UNWIND $ids AS id
		OPTIONAL MATCH (n:Entity {id: id})
		RETURN coalesce(n.credibility, 1.0) AS credibility`
	result, err := sess.Run(ctx, cypher, map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("graph: read node credibilities: %w", err)
	}

	creds := make([]float64, 0, len(nodeIDs))
	for result.Next(ctx) {
		cred := 1.0
		if v, ok := result.Record().Get("credibility"); ok {
			switch n := v.(type) {
			case float64:
				cred = n
			case int64:
				cred = float64(n)
			}
		}
		creds = append(creds, cred)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("graph: read node credibilities: %w", err)
	}
	return creds, nil
}
