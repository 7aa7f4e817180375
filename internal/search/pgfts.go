package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true: if Postgres is down, the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search executes a UNION ALL query across documents and paragraphs using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args := []any{q.Text}
	argN := 2

	var subQueries []string

	if q.FilterType == "" || q.FilterType == ResultDocument {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'document'::text AS type, d.id, d.title,
				''::text AS snippet,
				d.id AS document_id, d.stage_id,
				FALSE AS is_approved,
				ts_rank(d.fts, %s) AS rank
			FROM documents d
			WHERE d.fts @@ %s`, tsQuery, tsQuery))
	}

	if q.FilterType == "" || q.FilterType == ResultParagraph {
		parWhere := "p.fts @@ " + tsQuery
		if q.FilterDocumentID != "" {
			parWhere += fmt.Sprintf(" AND p.document_id = $%d", argN)
			args = append(args, q.FilterDocumentID)
			argN++
		}
		if q.ApprovedOnly {
			parWhere += " AND p.is_approved"
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'paragraph'::text AS type, p.id, ''::text AS title,
				ts_headline('english', p.content, %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				p.document_id, d.stage_id,
				p.is_approved,
				ts_rank(p.fts, %s) AS rank
			FROM paragraphs p
			JOIN documents d ON d.id = p.document_id
			WHERE %s`, tsQuery, tsQuery, parWhere))
	}

	if len(subQueries) == 0 {
		return nil, 0, nil
	}

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) sub",
		strings.Join(subQueries, " UNION ALL "))

	dataSQL := fmt.Sprintf(`SELECT type, id, title, snippet, document_id, stage_id, is_approved
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`,
		strings.Join(subQueries, " UNION ALL "),
		limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		var typ string
		if err := rows.Scan(&typ, &r.ID, &r.Title, &r.Snippet, &r.DocumentID, &r.StageID, &r.IsApproved); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns all searchable records for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]DocumentRecord, []ParagraphRecord, error) {
	docRows, err := p.db.QueryContext(ctx, `
		SELECT id, title, stage_id
		FROM documents
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load documents: %w", err)
	}
	defer docRows.Close()

	documents := make([]DocumentRecord, 0)
	for docRows.Next() {
		var d DocumentRecord
		if err := docRows.Scan(&d.ID, &d.Title, &d.StageID); err != nil {
			return nil, nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, d)
	}
	if err := docRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate documents: %w", err)
	}

	parRows, err := p.db.QueryContext(ctx, `
		SELECT id, content, document_id, ordinal, rating, is_approved
		FROM paragraphs
	`)
	if err != nil {
		return nil, nil, fmt.Errorf("load paragraphs: %w", err)
	}
	defer parRows.Close()

	paragraphs := make([]ParagraphRecord, 0)
	for parRows.Next() {
		var pr ParagraphRecord
		if err := parRows.Scan(&pr.ID, &pr.Content, &pr.DocumentID, &pr.Ordinal, &pr.Rating, &pr.IsApproved); err != nil {
			return nil, nil, fmt.Errorf("scan paragraph: %w", err)
		}
		paragraphs = append(paragraphs, pr)
	}
	if err := parRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate paragraphs: %w", err)
	}

	return documents, paragraphs, nil
}
