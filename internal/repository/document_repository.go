package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sciportal/sciportal-api/internal/models"
)

const documentColumns = `d.id, d.title, d.abstract, d.type, d.field, d.publish_year, d.event_id, d.course_id, d.advisor_id, d.advisor_name, d.advisor_email, d.file_url, d.created_at`

// DocumentRepository persists the document aggregate and implements the
// filter engine backing the public search endpoint.
type DocumentRepository struct {
	db *sqlx.DB
}

// NewDocumentRepository creates a new instance of DocumentRepository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists the document plus its authors and keywords as one atomic
// unit. Any failure mid-batch rolls back every row from the request.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.Document) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin document tx: %w", err)
	}

	if err := insertDocumentAggregate(ctx, tx, doc); err != nil {
		_ = tx.Rollback()
		if translated := translateConstraint(err); translated != nil {
			return translated
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

func insertDocumentAggregate(ctx context.Context, tx *sqlx.Tx, doc *models.Document) error {
	const insertDoc = `INSERT INTO documents (title, abstract, type, field, publish_year, event_id, course_id, advisor_id, advisor_name, advisor_email, file_url) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id, created_at`
	err := tx.QueryRowxContext(ctx, insertDoc,
		doc.Title, doc.Abstract, doc.Type, doc.Field, doc.PublishYear,
		doc.EventID, doc.CourseID, doc.AdvisorID, doc.AdvisorName, doc.AdvisorEmail,
		doc.FileURL,
	).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	const insertAuthor = `INSERT INTO document_authors (document_id, name, email) VALUES ($1, $2, $3) RETURNING id`
	for i := range doc.Authors {
		doc.Authors[i].DocumentID = doc.ID
		if err := tx.QueryRowxContext(ctx, insertAuthor, doc.ID, doc.Authors[i].Name, doc.Authors[i].Email).Scan(&doc.Authors[i].ID); err != nil {
			return fmt.Errorf("insert document author: %w", err)
		}
	}

	const insertKeyword = `INSERT INTO document_keywords (document_id, keyword) VALUES ($1, $2) RETURNING id`
	for i := range doc.Keywords {
		doc.Keywords[i].DocumentID = doc.ID
		if err := tx.QueryRowxContext(ctx, insertKeyword, doc.ID, doc.Keywords[i].Keyword).Scan(&doc.Keywords[i].ID); err != nil {
			return fmt.Errorf("insert document keyword: %w", err)
		}
	}

	return nil
}

// FindByID returns a single document with advisor, course, event, authors
// and keywords eagerly resolved.
func (r *DocumentRepository) FindByID(ctx context.Context, id int64) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1 LIMIT 1`
	var doc models.Document
	if err := r.db.GetContext(ctx, &doc, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find document by id: %w", err)
	}

	docs := []models.Document{doc}
	if err := r.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return &docs[0], nil
}

// List runs the filter engine. Dimensions combine with AND, values within
// one dimension with OR. Keyword and free-text matching join child tables,
// so the same document can surface once per matching child row; SELECT
// DISTINCT collapses the fan-out before LIMIT/OFFSET apply, and ORDER BY id
// keeps pagination deterministic.
func (r *DocumentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error) {
	from := `FROM documents d`
	if filter.Query != "" {
		from += ` LEFT JOIN document_authors da ON da.document_id = d.id`
	}
	if len(filter.Keywords) > 0 {
		from += ` LEFT JOIN document_keywords dk ON dk.document_id = d.id`
	}

	var conditions []string
	var args []interface{}

	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf("(LOWER(d.title) LIKE $%d OR LOWER(da.name) LIKE $%d)", n, n))
	}
	if len(filter.Types) > 0 {
		args = append(args, pq.Array(filter.Types))
		conditions = append(conditions, fmt.Sprintf("d.type = ANY($%d)", len(args)))
	}
	if len(filter.PublishYears) > 0 {
		years := make([]int64, len(filter.PublishYears))
		for i, y := range filter.PublishYears {
			years[i] = int64(y)
		}
		args = append(args, pq.Array(years))
		conditions = append(conditions, fmt.Sprintf("d.publish_year = ANY($%d)", len(args)))
	}
	if len(filter.Fields) > 0 {
		ors := make([]string, 0, len(filter.Fields))
		for _, f := range filter.Fields {
			args = append(args, "%"+strings.ToLower(f)+"%")
			ors = append(ors, fmt.Sprintf("LOWER(d.field) LIKE $%d", len(args)))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}
	if len(filter.Keywords) > 0 {
		ors := make([]string, 0, len(filter.Keywords))
		for _, kw := range filter.Keywords {
			args = append(args, "%"+strings.ToLower(kw)+"%")
			ors = append(ors, fmt.Sprintf("LOWER(dk.keyword) LIKE $%d", len(args)))
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}
	if len(filter.EventIDs) > 0 {
		args = append(args, pq.Array(filter.EventIDs))
		conditions = append(conditions, fmt.Sprintf("d.event_id = ANY($%d)", len(args)))
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	listQuery := fmt.Sprintf("SELECT DISTINCT %s %s%s ORDER BY d.id LIMIT %d OFFSET %d", documentColumns, from, where, limit, offset)
	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT d.id) %s%s", from, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	if err := r.hydrate(ctx, docs); err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListByAdvisor returns every document where the given user is the advisor
// of record, with the same eager-loading contract as FindByID.
func (r *DocumentRepository) ListByAdvisor(ctx context.Context, userID int64) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents d WHERE d.advisor_id = $1 ORDER BY d.id`
	docs := []models.Document{}
	if err := r.db.SelectContext(ctx, &docs, query, userID); err != nil {
		return nil, fmt.Errorf("list documents by advisor: %w", err)
	}
	if err := r.hydrate(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DistinctKeywords returns one representative row per distinct keyword
// text, the lowest id winning ties for determinism.
func (r *DocumentRepository) DistinctKeywords(ctx context.Context) ([]models.DocumentKeyword, error) {
	const query = `SELECT DISTINCT ON (keyword) id, document_id, keyword FROM document_keywords ORDER BY keyword, id`
	keywords := []models.DocumentKeyword{}
	if err := r.db.SelectContext(ctx, &keywords, query); err != nil {
		return nil, fmt.Errorf("list distinct keywords: %w", err)
	}
	return keywords, nil
}

// hydrate batch-loads authors, keywords and referenced course, event and
// advisor rows for a page of documents, avoiding per-row round trips.
func (r *DocumentRepository) hydrate(ctx context.Context, docs []models.Document) error {
	if len(docs) == 0 {
		return nil
	}

	ids := make([]int64, len(docs))
	index := make(map[int64]*models.Document, len(docs))
	for i := range docs {
		ids[i] = docs[i].ID
		docs[i].Authors = []models.DocumentAuthor{}
		docs[i].Keywords = []models.DocumentKeyword{}
		index[docs[i].ID] = &docs[i]
	}

	authors := []models.DocumentAuthor{}
	const authorQuery = `SELECT id, document_id, name, email FROM document_authors WHERE document_id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &authors, authorQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load document authors: %w", err)
	}
	for _, a := range authors {
		if doc, ok := index[a.DocumentID]; ok {
			doc.Authors = append(doc.Authors, a)
		}
	}

	keywords := []models.DocumentKeyword{}
	const keywordQuery = `SELECT id, document_id, keyword FROM document_keywords WHERE document_id = ANY($1) ORDER BY id`
	if err := r.db.SelectContext(ctx, &keywords, keywordQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("load document keywords: %w", err)
	}
	for _, kw := range keywords {
		if doc, ok := index[kw.DocumentID]; ok {
			doc.Keywords = append(doc.Keywords, kw)
		}
	}

	courseIDs := collectRefs(docs, func(d *models.Document) *int64 { return d.CourseID })
	if len(courseIDs) > 0 {
		courses := []models.Course{}
		const courseQuery = `SELECT id, name FROM courses WHERE id = ANY($1)`
		if err := r.db.SelectContext(ctx, &courses, courseQuery, pq.Array(courseIDs)); err != nil {
			return fmt.Errorf("load document courses: %w", err)
		}
		byID := make(map[int64]models.Course, len(courses))
		for _, c := range courses {
			byID[c.ID] = c
		}
		for i := range docs {
			if docs[i].CourseID != nil {
				if c, ok := byID[*docs[i].CourseID]; ok {
					course := c
					docs[i].Course = &course
				}
			}
		}
	}

	eventIDs := collectRefs(docs, func(d *models.Document) *int64 { return d.EventID })
	if len(eventIDs) > 0 {
		events := []models.Event{}
		const eventQuery = `SELECT id, code, name FROM events WHERE id = ANY($1)`
		if err := r.db.SelectContext(ctx, &events, eventQuery, pq.Array(eventIDs)); err != nil {
			return fmt.Errorf("load document events: %w", err)
		}
		byID := make(map[int64]models.Event, len(events))
		for _, e := range events {
			byID[e.ID] = e
		}
		for i := range docs {
			if docs[i].EventID != nil {
				if e, ok := byID[*docs[i].EventID]; ok {
					event := e
					docs[i].Event = &event
				}
			}
		}
	}

	advisorIDs := collectRefs(docs, func(d *models.Document) *int64 { return d.AdvisorID })
	if len(advisorIDs) > 0 {
		advisors := []models.User{}
		const advisorQuery = `SELECT id, name, email FROM users WHERE id = ANY($1)`
		if err := r.db.SelectContext(ctx, &advisors, advisorQuery, pq.Array(advisorIDs)); err != nil {
			return fmt.Errorf("load document advisors: %w", err)
		}
		byID := make(map[int64]models.UserInfo, len(advisors))
		for i := range advisors {
			byID[advisors[i].ID] = advisors[i].Info()
		}
		for i := range docs {
			if docs[i].AdvisorID != nil {
				if info, ok := byID[*docs[i].AdvisorID]; ok {
					advisor := info
					docs[i].Advisor = &advisor
				}
			}
		}
	}

	return nil
}

func collectRefs(docs []models.Document, ref func(*models.Document) *int64) []int64 {
	seen := make(map[int64]struct{})
	out := make([]int64, 0)
	for i := range docs {
		if id := ref(&docs[i]); id != nil {
			if _, dup := seen[*id]; !dup {
				seen[*id] = struct{}{}
				out = append(out, *id)
			}
		}
	}
	return out
}
