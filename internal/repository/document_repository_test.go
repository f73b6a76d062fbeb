package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciportal/sciportal-api/internal/models"
)

var documentRowColumns = []string{"id", "title", "abstract", "type", "field", "publish_year", "event_id", "course_id", "advisor_id", "advisor_name", "advisor_email", "file_url", "created_at"}

func TestCreateDocumentAggregate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents (title, abstract, type, field, publish_year, event_id, course_id, advisor_id, advisor_name, advisor_email, file_url)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO document_authors (document_id, name, email)")).
		WithArgs(int64(3), "Ana Silva", "ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO document_authors (document_id, name, email)")).
		WithArgs(int64(3), "Bruno Costa", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO document_keywords (document_id, keyword)")).
		WithArgs(int64(3), "machine learning").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(20))
	mock.ExpectCommit()

	email := "ana@example.com"
	doc := &models.Document{
		Title:       "Final Report",
		Type:        "tcc",
		PublishYear: 2024,
		FileURL:     "http://localhost:9000/scientific-repository/abc-final-report.pdf",
		Authors: []models.DocumentAuthor{
			{Name: "Ana Silva", Email: &email},
			{Name: "Bruno Costa"},
		},
		Keywords: []models.DocumentKeyword{{Keyword: "machine learning"}},
	}

	err := repo.Create(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, int64(3), doc.ID)
	assert.Equal(t, int64(3), doc.Authors[0].DocumentID)
	assert.Equal(t, int64(10), doc.Authors[0].ID)
	assert.Equal(t, int64(20), doc.Keywords[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDocumentRollsBackOnBadReference(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO documents")).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "documents_event_id_fkey"})
	mock.ExpectRollback()

	eventID := int64(404)
	err := repo.Create(context.Background(), &models.Document{
		Title:       "Final Report",
		Type:        "tcc",
		PublishYear: 2024,
		EventID:     &eventID,
		FileURL:     "http://example.com/f.pdf",
	})
	assert.ErrorIs(t, err, ErrInvalidReference)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindDocumentByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM documents d WHERE d.id = ").
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocumentsUnfiltered(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(documentRowColumns).
		AddRow(1, "Final Report", nil, "tcc", nil, 2024, nil, nil, nil, "Dr. Souza", nil, "http://example.com/f.pdf", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT d.id, d.title, d.abstract, d.type, d.field, d.publish_year, d.event_id, d.course_id, d.advisor_id, d.advisor_name, d.advisor_email, d.file_url, d.created_at FROM documents d ORDER BY d.id LIMIT 100 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT d.id) FROM documents d")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id, name, email FROM document_authors WHERE document_id = ANY($1) ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "name", "email"}).AddRow(10, 1, "Ana Silva", nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, document_id, keyword FROM document_keywords WHERE document_id = ANY($1) ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "keyword"}))

	docs, total, err := repo.List(context.Background(), models.DocumentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Authors, 1)
	assert.Equal(t, "Ana Silva", docs[0].Authors[0].Name)
	assert.Empty(t, docs[0].Keywords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDocumentsFilterJoinsAndArgs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	listPattern := regexp.QuoteMeta("LEFT JOIN document_authors da ON da.document_id = d.id LEFT JOIN document_keywords dk ON dk.document_id = d.id WHERE (LOWER(d.title) LIKE $1 OR LOWER(da.name) LIKE $1) AND d.type = ANY($2) AND d.publish_year = ANY($3) AND (LOWER(dk.keyword) LIKE $4 OR LOWER(dk.keyword) LIKE $5) AND d.event_id = ANY($6) ORDER BY d.id LIMIT 10 OFFSET 20")
	mock.ExpectQuery(listPattern).
		WithArgs("%neural%", pq.Array([]string{"tcc"}), pq.Array([]int64{2023, 2024}), "%ai%", "%ml%", pq.Array([]int64{5})).
		WillReturnRows(sqlmock.NewRows(documentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT d.id)")).
		WithArgs("%neural%", pq.Array([]string{"tcc"}), pq.Array([]int64{2023, 2024}), "%ai%", "%ml%", pq.Array([]int64{5})).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	docs, total, err := repo.List(context.Background(), models.DocumentFilter{
		Query:        "Neural",
		Types:        []string{"tcc"},
		PublishYears: []int{2023, 2024},
		Keywords:     []string{"AI", "ML"},
		EventIDs:     []int64{5},
		Limit:        10,
		Offset:       20,
	})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByAdvisor(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	now := time.Now()
	advisorID := int64(9)
	rows := sqlmock.NewRows(documentRowColumns).
		AddRow(1, "Final Report", nil, "tcc", nil, 2024, nil, nil, advisorID, nil, nil, "http://example.com/f.pdf", now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM documents d WHERE d.advisor_id = $1 ORDER BY d.id")).
		WithArgs(advisorID).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM document_authors")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "name", "email"}))
	mock.ExpectQuery(regexp.QuoteMeta("FROM document_keywords")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "document_id", "keyword"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, email FROM users WHERE id = ANY($1)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).AddRow(advisorID, "Dr. Souza", "souza@example.com"))

	docs, err := repo.ListByAdvisor(context.Background(), advisorID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.NotNil(t, docs[0].Advisor)
	assert.Equal(t, "Dr. Souza", docs[0].Advisor.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDistinctKeywords(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "document_id", "keyword"}).
		AddRow(4, 1, "ai").
		AddRow(2, 1, "robotics")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT ON (keyword) id, document_id, keyword FROM document_keywords ORDER BY keyword, id")).
		WillReturnRows(rows)

	keywords, err := repo.DistinctKeywords(context.Background())
	require.NoError(t, err)
	require.Len(t, keywords, 2)
	assert.Equal(t, "ai", keywords[0].Keyword)
	assert.NoError(t, mock.ExpectationsWereMet())
}
