package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/MolScope/internal/application/ingestion"
	"github.com/turtacn/MolScope/internal/domain/molecule"
	"github.com/turtacn/MolScope/internal/infrastructure/session"
	"github.com/turtacn/MolScope/internal/interfaces/http/middleware"
	"github.com/turtacn/MolScope/internal/interfaces/http/web"
	"github.com/turtacn/MolScope/pkg/errors"
)

type mockIngestion struct {
	mock.Mock
}

func (m *mockIngestion) Ingest(ctx context.Context, r io.Reader) (molecule.Table, error) {
	args := m.Called(ctx, r)
	t, _ := args.Get(0).(molecule.Table)
	return t, args.Error(1)
}

func (m *mockIngestion) IngestLines(ctx context.Context, lines []string) (molecule.Table, error) {
	args := m.Called(ctx, lines)
	t, _ := args.Get(0).(molecule.Table)
	return t, args.Error(1)
}

const testSID = "5d0a8f3e-2b7c-4d6e-9f10-1a2b3c4d5e6f"

// pageFixture serves PageHandler routes over a memory store seeded with a
// session holding a known CSRF token.
type pageFixture struct {
	router *gin.Engine
	store  *session.MemoryStore
	token  string
}

func newPageFixture(t *testing.T, ingest *mockIngestion) *pageFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore(time.Hour, nil)
	data := &session.Data{}
	token, err := data.EnsureCSRFToken()
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), testSID, data))

	tmpl, err := web.Templates()
	require.NoError(t, err)

	h := NewPageHandler(ingest, PageConfig{MaxBytes: 5 * 1024}, nil, nil)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(middleware.Session(store, middleware.SessionConfig{CookieName: "sid", TTL: time.Hour}, nil))
	r.GET("/", h.Index)
	r.POST("/", h.Upload)
	r.GET("/next", h.Next)
	return &pageFixture{router: r, store: store, token: token}
}

func (f *pageFixture) post(t *testing.T, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField(FieldCSRFToken, f.token))
	part, err := w.CreateFormFile(FieldFile, "mols.txt")
	require.NoError(t, err)
	_, _ = io.WriteString(part, content)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *pageFixture) stored(t *testing.T) *session.Data {
	t.Helper()
	d, err := f.store.Load(context.Background(), testSID)
	require.NoError(t, err)
	return d
}

func TestUpload_StoresTableAndRedirects(t *testing.T) {
	table := molecule.Table{{SMILES: "CCO", LogP: -0.0014, SAScore: 1.98}}
	ingest := new(mockIngestion)
	ingest.On("Ingest", mock.Anything, mock.Anything).Return(table, nil).Once()
	f := newPageFixture(t, ingest)

	rec := f.post(t, "CCO\n")

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/next", rec.Header().Get("Location"))
	assert.Equal(t, table, f.stored(t).Table)
	ingest.AssertExpectations(t)
}

func TestUpload_LineErrorRendersMessage(t *testing.T) {
	ingest := new(mockIngestion)
	ingest.On("Ingest", mock.Anything, mock.Anything).
		Return(nil, lineError(4)).Once()
	f := newPageFixture(t, ingest)

	rec := f.post(t, "x\n")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error. Please check line 4 of your file.")
	assert.False(t, f.stored(t).HasTable())
}

func TestUpload_UnexpectedErrorRendersErrorPage(t *testing.T) {
	ingest := new(mockIngestion)
	ingest.On("Ingest", mock.Anything, mock.Anything).
		Return(nil, errors.New(errors.ErrCodeUploadUnreadable, "uploaded file could not be read")).Once()
	f := newPageFixture(t, ingest)

	rec := f.post(t, "CCO\n")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "uploaded file could not be read")
}

func TestNext_RendersFigureJSON(t *testing.T) {
	ingest := new(mockIngestion)
	f := newPageFixture(t, ingest)
	data := f.stored(t)
	data.Table = molecule.Table{{SMILES: "c1ccccc1", Name: "benzene", LogP: 1.69, SAScore: 1.0}}
	require.NoError(t, f.store.Save(context.Background(), testSID, data))

	req := httptest.NewRequest(http.MethodGet, "/next", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: testSID})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"customdata":["c1ccccc1"]`)
	assert.Contains(t, body, `"hovertemplate":null`)
	assert.Contains(t, body, "1 molecules")
	ingest.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything)
}

func lineError(n int) error {
	return &ingestion.LineError{Line: n, Err: errors.New(errors.ErrCodeMoleculeInvalidSMILES, "invalid SMILES")}
}
